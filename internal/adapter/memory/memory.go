// Package memory implements an in-memory record store for development and testing.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"weightlog/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory record store.
type DB struct {
	mu     sync.Mutex
	tables map[string][]domain.Record
}

// New creates a new in-memory database.
func New() *DB {
	db := &DB{tables: make(map[string][]domain.Record)}
	for name := range domain.Columns {
		db.tables[name] = nil
	}
	return db
}

// Ensure interfaces are met.
var _ domain.RecordStore = (*DB)(nil)

// SelectOne returns the first row matching q.
func (db *DB) SelectOne(ctx context.Context, table string, q domain.Query) (domain.Record, error) {
	q.Limit = 1
	rows, err := db.SelectMany(ctx, table, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0], nil
}

// SelectMany returns copies of the rows matching q.
func (db *DB) SelectMany(ctx context.Context, table string, q domain.Query) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.CheckQuery(table, q); err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Record, 0, len(db.tables[table]))
	for _, r := range db.tables[table] {
		if matches(r, q.Filter) {
			result = append(result, maps.Clone(r))
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(result, func(i, j int) bool {
			c, _ := compare(result[i][q.OrderBy], result[j][q.OrderBy])
			if q.Desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// Insert stores a copy of rec, assigning an id when none is given.
func (db *DB) Insert(ctx context.Context, table string, rec domain.Record) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.CheckColumns(table, keys(rec)...); err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	row := maps.Clone(rec)
	if row == nil {
		row = domain.Record{}
	}
	id, _ := row["id"].(string)
	if id == "" {
		id = uuid.NewString()
		row["id"] = id
	}
	if indexOf(db.tables[table], id) >= 0 {
		return nil, fmt.Errorf("duplicate id %q in %s", id, table)
	}
	db.tables[table] = append(db.tables[table], row)
	return maps.Clone(row), nil
}

// Update overwrites the given columns of row id.
func (db *DB) Update(ctx context.Context, table, id string, partial domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := domain.CheckColumns(table, keys(partial)...); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	i := indexOf(db.tables[table], id)
	if i < 0 {
		return domain.ErrNotFound
	}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		db.tables[table][i][k] = v
	}
	return nil
}

// Delete removes row id.
func (db *DB) Delete(ctx context.Context, table, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := domain.CheckColumns(table); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	rows := db.tables[table]
	i := indexOf(rows, id)
	if i < 0 {
		return domain.ErrNotFound
	}
	db.tables[table] = append(rows[:i], rows[i+1:]...)
	return nil
}

func indexOf(rows []domain.Record, id string) int {
	for i, r := range rows {
		if r["id"] == id {
			return i
		}
	}
	return -1
}

func matches(r domain.Record, filter map[string]any) bool {
	for k, want := range filter {
		if c, ok := compare(r[k], want); !ok || c != 0 {
			return false
		}
	}
	return true
}

func keys(r domain.Record) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}

// compare orders the value types a Record may hold. ok is false when the
// two values are not comparable.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), true
		}
	default:
		xf, okx := toFloat(a)
		yf, oky := toFloat(b)
		if okx && oky {
			return cmp.Compare(xf, yf), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}
