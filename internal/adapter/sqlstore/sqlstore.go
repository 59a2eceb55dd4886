// Package sqlstore implements domain.RecordStore on top of database/sql.
// Dialect differences (placeholders, time encoding) are supplied by the
// postgres and sqlite adapters.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"weightlog/internal/domain"

	"github.com/google/uuid"
)

// Kind is the Go representation a column is scanned into.
type Kind int

// Column kinds.
const (
	Text Kind = iota
	Real
	Int
	Time
)

var kinds = map[string]map[string]Kind{
	domain.TableProfiles: {
		"id":            Text,
		"name":          Text,
		"gender":        Text,
		"age":           Int,
		"height":        Int,
		"start_weight":  Real,
		"target_weight": Real,
		"updated_at":    Time,
	},
	domain.TableWeightEntries: {
		"id":     Text,
		"weight": Real,
		"date":   Time,
		"diff":   Real,
		"trend":  Text,
	},
}

// Dialect captures what differs between SQL backends.
type Dialect struct {
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// TimeAsMillis stores time columns as INTEGER unix milliseconds.
	TimeAsMillis bool
}

// Postgres is the dialect for lib/pq.
var Postgres = Dialect{
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

// SQLite is the dialect for modernc.org/sqlite.
var SQLite = Dialect{
	Placeholder:  func(int) string { return "?" },
	TimeAsMillis: true,
}

// Store implements domain.RecordStore over a *sql.DB.
type Store struct {
	db *sql.DB
	d  Dialect
}

// New wraps db using dialect d.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d}
}

var _ domain.RecordStore = (*Store)(nil)

// SelectOne returns the first row matching q.
func (s *Store) SelectOne(ctx context.Context, table string, q domain.Query) (domain.Record, error) {
	q.Limit = 1
	rows, err := s.SelectMany(ctx, table, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0], nil
}

// SelectMany returns the rows matching q.
func (s *Store) SelectMany(ctx context.Context, table string, q domain.Query) ([]domain.Record, error) {
	if err := domain.CheckQuery(table, q); err != nil {
		return nil, err
	}
	cols := domain.Columns[table]

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), table)
	where, args, err := s.where(table, q.Filter, 1)
	if err != nil {
		return nil, err
	}
	b.WriteString(where)
	if q.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", q.OrderBy)
		if q.Desc {
			b.WriteString(" DESC")
		}
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	b.WriteString(";")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Record
	for rows.Next() {
		dest := make([]any, len(cols))
		for i, c := range cols {
			dest[i] = s.holder(kinds[table][c])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		rec := make(domain.Record, len(cols))
		for i, c := range cols {
			if v := s.value(kinds[table][c], dest[i]); v != nil {
				rec[c] = v
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Insert stores rec, assigning a UUID id when none is given.
func (s *Store) Insert(ctx context.Context, table string, rec domain.Record) (domain.Record, error) {
	row := maps.Clone(rec)
	if row == nil {
		row = domain.Record{}
	}
	if id, _ := row["id"].(string); id == "" {
		row["id"] = uuid.NewString()
	}
	cols := ordered(table, row)
	if err := domain.CheckColumns(table, cols...); err != nil {
		return nil, err
	}

	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		v, err := s.encode(table, c, row[c])
		if err != nil {
			return nil, err
		}
		args[i] = v
		marks[i] = s.d.Placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);", table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, err
	}
	return row, nil
}

// Update overwrites the given columns of row id.
func (s *Store) Update(ctx context.Context, table, id string, partial domain.Record) error {
	set := maps.Clone(partial)
	delete(set, "id")
	cols := ordered(table, set)
	if err := domain.CheckColumns(table, cols...); err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	args := make([]any, 0, len(cols)+1)
	assigns := make([]string, len(cols))
	for i, c := range cols {
		v, err := s.encode(table, c, set[c])
		if err != nil {
			return err
		}
		args = append(args, v)
		assigns[i] = fmt.Sprintf("%s = %s", c, s.d.Placeholder(i+1))
	}
	args = append(args, id)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s;", table, strings.Join(assigns, ", "), s.d.Placeholder(len(cols)+1))

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	return affected(res)
}

// Delete removes row id.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	if err := domain.CheckColumns(table); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = %s;", table, s.d.Placeholder(1)), id)
	if err != nil {
		return err
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) where(table string, filter map[string]any, start int) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	cols := ordered(table, filter)
	conds := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		v, err := s.encode(table, c, filter[c])
		if err != nil {
			return "", nil, err
		}
		conds[i] = fmt.Sprintf("%s = %s", c, s.d.Placeholder(start+i))
		args[i] = v
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// ordered returns the keys of m in schema column order. Unknown keys are
// appended sorted so CheckColumns can report them.
func ordered[V any](table string, m map[string]V) []string {
	out := make([]string, 0, len(m))
	for _, c := range domain.Columns[table] {
		if _, ok := m[c]; ok {
			out = append(out, c)
		}
	}
	var extra []string
	for k := range m {
		if !slices.Contains(out, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

func (s *Store) encode(table, col string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kinds[table][col] {
	case Real:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int64:
			return float64(t), nil
		case int:
			return float64(t), nil
		}
	case Int:
		switch t := v.(type) {
		case int64:
			return t, nil
		case int:
			return int64(t), nil
		case float64:
			return int64(t), nil
		}
	case Time:
		if t, ok := v.(time.Time); ok {
			if s.d.TimeAsMillis {
				return t.UTC().UnixMilli(), nil
			}
			return t.UTC(), nil
		}
	case Text:
		if t, ok := v.(string); ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s cannot hold %T", domain.ErrInvalidInput, table, col, v)
}

func (s *Store) holder(k Kind) any {
	switch k {
	case Real:
		return new(sql.NullFloat64)
	case Int:
		return new(sql.NullInt64)
	case Time:
		if s.d.TimeAsMillis {
			return new(sql.NullInt64)
		}
		return new(sql.NullTime)
	}
	return new(sql.NullString)
}

func (s *Store) value(k Kind, h any) any {
	switch t := h.(type) {
	case *sql.NullString:
		if t.Valid {
			return t.String
		}
	case *sql.NullFloat64:
		if t.Valid {
			return t.Float64
		}
	case *sql.NullInt64:
		if t.Valid && k == Time {
			return time.UnixMilli(t.Int64).UTC()
		}
		if t.Valid {
			return t.Int64
		}
	case *sql.NullTime:
		if t.Valid {
			return t.Time.UTC()
		}
	}
	return nil
}
