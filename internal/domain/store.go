package domain

import (
	"context"
	"fmt"
	"slices"
)

// Table names known to the record store.
const (
	TableProfiles      = "profiles"
	TableWeightEntries = "weight_entries"
)

// Record is one row keyed by column name. Values are string, float64,
// int64 or time.Time.
type Record map[string]any

// Query narrows a select. Filter is column equality; an empty OrderBy keeps
// the store's natural order and Limit <= 0 means no limit.
type Query struct {
	Filter  map[string]any
	OrderBy string
	Desc    bool
	Limit   int
}

// RecordStore is the port for the tabular backend.
type RecordStore interface {
	// SelectOne returns the first matching row or ErrNotFound.
	SelectOne(ctx context.Context, table string, q Query) (Record, error)
	SelectMany(ctx context.Context, table string, q Query) ([]Record, error)
	// Insert stores rec, assigning "id" when it is absent, and returns the stored row.
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	// Update overwrites the given columns of row id, or returns ErrNotFound.
	Update(ctx context.Context, table, id string, partial Record) error
	// Delete removes row id, or returns ErrNotFound.
	Delete(ctx context.Context, table, id string) error
}

// Columns lists the columns of each table, id first.
var Columns = map[string][]string{
	TableProfiles:      {"id", "name", "gender", "age", "height", "start_weight", "target_weight", "updated_at"},
	TableWeightEntries: {"id", "weight", "date", "diff", "trend"},
}

// CheckColumns verifies that table exists and every named column belongs to it.
func CheckColumns(table string, cols ...string) error {
	known, ok := Columns[table]
	if !ok {
		return fmt.Errorf("%w: unknown table %q", ErrInvalidInput, table)
	}
	for _, c := range cols {
		if !slices.Contains(known, c) {
			return fmt.Errorf("%w: unknown column %s.%s", ErrInvalidInput, table, c)
		}
	}
	return nil
}

// CheckQuery verifies the filter and order columns of q against table.
func CheckQuery(table string, q Query) error {
	cols := make([]string, 0, len(q.Filter)+1)
	for c := range q.Filter {
		cols = append(cols, c)
	}
	if q.OrderBy != "" {
		cols = append(cols, q.OrderBy)
	}
	return CheckColumns(table, cols...)
}
