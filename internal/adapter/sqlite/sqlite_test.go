package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"weightlog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "weightlog.db"))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	ctx := context.Background()
	ts := time.Date(2026, 10, 24, 8, 30, 0, 0, time.UTC)

	first, err := db.Insert(ctx, domain.TableWeightEntries, domain.Record{
		"weight": 80.0, "date": ts.Add(-24 * time.Hour), "diff": 0.0, "trend": "flat",
	})
	require.NoError(t, err)
	_, err = db.Insert(ctx, domain.TableWeightEntries, domain.Record{
		"weight": 78.5, "date": ts, "diff": -1.5, "trend": "down",
	})
	require.NoError(t, err)

	rows, err := db.SelectMany(ctx, domain.TableWeightEntries, domain.Query{OrderBy: "date", Desc: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 78.5, rows[0]["weight"])
	assert.Equal(t, ts, rows[0]["date"])

	id := first["id"].(string)
	require.NoError(t, db.Update(ctx, domain.TableWeightEntries, id, domain.Record{"weight": 81.0}))
	row, err := db.SelectOne(ctx, domain.TableWeightEntries, domain.Query{Filter: map[string]any{"id": id}})
	require.NoError(t, err)
	assert.Equal(t, 81.0, row["weight"])

	require.NoError(t, db.Delete(ctx, domain.TableWeightEntries, id))
	assert.ErrorIs(t, db.Delete(ctx, domain.TableWeightEntries, id), domain.ErrNotFound)
}

func TestProfileSingleton(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	ctx := context.Background()
	p := domain.UserProfile{Name: "Alex", Age: 28, Height: 175, StartWeight: 85, TargetWeight: 68, UpdatedAt: time.Now()}
	rec := p.Record()
	rec["id"] = domain.ProfileID

	_, err = db.Insert(ctx, domain.TableProfiles, rec)
	require.NoError(t, err)
	_, err = db.Insert(ctx, domain.TableProfiles, rec)
	assert.Error(t, err, "second insert with the singleton key must fail")

	got, err := db.SelectOne(ctx, domain.TableProfiles, domain.Query{Filter: map[string]any{"id": domain.ProfileID}})
	require.NoError(t, err)
	assert.Equal(t, "Alex", domain.ProfileFromRecord(got).Name)
	assert.Equal(t, 175, domain.ProfileFromRecord(got).Height)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
