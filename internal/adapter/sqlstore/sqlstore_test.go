package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"weightlog/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockStore(t *testing.T, d Dialect) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, d), mock
}

var entryCols = []string{"id", "weight", "date", "diff", "trend"}

func TestSelectMany_OrderedHistory(t *testing.T) {
	s, mock := setupMockStore(t, Postgres)
	ts := time.Date(2026, 10, 24, 8, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows(entryCols).
		AddRow("b", 72.4, ts, -0.2, "down").
		AddRow("a", 72.6, ts.Add(-24*time.Hour), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, weight, date, diff, trend FROM weight_entries ORDER BY date DESC;`)).
		WillReturnRows(rows)

	got, err := s.SelectMany(context.Background(), domain.TableWeightEntries, domain.Query{OrderBy: "date", Desc: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0]["id"])
	assert.Equal(t, 72.4, got[0]["weight"])
	assert.Equal(t, ts, got[0]["date"])
	assert.Equal(t, "down", got[0]["trend"])
	assert.NotContains(t, got[1], "diff")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectOne(t *testing.T) {
	tests := []struct {
		name         string
		mockBehavior func(mock sqlmock.Sqlmock)
		wantErr      error
	}{
		{
			name: "Found",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "gender", "age", "height", "start_weight", "target_weight", "updated_at"}).
					AddRow("me", "Alex", "Masculino", 28, 175, 85.0, 68.0, time.Now())
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, gender, age, height, start_weight, target_weight, updated_at FROM profiles WHERE id = $1 LIMIT 1;`)).
					WithArgs("me").
					WillReturnRows(rows)
			},
		},
		{
			name: "Not Found",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles WHERE id = $1 LIMIT 1;`)).
					WithArgs("me").
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "Query Error",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM profiles`)).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupMockStore(t, Postgres)
			tt.mockBehavior(mock)

			rec, err := s.SelectOne(context.Background(), domain.TableProfiles, domain.Query{Filter: map[string]any{"id": domain.ProfileID}})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Alex", rec["name"])
				assert.Equal(t, int64(175), rec["height"])
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInsert_AssignsID(t *testing.T) {
	s, mock := setupMockStore(t, Postgres)
	ts := time.Date(2026, 10, 24, 8, 30, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO weight_entries (id, weight, date, diff, trend) VALUES ($1, $2, $3, $4, $5);`)).
		WithArgs(sqlmock.AnyArg(), 78.5, ts, -1.5, "down").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := s.Insert(context.Background(), domain.TableWeightEntries, domain.Record{
		"weight": 78.5, "date": ts, "diff": -1.5, "trend": "down",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_SQLiteEncodesMillis(t *testing.T) {
	s, mock := setupMockStore(t, SQLite)
	ts := time.Date(2026, 10, 24, 8, 30, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO profiles (id, name, age, updated_at) VALUES (?, ?, ?, ?);`)).
		WithArgs("me", "Alex", int64(28), ts.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := s.Insert(context.Background(), domain.TableProfiles, domain.Record{
		"id": "me", "name": "Alex", "age": 28, "updated_at": ts,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectMany_SQLiteDecodesMillis(t *testing.T) {
	s, mock := setupMockStore(t, SQLite)
	ts := time.Date(2026, 10, 24, 8, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, weight, date, diff, trend FROM weight_entries LIMIT 1;`)).
		WillReturnRows(sqlmock.NewRows(entryCols).AddRow("a", 80.0, ts.UnixMilli(), 0.0, "flat"))

	got, err := s.SelectMany(context.Background(), domain.TableWeightEntries, domain.Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ts, got[0]["date"])
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"Updated", 1, nil},
		{"Unknown ID", 0, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupMockStore(t, Postgres)
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE weight_entries SET weight = $1, diff = $2, trend = $3 WHERE id = $4;`)).
				WithArgs(81.0, 1.0, "up", "abc").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := s.Update(context.Background(), domain.TableWeightEntries, "abc", domain.Record{
				"trend": "up", "weight": 81.0, "diff": 1.0,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdate_Rejects(t *testing.T) {
	s, _ := setupMockStore(t, Postgres)
	ctx := context.Background()

	assert.ErrorIs(t, s.Update(ctx, domain.TableWeightEntries, "abc", domain.Record{"id": "x"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Update(ctx, domain.TableWeightEntries, "abc", domain.Record{"unit": "kg"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Update(ctx, domain.TableWeightEntries, "abc", domain.Record{"weight": "heavy"}), domain.ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	s, mock := setupMockStore(t, Postgres)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM weight_entries WHERE id = $1;`)).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Delete(context.Background(), domain.TableWeightEntries, "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnknownTable(t *testing.T) {
	s, _ := setupMockStore(t, Postgres)
	_, err := s.SelectMany(context.Background(), "users; DROP TABLE profiles", domain.Query{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
