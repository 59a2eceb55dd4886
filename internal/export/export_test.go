package export

import (
	"bytes"
	"testing"
	"time"

	"weightlog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	ts := time.Date(2026, 10, 24, 8, 30, 0, 0, time.UTC)
	history := []domain.WeightEntry{
		{ID: "b", Weight: 72.4, Timestamp: ts, Diff: -0.2, Trend: domain.TrendDown},
		{ID: "a", Weight: 72.6, Timestamp: ts.Add(-24 * time.Hour), Trend: domain.TrendFlat},
	}
	profile := &domain.UserProfile{Name: "Alex Silva", Gender: "Masculino", Age: 28, Height: 175, StartWeight: 85, TargetWeight: 70}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, profile, history, time.UTC))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows(HistorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Weight (kg)", "Diff (kg)", "Trend"}, rows[0])
	assert.Equal(t, []string{"2026-10-24 08:30", "72.4", "-0.2", "down"}, rows[1])
	assert.Equal(t, "flat", rows[2][3])

	name, err := f.GetCellValue(ProfileSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Alex Silva", name)
}

func TestWriteXLSX_NoProfile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{HistorySheet}, f.GetSheetList())
	rows, err := f.GetRows(HistorySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
