package domain_test

import (
	"errors"
	"testing"
	"time"

	"weightlog/internal/domain"
)

func TestEntryRecordMapping(t *testing.T) {
	ts := time.Date(2026, 10, 24, 8, 30, 0, 0, time.UTC)
	in := domain.WeightEntry{Weight: 72.4, Timestamp: ts, Diff: -0.2, Trend: domain.TrendDown}

	rec := in.Record()
	rec["id"] = "abc"
	out := domain.EntryFromRecord(rec, time.UTC)

	if out.ID != "abc" || out.Weight != 72.4 || out.Diff != -0.2 || out.Trend != domain.TrendDown {
		t.Fatalf("unexpected entry: %+v", out)
	}
	if !out.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v; want %v", out.Timestamp, ts)
	}
	if out.Date != "24 Oct, 08:30" {
		t.Errorf("date = %q", out.Date)
	}
}

func TestEntryFromRecord_LooseTypes(t *testing.T) {
	out := domain.EntryFromRecord(domain.Record{
		"id":     "x",
		"weight": "80.5",
		"date":   int64(0),
		"diff":   nil,
		"trend":  nil,
	}, time.UTC)
	if out.Weight != 80.5 || out.Diff != 0 || out.Trend != domain.TrendFlat {
		t.Fatalf("unexpected entry: %+v", out)
	}
}

func TestProfileRecordMapping(t *testing.T) {
	in := domain.UserProfile{
		Name: "Alex Silva", Gender: "Masculino", Age: 28, Height: 175,
		StartWeight: 85, TargetWeight: 68,
		UpdatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	out := domain.ProfileFromRecord(in.Record())
	if out != in {
		t.Fatalf("got %+v; want %+v", out, in)
	}
}

func TestProfileValidate(t *testing.T) {
	valid := domain.UserProfile{Name: "Alex", Age: 28, Height: 175, StartWeight: 85, TargetWeight: 68}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *domain.UserProfile)
	}{
		{"blank name", func(p *domain.UserProfile) { p.Name = "  " }},
		{"zero age", func(p *domain.UserProfile) { p.Age = 0 }},
		{"zero height", func(p *domain.UserProfile) { p.Height = 0 }},
		{"negative start", func(p *domain.UserProfile) { p.StartWeight = -1 }},
		{"zero target", func(p *domain.UserProfile) { p.TargetWeight = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			if err := p.Validate(); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v; want ErrInvalidInput", err)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	err := error(&domain.StoreError{Op: "delete", Table: domain.TableWeightEntries, Err: domain.ErrNotFound})
	if !errors.Is(err, domain.ErrStore) {
		t.Error("expected ErrStore match")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Error("expected ErrNotFound match")
	}
	var se *domain.StoreError
	if !errors.As(err, &se) || se.Op != "delete" {
		t.Error("expected errors.As to find StoreError")
	}
}
