// Package seed fills a record store with a plausible demo profile and weight
// history. It is intended for development and demos only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"weightlog/internal/domain"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls the generated data.
type Options struct {
	// Days of history ending at Now, one measurement per day.
	Days int
	// Seed makes the output reproducible; 0 picks a random seed.
	Seed int64
	Now  time.Time
	// Profile also writes a profile row when none exists.
	Profile bool
}

// Result reports what was written.
type Result struct {
	Profile *domain.UserProfile
	Entries []domain.WeightEntry
}

// Run writes the demo data straight to store, oldest entry first, with
// diff and trend classified along the chain. Measurements are merged into
// any existing history by date.
func Run(ctx context.Context, store domain.RecordStore, opts Options) (Result, error) {
	if opts.Days <= 0 {
		return Result{}, fmt.Errorf("%w: days must be > 0", domain.ErrInvalidInput)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	faker := gofakeit.New(opts.Seed)

	var res Result
	if opts.Profile {
		p, err := ensureProfile(ctx, store, faker, opts.Now)
		if err != nil {
			return Result{}, err
		}
		res.Profile = p
	}

	rows, err := store.SelectMany(ctx, domain.TableWeightEntries, domain.Query{OrderBy: "date"})
	if err != nil {
		return Result{}, &domain.StoreError{Op: "select_many", Table: domain.TableWeightEntries, Err: err}
	}
	existing := make([]domain.WeightEntry, 0, len(rows))
	for _, r := range rows {
		existing = append(existing, domain.EntryFromRecord(r, time.UTC))
	}
	sortChain(existing)

	weight := faker.Float64Range(65, 95)
	switch {
	case len(existing) > 0:
		weight = existing[len(existing)-1].Weight
	case res.Profile != nil:
		weight = res.Profile.StartWeight
	}

	generated := make([]domain.WeightEntry, 0, opts.Days)
	for i := opts.Days - 1; i >= 0; i-- {
		// Drift slowly downwards with daily noise.
		weight = round1(math.Max(30, weight+faker.Float64Range(-0.6, 0.45)))
		day := opts.Now.AddDate(0, 0, -i)
		ts := time.Date(day.Year(), day.Month(), day.Day(), 7, faker.Number(0, 59), 0, 0, day.Location())
		generated = append(generated, domain.WeightEntry{Weight: weight, Timestamp: ts.UTC()})
	}

	// Generated days may interleave with existing history, so diff and trend
	// are computed over the merged chain. Existing entries whose predecessor
	// changed are reclassified in place.
	chain := append(slices.Clone(existing), generated...)
	sortChain(chain)

	var previous *float64
	for _, e := range chain {
		diff, trend := domain.Classify(e.Weight, previous)
		w := e.Weight
		previous = &w

		if e.ID != "" {
			if e.Diff == diff && e.Trend == trend {
				continue
			}
			err := store.Update(ctx, domain.TableWeightEntries, e.ID, domain.Record{"diff": diff, "trend": string(trend)})
			if err != nil {
				return res, &domain.StoreError{Op: "update", Table: domain.TableWeightEntries, Err: err}
			}
			continue
		}

		e.Diff, e.Trend = diff, trend
		rec, err := store.Insert(ctx, domain.TableWeightEntries, e.Record())
		if err != nil {
			return res, &domain.StoreError{Op: "insert", Table: domain.TableWeightEntries, Err: err}
		}
		res.Entries = append(res.Entries, domain.EntryFromRecord(rec, time.UTC))
	}
	return res, nil
}

// sortChain orders entries oldest first.
func sortChain(entries []domain.WeightEntry) {
	slices.SortStableFunc(entries, func(a, b domain.WeightEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}

func ensureProfile(ctx context.Context, store domain.RecordStore, faker *gofakeit.Faker, now time.Time) (*domain.UserProfile, error) {
	rec, err := store.SelectOne(ctx, domain.TableProfiles, domain.Query{Filter: map[string]any{"id": domain.ProfileID}})
	if err == nil {
		p := domain.ProfileFromRecord(rec)
		return &p, nil
	}
	if !isNotFound(err) {
		return nil, &domain.StoreError{Op: "select_one", Table: domain.TableProfiles, Err: err}
	}

	start := round1(faker.Float64Range(70, 95))
	p := domain.UserProfile{
		Name:         faker.Name(),
		Gender:       faker.Gender(),
		Age:          faker.Number(20, 65),
		Height:       faker.Number(155, 195),
		StartWeight:  start,
		TargetWeight: round1(start - faker.Float64Range(5, 15)),
		UpdatedAt:    now.UTC(),
	}
	row := p.Record()
	row["id"] = domain.ProfileID
	if _, err := store.Insert(ctx, domain.TableProfiles, row); err != nil {
		return nil, &domain.StoreError{Op: "insert", Table: domain.TableProfiles, Err: err}
	}
	return &p, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
