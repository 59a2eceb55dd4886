// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"weightlog/internal/domain"
	"weightlog/internal/metrics"

	"github.com/rs/zerolog"
)

// DefaultStoreTimeout bounds every record store call.
const DefaultStoreTimeout = 5 * time.Second

// State is the lifecycle state of a Projection.
type State string

// Projection states.
const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Projection is the in-memory view of the store: the profile, if any, and
// the history newest-first.
type Projection struct {
	State   State                `json:"state"`
	Profile *domain.UserProfile  `json:"profile"`
	History []domain.WeightEntry `json:"history"`
}

func (p Projection) clone() Projection {
	out := Projection{State: p.State, History: slices.Clone(p.History)}
	if out.History == nil {
		out.History = []domain.WeightEntry{}
	}
	if p.Profile != nil {
		prof := *p.Profile
		out.Profile = &prof
	}
	return out
}

// Options configures a Tracker. Zero values select the defaults.
type Options struct {
	Locker   Locker
	Clock    func() time.Time
	Timeout  time.Duration
	Location *time.Location
	Logger   *zerolog.Logger
	Metrics  *metrics.Metrics
}

// Tracker keeps the profile and weight history projection in sync with the
// record store. Every mutation goes through the store and is followed by a
// full reload.
type Tracker struct {
	store   domain.RecordStore
	lock    Locker
	now     func() time.Time
	timeout time.Duration
	loc     *time.Location
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	proj      Projection
	started   uint64
	installed uint64
}

// NewTracker creates a Tracker backed by the given store.
func NewTracker(store domain.RecordStore, opts Options) *Tracker {
	t := &Tracker{
		store:   store,
		lock:    opts.Locker,
		now:     opts.Clock,
		timeout: opts.Timeout,
		loc:     opts.Location,
		log:     zerolog.Nop(),
		metrics: opts.Metrics,
		proj:    Projection{State: StateLoading, History: []domain.WeightEntry{}},
	}
	if t.lock == nil {
		t.lock = NewLocalLocker()
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.timeout <= 0 {
		t.timeout = DefaultStoreTimeout
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	if opts.Logger != nil {
		t.log = opts.Logger.With().Str("component", "tracker").Logger()
	}
	return t
}

// Snapshot returns a copy of the current projection.
func (t *Tracker) Snapshot() Projection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.proj.clone()
}

// Summary derives the headline numbers from the current projection.
func (t *Tracker) Summary() domain.Summary {
	p := t.Snapshot()
	return domain.Summarize(p.Profile, p.History)
}

// Load fetches the profile and the full history and installs them as the
// current projection. Read failures are logged and leave an empty Ready
// projection; they are never returned.
func (t *Tracker) Load(ctx context.Context) Projection {
	t.mu.Lock()
	t.started++
	gen := t.started
	t.proj.State = StateLoading
	t.mu.Unlock()

	proj, err := t.fetch(ctx)
	if err != nil {
		t.log.Warn().Err(err).Msg("load failed, showing empty projection")
		t.metrics.LoadFailed()
		proj = Projection{State: StateReady, History: []domain.WeightEntry{}}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// A newer load may already have finished; never install older data over it.
	if gen > t.installed {
		t.installed = gen
		t.proj = proj
		t.metrics.SetHistorySize(len(proj.History))
	}
	if t.installed == t.started {
		t.proj.State = StateReady
	} else {
		t.proj.State = StateLoading
	}
	return t.proj.clone()
}

func (t *Tracker) fetch(ctx context.Context) (Projection, error) {
	proj := Projection{State: StateReady, History: []domain.WeightEntry{}}

	rec, err := storeCall(ctx, t, "select_one", domain.TableProfiles, func(ctx context.Context) (domain.Record, error) {
		return t.store.SelectOne(ctx, domain.TableProfiles, domain.Query{Filter: map[string]any{"id": domain.ProfileID}})
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return Projection{}, err
	default:
		p := domain.ProfileFromRecord(rec)
		proj.Profile = &p
	}

	rows, err := storeCall(ctx, t, "select_many", domain.TableWeightEntries, func(ctx context.Context) ([]domain.Record, error) {
		return t.store.SelectMany(ctx, domain.TableWeightEntries, domain.Query{OrderBy: "date", Desc: true})
	})
	if err != nil {
		return Projection{}, err
	}
	for _, r := range rows {
		proj.History = append(proj.History, domain.EntryFromRecord(r, t.loc))
	}
	sort.SliceStable(proj.History, func(i, j int) bool {
		return proj.History[i].Timestamp.After(proj.History[j].Timestamp)
	})
	return proj, nil
}

// refresh reloads after a successful write. The write already happened, so
// the reload is not tied to the caller's cancellation.
func (t *Tracker) refresh(ctx context.Context) {
	t.Load(context.WithoutCancel(ctx))
}

// AddWeight records a new measurement classified against the newest entry
// in the store and returns it.
func (t *Tracker) AddWeight(ctx context.Context, weight float64) (entry domain.WeightEntry, err error) {
	defer func() { t.metrics.Mutation("add_weight", err) }()

	if !domain.ValidWeight(weight) {
		return entry, fmt.Errorf("%w: weight must be > 0", domain.ErrInvalidInput)
	}
	unlock, err := t.lock.Lock(ctx)
	if err != nil {
		return entry, fmt.Errorf("acquire mutation lock: %w", err)
	}
	defer unlock()

	var previous *float64
	head, err := storeCall(ctx, t, "select_one", domain.TableWeightEntries, func(ctx context.Context) (domain.Record, error) {
		return t.store.SelectOne(ctx, domain.TableWeightEntries, domain.Query{OrderBy: "date", Desc: true})
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return entry, err
	default:
		w := domain.EntryFromRecord(head, t.loc).Weight
		previous = &w
	}

	diff, trend := domain.Classify(weight, previous)
	entry = domain.WeightEntry{Weight: weight, Timestamp: t.now().UTC(), Diff: diff, Trend: trend}

	rec, err := storeCall(ctx, t, "insert", domain.TableWeightEntries, func(ctx context.Context) (domain.Record, error) {
		return t.store.Insert(ctx, domain.TableWeightEntries, entry.Record())
	})
	if err != nil {
		t.log.Error().Err(err).Float64("weight", weight).Msg("add weight")
		return domain.WeightEntry{}, err
	}
	entry = domain.EntryFromRecord(rec, t.loc)
	t.log.Info().Str("id", entry.ID).Float64("weight", weight).Float64("diff", diff).Str("trend", string(trend)).Msg("weight added")

	t.refresh(ctx)
	return entry, nil
}

// SaveProfile creates the profile or updates it in place.
func (t *Tracker) SaveProfile(ctx context.Context, p domain.UserProfile) (err error) {
	defer func() { t.metrics.Mutation("save_profile", err) }()

	if err := p.Validate(); err != nil {
		return err
	}
	unlock, err := t.lock.Lock(ctx)
	if err != nil {
		return fmt.Errorf("acquire mutation lock: %w", err)
	}
	defer unlock()

	p.UpdatedAt = t.now().UTC()
	rec := p.Record()

	_, err = storeCall(ctx, t, "select_one", domain.TableProfiles, func(ctx context.Context) (domain.Record, error) {
		return t.store.SelectOne(ctx, domain.TableProfiles, domain.Query{Filter: map[string]any{"id": domain.ProfileID}})
	})
	switch {
	case err == nil:
		_, err = storeCall(ctx, t, "update", domain.TableProfiles, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, t.store.Update(ctx, domain.TableProfiles, domain.ProfileID, rec)
		})
	case errors.Is(err, domain.ErrNotFound):
		rec["id"] = domain.ProfileID
		_, err = storeCall(ctx, t, "insert", domain.TableProfiles, func(ctx context.Context) (domain.Record, error) {
			return t.store.Insert(ctx, domain.TableProfiles, rec)
		})
	}
	if err != nil {
		t.log.Error().Err(err).Msg("save profile")
		return err
	}
	t.log.Info().Str("name", p.Name).Msg("profile saved")

	t.refresh(ctx)
	return nil
}

// DeleteWeightEntry removes the entry with the given id.
func (t *Tracker) DeleteWeightEntry(ctx context.Context, id string) (err error) {
	defer func() { t.metrics.Mutation("delete_weight", err) }()

	unlock, err := t.lock.Lock(ctx)
	if err != nil {
		return fmt.Errorf("acquire mutation lock: %w", err)
	}
	defer unlock()

	_, err = storeCall(ctx, t, "delete", domain.TableWeightEntries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, t.store.Delete(ctx, domain.TableWeightEntries, id)
	})
	if err != nil {
		t.log.Error().Err(err).Str("id", id).Msg("delete weight")
		return err
	}
	t.log.Info().Str("id", id).Msg("weight deleted")

	t.refresh(ctx)
	return nil
}

// UpdateWeightEntry changes the weight of an entry and re-classifies it
// against its predecessor. The next newer entry is re-classified against
// the new weight.
func (t *Tracker) UpdateWeightEntry(ctx context.Context, id string, weight float64) (err error) {
	defer func() { t.metrics.Mutation("update_weight", err) }()

	if !domain.ValidWeight(weight) {
		return fmt.Errorf("%w: weight must be > 0", domain.ErrInvalidInput)
	}
	unlock, err := t.lock.Lock(ctx)
	if err != nil {
		return fmt.Errorf("acquire mutation lock: %w", err)
	}
	defer unlock()

	rows, err := storeCall(ctx, t, "select_many", domain.TableWeightEntries, func(ctx context.Context) ([]domain.Record, error) {
		return t.store.SelectMany(ctx, domain.TableWeightEntries, domain.Query{OrderBy: "date", Desc: true})
	})
	if err != nil {
		return err
	}
	history := make([]domain.WeightEntry, len(rows))
	for i, r := range rows {
		history[i] = domain.EntryFromRecord(r, t.loc)
	}
	idx := slices.IndexFunc(history, func(e domain.WeightEntry) bool { return e.ID == id })
	if idx < 0 {
		return &domain.StoreError{Op: "update", Table: domain.TableWeightEntries, Err: domain.ErrNotFound}
	}

	var previous *float64
	if idx+1 < len(history) {
		previous = &history[idx+1].Weight
	}
	diff, trend := domain.Classify(weight, previous)
	if err := t.updateEntry(ctx, id, domain.Record{"weight": weight, "diff": diff, "trend": string(trend)}); err != nil {
		return err
	}
	t.log.Info().Str("id", id).Float64("weight", weight).Msg("weight updated")

	if idx > 0 {
		next := history[idx-1]
		nd, nt := domain.Classify(next.Weight, &weight)
		if err := t.updateEntry(ctx, next.ID, domain.Record{"diff": nd, "trend": string(nt)}); err != nil {
			// The edit itself landed; show it even though the neighbour is stale.
			t.refresh(ctx)
			return err
		}
	}

	t.refresh(ctx)
	return nil
}

func (t *Tracker) updateEntry(ctx context.Context, id string, partial domain.Record) error {
	_, err := storeCall(ctx, t, "update", domain.TableWeightEntries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, t.store.Update(ctx, domain.TableWeightEntries, id, partial)
	})
	if err != nil {
		t.log.Error().Err(err).Str("id", id).Msg("update weight")
	}
	return err
}

// storeCall runs fn with the store timeout, records its duration and wraps
// any failure in a *domain.StoreError.
func storeCall[T any](ctx context.Context, t *Tracker, op, table string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	v, err := fn(ctx)
	t.metrics.ObserveStore(op, table, start)
	if err != nil {
		var zero T
		return zero, &domain.StoreError{Op: op, Table: table, Err: err}
	}
	return v, nil
}
