package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weightlog/internal/domain"
)

// Range is a chart window ending today.
type Range string

// Chart ranges.
const (
	RangeWeek  Range = "W"
	RangeMonth Range = "M"
	RangeYear  Range = "Y"
)

// Days returns the number of days covered by r.
func (r Range) Days() int {
	switch r {
	case RangeMonth:
		return 30
	case RangeYear:
		return 365
	}
	return 7
}

// ParseRange accepts W, M or Y in either case. An empty string means W.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToUpper(s)); r {
	case "":
		return RangeWeek, nil
	case RangeWeek, RangeMonth, RangeYear:
		return r, nil
	}
	return "", fmt.Errorf("%w: range must be W, M or Y", domain.ErrInvalidInput)
}

// Projector exposes the current projection.
type Projector interface {
	Snapshot() Projection
}

// ChartsService builds chart series from the tracker projection.
type ChartsService struct {
	proj Projector
	now  func() time.Time
	loc  *time.Location
}

// NewChartsService creates a ChartsService. A nil loc means time.Local.
func NewChartsService(p Projector, loc *time.Location) *ChartsService {
	if loc == nil {
		loc = time.Local
	}
	return &ChartsService{proj: p, now: time.Now, loc: loc}
}

// ChartPoint is a single day in a chart series.
type ChartPoint struct {
	Day    string       `json:"day"`
	Label  string       `json:"label"`
	Weight *WeightPoint `json:"weight"`
}

// WeightPoint is the optional weight value within a ChartPoint.
type WeightPoint struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Series returns one point per local day of rng, oldest first, holding the
// latest measurement of that day converted to unit.
func (s *ChartsService) Series(_ context.Context, rng Range, unit string) ([]ChartPoint, error) {
	if !domain.ValidUnit(unit) {
		return nil, fmt.Errorf("%w: unit must be \"kg\" or \"lb\"", domain.ErrInvalidInput)
	}
	days := rng.Days()

	// History is newest first, so the first hit per day is the latest.
	latest := make(map[string]float64)
	for _, e := range s.proj.Snapshot().History {
		day := e.Timestamp.In(s.loc).Format(time.DateOnly)
		if _, ok := latest[day]; !ok {
			latest[day] = e.Weight
		}
	}

	today := s.now().In(s.loc)
	points := make([]ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		day := d.Format(time.DateOnly)

		var wp *WeightPoint
		if kg, ok := latest[day]; ok {
			wp = &WeightPoint{Value: domain.ConvertWeight(kg, domain.UnitKg, unit), Unit: unit}
		}
		points = append(points, ChartPoint{Day: day, Label: d.Format("02 Jan"), Weight: wp})
	}
	return points, nil
}
