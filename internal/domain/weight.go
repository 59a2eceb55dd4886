package domain

import (
	"math"
	"time"
)

// Trend is the direction of a measurement relative to the one before it.
type Trend string

// Trend values.
const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// ParseTrend maps a stored trend to a Trend, defaulting to flat.
func ParseTrend(s string) Trend {
	switch Trend(s) {
	case TrendUp, TrendDown:
		return Trend(s)
	}
	return TrendFlat
}

// DisplayLayout is the layout used for WeightEntry.Date.
const DisplayLayout = "02 Jan, 15:04"

// WeightEntry represents a single weight measurement.
type WeightEntry struct {
	ID        string    `json:"id"`
	Weight    float64   `json:"weight"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
	Diff      float64   `json:"diff"`
	Trend     Trend     `json:"trend"`
}

// Classify returns the signed delta between newWeight and the previous
// measurement together with its trend. A nil previous yields (0, flat).
func Classify(newWeight float64, previous *float64) (float64, Trend) {
	if previous == nil {
		return 0, TrendFlat
	}
	diff := newWeight - *previous
	switch {
	case diff > 0:
		return diff, TrendUp
	case diff < 0:
		return diff, TrendDown
	}
	return 0, TrendFlat
}

// ValidWeight reports whether v can be stored as a measurement.
func ValidWeight(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
