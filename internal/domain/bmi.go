package domain

import (
	"fmt"
	"math"
)

// Category is a body-mass-index bucket.
type Category string

// BMI categories.
const (
	Underweight Category = "underweight"
	Normal      Category = "normal"
	Overweight  Category = "overweight"
	Obese       Category = "obese"
)

// Gauge bounds for GaugePosition.
const (
	gaugeMin = 15.0
	gaugeMax = 40.0
)

// BMI returns weightKg divided by the square of the height in meters.
func BMI(weightKg, heightCm float64) (float64, error) {
	if heightCm <= 0 || math.IsNaN(heightCm) || math.IsInf(heightCm, 0) {
		return 0, fmt.Errorf("%w: height must be > 0", ErrInvalidInput)
	}
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return 0, fmt.Errorf("%w: weight must be finite", ErrInvalidInput)
	}
	m := heightCm / 100
	return weightKg / (m * m), nil
}

// CategoryFor maps a BMI value to its bucket. Intervals are half-open with
// an inclusive lower bound: [18.5, 25) is normal and [25, 30) overweight.
func CategoryFor(value float64) Category {
	switch {
	case value < 18.5:
		return Underweight
	case value < 25.0:
		return Normal
	case value < 30.0:
		return Overweight
	}
	return Obese
}

// GaugePosition places value on a 0..1 scale spanning BMI 15 to 40.
func GaugePosition(value float64) float64 {
	pos := (value - gaugeMin) / (gaugeMax - gaugeMin)
	return math.Min(math.Max(pos, 0), 1)
}
