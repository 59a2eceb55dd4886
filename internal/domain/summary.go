package domain

// BMIReading is a computed BMI with its bucket and gauge position.
type BMIReading struct {
	Value    float64  `json:"value"`
	Category Category `json:"category"`
	Gauge    float64  `json:"gauge"`
}

// Summary is the headline view derived from a profile and its history.
type Summary struct {
	Current   float64     `json:"current"`
	Target    float64     `json:"target"`
	FromStart float64     `json:"fromStart"`
	ToTarget  float64     `json:"toTarget"`
	Entries   int         `json:"entries"`
	BMI       *BMIReading `json:"bmi,omitempty"`
}

// Summarize derives a Summary. history must be newest-first; with no
// history the profile's start weight stands in for the current weight.
func Summarize(profile *UserProfile, history []WeightEntry) Summary {
	s := Summary{Entries: len(history)}
	if len(history) > 0 {
		s.Current = history[0].Weight
	}
	if profile == nil {
		return s
	}
	if s.Current == 0 {
		s.Current = profile.StartWeight
	}
	s.Target = profile.TargetWeight
	s.FromStart = roundTo(s.Current-profile.StartWeight, 2)
	if profile.TargetWeight > 0 {
		s.ToTarget = roundTo(s.Current-profile.TargetWeight, 2)
	}
	if s.Current > 0 {
		if v, err := BMI(s.Current, float64(profile.Height)); err == nil {
			s.BMI = &BMIReading{Value: roundTo(v, 2), Category: CategoryFor(v), Gauge: GaugePosition(v)}
		}
	}
	return s
}
