package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProfileID is the key of the single profile row.
const ProfileID = "me"

// UserProfile holds the personal data BMI and goals are derived from.
type UserProfile struct {
	Name         string    `json:"name"`
	Gender       string    `json:"gender"`
	Age          int       `json:"age"`
	Height       int       `json:"height"`
	StartWeight  float64   `json:"startWeight"`
	TargetWeight float64   `json:"targetWeight"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks the fields a profile must carry before it is saved.
func (p UserProfile) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case p.Age <= 0:
		return fmt.Errorf("%w: age must be > 0", ErrInvalidInput)
	case p.Height <= 0:
		return fmt.Errorf("%w: height must be > 0", ErrInvalidInput)
	case !ValidWeight(p.StartWeight):
		return fmt.Errorf("%w: start weight must be > 0", ErrInvalidInput)
	case !ValidWeight(p.TargetWeight):
		return fmt.Errorf("%w: target weight must be > 0", ErrInvalidInput)
	}
	return nil
}
