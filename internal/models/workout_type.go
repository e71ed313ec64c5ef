// ABOUTME: WorkoutType enum for the supported workout formats.
// ABOUTME: Types are display labels only and carry no behaviour.
package models

import (
	"fmt"
	"strings"
)

// WorkoutType is the declared format of a workout.
type WorkoutType string

const (
	WorkoutAMRAP   WorkoutType = "amrap"   // as many rounds as possible
	WorkoutForTime WorkoutType = "fortime" // timed completion
	WorkoutEMOM    WorkoutType = "emom"    // every minute on the minute
)

// AllWorkoutTypes returns all valid workout types.
var AllWorkoutTypes = []WorkoutType{WorkoutAMRAP, WorkoutForTime, WorkoutEMOM}

// Display returns the upper-cased label shown next to a workout name.
func (t WorkoutType) Display() string {
	return strings.ToUpper(string(t))
}

// IsValid reports whether t is one of the known workout types.
func (t WorkoutType) IsValid() bool {
	for _, wt := range AllWorkoutTypes {
		if wt == t {
			return true
		}
	}
	return false
}

// ParseWorkoutType parses a user supplied type, case-insensitively.
// "for-time" and "for_time" are accepted as spellings of fortime.
func ParseWorkoutType(s string) (WorkoutType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "", "_", "", " ", "").Replace(norm)
	t := WorkoutType(norm)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown workout type %q (use amrap, fortime or emom)", ErrValidation, s)
	}
	return t, nil
}
