package models

import (
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
)

// ValidationError reports a field that failed client-side validation.
// It is returned before any store call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// Validate checks every field of a new entry.
func (in EntryInput) Validate() error {
	if err := validateDate(in.EntryDate); err != nil {
		return err
	}
	if err := validateSteps(in.Steps); err != nil {
		return err
	}
	if err := validateSleep(in.SleepHours); err != nil {
		return err
	}
	return validateMood(in.Mood)
}

// Validate checks only the fields present in the patch.
func (p EntryPatch) Validate() error {
	if p.Empty() {
		return invalid("patch", "Nothing to update")
	}
	if p.EntryDate != nil {
		if err := validateDate(*p.EntryDate); err != nil {
			return err
		}
	}
	if p.Steps != nil {
		if err := validateSteps(*p.Steps); err != nil {
			return err
		}
	}
	if p.SleepHours != nil {
		if err := validateSleep(*p.SleepHours); err != nil {
			return err
		}
	}
	if p.Mood != nil {
		return validateMood(*p.Mood)
	}
	return nil
}

func validateDate(d string) error {
	if d == "" {
		return invalid("entry_date", "Date is required")
	}
	if _, err := time.Parse(common.DateLayout, d); err != nil {
		return invalid("entry_date", "Date must be in YYYY-MM-DD format")
	}
	return nil
}

func validateSteps(n int) error {
	if n < 0 {
		return invalid("steps", "Steps cannot be negative")
	}
	if n > MaxSteps {
		return invalid("steps", fmt.Sprintf("Steps cannot exceed %d", MaxSteps))
	}
	return nil
}

func validateSleep(h float64) error {
	if math.IsNaN(h) || h < 0 || h > MaxSleepHours {
		return invalid("sleep_hours", "Sleep hours must be between 0 and 24")
	}
	return nil
}

func validateMood(m Mood) error {
	if m == "" {
		return invalid("mood", "Mood is required")
	}
	if !m.Valid() {
		return invalid("mood", "Invalid mood")
	}
	return nil
}
