// Package models holds the domain types shared by the store, the
// data-access facade and the wire layer.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Mood is the self-reported mood attached to an entry.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodNeutral  Mood = "neutral"
	MoodTired    Mood = "tired"
	MoodStressed Mood = "stressed"
)

// Moods lists every valid mood in display order.
var Moods = []Mood{MoodHappy, MoodNeutral, MoodTired, MoodStressed}

func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodNeutral, MoodTired, MoodStressed:
		return true
	}
	return false
}

// ParseMood accepts a mood name in any case.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("invalid mood %q", s)
	}
	return m, nil
}

// Limits enforced by validation.
const (
	MaxSteps      = 999999
	MaxSleepHours = 24.0
)

// Entry is one user's daily wellness record.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	EntryDate  string    `json:"entry_date"`
	Steps      int       `json:"steps"`
	SleepHours float64   `json:"sleep_hours"`
	Mood       Mood      `json:"mood"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NotesText returns the notes or "" when they are NULL.
func (e Entry) NotesText() string {
	if e.Notes == nil {
		return ""
	}
	return *e.Notes
}

// EntryInput carries the user-editable fields of a new entry.
type EntryInput struct {
	EntryDate  string  `json:"entry_date"`
	Steps      int     `json:"steps"`
	SleepHours float64 `json:"sleep_hours"`
	Mood       Mood    `json:"mood"`
	Notes      string  `json:"notes,omitempty"`
}

// NotesValue maps empty notes to NULL.
func (in EntryInput) NotesValue() *string {
	return nullableText(in.Notes)
}

// EntryPatch is a partial update; nil fields are left unchanged.
// A non-nil empty Notes clears the notes.
type EntryPatch struct {
	EntryDate  *string  `json:"entry_date,omitempty"`
	Steps      *int     `json:"steps,omitempty"`
	SleepHours *float64 `json:"sleep_hours,omitempty"`
	Mood       *Mood    `json:"mood,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

func (p EntryPatch) Empty() bool {
	return p.EntryDate == nil && p.Steps == nil && p.SleepHours == nil && p.Mood == nil && p.Notes == nil
}

func nullableText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
