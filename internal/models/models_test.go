package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() EntryInput {
	return EntryInput{EntryDate: "2024-03-01", Steps: 5000, SleepHours: 7.5, Mood: MoodHappy}
}

func TestEntryInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EntryInput)
		field   string
		message string
	}{
		{"ok", func(*EntryInput) {}, "", ""},
		{"sleep zero", func(in *EntryInput) { in.SleepHours = 0 }, "", ""},
		{"sleep 24", func(in *EntryInput) { in.SleepHours = 24 }, "", ""},
		{"steps max", func(in *EntryInput) { in.Steps = MaxSteps }, "", ""},
		{"sleep above 24", func(in *EntryInput) { in.SleepHours = 24.01 }, "sleep_hours", "Sleep hours must be between 0 and 24"},
		{"sleep negative", func(in *EntryInput) { in.SleepHours = -0.01 }, "sleep_hours", "Sleep hours must be between 0 and 24"},
		{"steps negative", func(in *EntryInput) { in.Steps = -1 }, "steps", "Steps cannot be negative"},
		{"steps too many", func(in *EntryInput) { in.Steps = MaxSteps + 1 }, "steps", "Steps cannot exceed 999999"},
		{"missing date", func(in *EntryInput) { in.EntryDate = "" }, "entry_date", "Date is required"},
		{"bad date", func(in *EntryInput) { in.EntryDate = "01/03/2024" }, "entry_date", "Date must be in YYYY-MM-DD format"},
		{"missing mood", func(in *EntryInput) { in.Mood = "" }, "mood", "Mood is required"},
		{"unknown mood", func(in *EntryInput) { in.Mood = "angry" }, "mood", "Invalid mood"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.message, ve.Message)
		})
	}
}

func TestEntryPatch_Validate(t *testing.T) {
	require.Error(t, EntryPatch{}.Validate())

	steps := 6000
	require.NoError(t, EntryPatch{Steps: &steps}.Validate())

	sleep := 25.0
	require.Error(t, EntryPatch{Steps: &steps, SleepHours: &sleep}.Validate())

	mood := Mood("grumpy")
	require.Error(t, EntryPatch{Mood: &mood}.Validate())
}

func TestEntryInput_NotesValue(t *testing.T) {
	assert.Nil(t, EntryInput{Notes: "   "}.NotesValue())
	got := EntryInput{Notes: " walked to work "}.NotesValue()
	require.NotNil(t, got)
	assert.Equal(t, "walked to work", *got)
}

func TestParseMood(t *testing.T) {
	m, err := ParseMood(" Tired ")
	require.NoError(t, err)
	assert.Equal(t, MoodTired, m)

	_, err = ParseMood("sleepy")
	require.Error(t, err)
}

func TestFetchOptions_NormalizeAndValidate(t *testing.T) {
	o := FetchOptions{}.Normalize()
	assert.Equal(t, FetchOptions{
		Page: 1, Limit: 50, SearchType: SearchAll, MoodFilter: MoodFilterAll,
		SortBy: SortByDate, SortOrder: SortDesc,
	}, o)
	require.NoError(t, o.Validate())
	assert.Equal(t, 0, o.Offset())

	o.Page = 3
	o.Limit = 25
	assert.Equal(t, 50, o.Offset())

	o.Page = math.MaxInt / 25
	require.NoError(t, o.Validate())

	bad := []FetchOptions{
		{SearchType: "mood"},
		{SortBy: "notes"},
		{SortOrder: "up"},
		{MoodFilter: "ecstatic"},
		{Page: math.MaxInt, Limit: 2},
		{Page: math.MaxInt/50 + 1},
	}
	for _, b := range bad {
		require.Error(t, b.Normalize().Validate(), "%+v", b)
	}
}

func TestNewFetchResult_HasMore(t *testing.T) {
	tests := []struct {
		total, page, limit int
		want               bool
	}{
		{0, 1, 25, false},
		{25, 1, 25, false},
		{26, 1, 25, true},
		{51, 2, 25, true},
		{50, 2, 25, false},
	}
	for _, tt := range tests {
		r := NewFetchResult(nil, tt.total, tt.page, tt.limit)
		assert.Equal(t, tt.want, r.HasMore, "%+v", tt)
		assert.NotNil(t, r.Data)
	}
}

func TestComputeStats(t *testing.T) {
	empty := ComputeStats(nil)
	assert.Equal(t, 0.0, empty.AvgSleep)
	assert.Equal(t, map[Mood]int{MoodHappy: 0, MoodNeutral: 0, MoodTired: 0, MoodStressed: 0}, empty.MoodCounts)

	s := ComputeStats([]Entry{
		{Steps: 5000, SleepHours: 7, Mood: MoodHappy},
		{Steps: 3000, SleepHours: 6, Mood: MoodTired},
		{Steps: 2000, SleepHours: 8, Mood: MoodHappy},
	})
	assert.EqualValues(t, 10000, s.TotalSteps)
	assert.InDelta(t, 7.0, s.AvgSleep, 1e-9)
	assert.Equal(t, 2, s.MoodCounts[MoodHappy])
	assert.Equal(t, 1, s.MoodCounts[MoodTired])
	assert.Equal(t, 0, s.MoodCounts[MoodStressed])
	assert.Equal(t, 3, s.EntryCount)
}

func TestParseChangeKind(t *testing.T) {
	for in, want := range map[string]ChangeKind{
		"INSERT": ChangeInserted, "updated": ChangeUpdated, "DELETE": ChangeDeleted,
	} {
		got, err := ParseChangeKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseChangeKind("TRUNCATE")
	require.Error(t, err)
}
