package models

// Stats summarises entries over a date window.
type Stats struct {
	TotalSteps int64        `json:"totalSteps"`
	AvgSleep   float64      `json:"avgSleep"`
	MoodCounts map[Mood]int `json:"moodCounts"`
	EntryCount int          `json:"entryCount"`
}

// ComputeStats reduces entries to totals. Every mood is present in
// MoodCounts, and AvgSleep is 0 for an empty set.
func ComputeStats(entries []Entry) Stats {
	s := Stats{MoodCounts: make(map[Mood]int, len(Moods))}
	for _, m := range Moods {
		s.MoodCounts[m] = 0
	}

	var sleep float64
	for _, e := range entries {
		s.TotalSteps += int64(e.Steps)
		sleep += e.SleepHours
		if e.Mood.Valid() {
			s.MoodCounts[e.Mood]++
		}
	}

	s.EntryCount = len(entries)
	if s.EntryCount > 0 {
		s.AvgSleep = sleep / float64(s.EntryCount)
	}
	return s
}
