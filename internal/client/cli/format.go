package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/wellkeeper/internal/client/client"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
)

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// getStatus renders the prompt suffix, e.g. " (alice online)".
func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.userName
	if a.mode != "" {
		if s != "" {
			s += " "
		}
		s += string(a.mode)
	}
	if a.sub != nil {
		s += " watching"
	}
	if s == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", s)
}

func (a *App) printEntries(entries []models.Entry) {
	if len(entries) == 0 {
		a.printf("No entries\n")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSTEPS\tSLEEP\tMOOD\tNOTES\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%s\t%s\t%s\n", e.EntryDate, e.Steps, e.SleepHours, e.Mood, e.NotesText(), e.ID)
	}
	_ = tw.Flush()
}

func (a *App) printEntry(e models.Entry) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Date:\t%s\n", e.EntryDate)
	fmt.Fprintf(tw, "Steps:\t%d\n", e.Steps)
	fmt.Fprintf(tw, "Sleep:\t%g h\n", e.SleepHours)
	fmt.Fprintf(tw, "Mood:\t%s\n", e.Mood)
	fmt.Fprintf(tw, "Notes:\t%s\n", e.NotesText())
	fmt.Fprintf(tw, "Created:\t%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "Updated:\t%s\n", e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	_ = tw.Flush()
}

func (a *App) printStats(from, to string, st models.Stats) {
	a.printf("%s..%s: %d entries, %d steps, %.1f h average sleep\n", from, to, st.EntryCount, st.TotalSteps, st.AvgSleep)
	for _, m := range models.Moods {
		a.printf("  %-9s %d\n", m, st.MoodCounts[m])
	}
}

func isUnavailable(err error) bool {
	return errors.Is(err, client.ErrUnavailable)
}
