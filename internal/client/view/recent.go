package view

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/wellkeeper/internal/models"
)

// Recent returns the n most recently created entries, newest first.
// Ties on created_at fall back to the later entry date.
func Recent(entries []models.Entry, n int) []models.Entry {
	if n <= 0 {
		return []models.Entry{}
	}
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b models.Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.EntryDate, a.EntryDate)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
