// Package view keeps the client's local, optimistic copy of what is on
// screen. It does not consult or update the data-access cache.
package view

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/wellkeeper/internal/models"
)

// EntryList is the currently displayed page of entries. Writes made by
// this client are applied locally without a refetch.
type EntryList struct {
	mu      sync.Mutex
	entries []models.Entry
}

// Replace swaps in a freshly fetched page.
func (l *EntryList) Replace(entries []models.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = slices.Clone(entries)
}

// ApplyCreated puts e at the top of the list.
func (l *EntryList) ApplyCreated(e models.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(e.ID); i >= 0 {
		l.entries[i] = e
		return
	}
	l.entries = slices.Insert(l.entries, 0, e)
}

// ApplyUpdated replaces the entry with the same id in place. It reports
// whether the entry was shown.
func (l *EntryList) ApplyUpdated(e models.Entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(e.ID)
	if i < 0 {
		return false
	}
	l.entries[i] = e
	return true
}

func (l *EntryList) ApplyDeleted(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.entries = slices.Delete(l.entries, i, i+1)
	return true
}

// Apply routes a change event to the matching Apply method.
func (l *EntryList) Apply(ev models.ChangeEvent) {
	switch ev.Kind {
	case models.ChangeInserted:
		l.ApplyCreated(ev.Entry)
	case models.ChangeUpdated:
		l.ApplyUpdated(ev.Entry)
	case models.ChangeDeleted:
		l.ApplyDeleted(ev.Entry.ID)
	}
}

// Entries returns a copy of the list.
func (l *EntryList) Entries() []models.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

func (l *EntryList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *EntryList) index(id string) int {
	return slices.IndexFunc(l.entries, func(e models.Entry) bool { return e.ID == id })
}
