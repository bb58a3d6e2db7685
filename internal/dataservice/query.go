package dataservice

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
)

// SearchLimit caps SearchEntries.
const SearchLimit = 100

var statsColumns = []store.Column{store.ColumnSteps, store.ColumnSleepHours, store.ColumnMood}

// rangeQuery scopes a query to userID and the inclusive [from, to] window.
// An empty bound is open.
func rangeQuery(userID, from, to string) store.Query {
	q := store.Query{Where: []store.Predicate{store.Eq(store.ColumnUserID, userID)}}
	if from != "" {
		q.Where = append(q.Where, store.Gte(store.ColumnEntryDate, from))
	}
	if to != "" {
		q.Where = append(q.Where, store.Lte(store.ColumnEntryDate, to))
	}
	return q
}

// applySearch adds the filter for text interpreted according to typ.
func applySearch(q store.Query, text string, typ models.SearchType) store.Query {
	text = strings.TrimSpace(text)
	if text == "" {
		return q
	}

	switch typ {
	case models.SearchNotes:
		q.Where = append(q.Where, store.Contains(store.ColumnNotes, text))
	case models.SearchDate:
		q.Where = append(q.Where, store.Contains(store.ColumnEntryDate, text))
	case models.SearchSteps:
		if n, err := strconv.Atoi(text); err == nil {
			q.Where = append(q.Where, store.Eq(store.ColumnSteps, n))
		} else {
			q.Where = append(q.Where, store.Contains(store.ColumnNotes, text))
		}
	case models.SearchSleep:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			q.Where = append(q.Where, store.Eq(store.ColumnSleepHours, f))
		} else {
			q.Where = append(q.Where, store.Contains(store.ColumnNotes, text))
		}
	default:
		q.Any = append(q.Any,
			store.Contains(store.ColumnNotes, text),
			store.Contains(store.ColumnEntryDate, text),
		)
	}
	return q
}

// fetchQuery builds the filtered query for opts, without ordering or paging.
func fetchQuery(userID, from, to string, opts models.FetchOptions) store.Query {
	q := applySearch(rangeQuery(userID, from, to), opts.Search, opts.SearchType)
	if opts.MoodFilter != "" && opts.MoodFilter != models.MoodFilterAll {
		q.Where = append(q.Where, store.Eq(store.ColumnMood, opts.MoodFilter))
	}
	return q
}

func byDateDesc() []store.Order {
	return []store.Order{{Column: store.ColumnEntryDate, Desc: true}}
}

func cloneEntry(e models.Entry) models.Entry {
	if e.Notes != nil {
		n := *e.Notes
		e.Notes = &n
	}
	return e
}

func cloneEntries(in []models.Entry) []models.Entry {
	out := make([]models.Entry, len(in))
	for i, e := range in {
		out[i] = cloneEntry(e)
	}
	return out
}
