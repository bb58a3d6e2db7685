package models

import (
	"fmt"
	"math"
)

// SearchType selects which field a free-text search applies to.
type SearchType string

const (
	SearchAll   SearchType = "all"
	SearchNotes SearchType = "notes"
	SearchDate  SearchType = "date"
	SearchSteps SearchType = "steps"
	SearchSleep SearchType = "sleep"
)

// SortField is a column entries may be ordered by.
type SortField string

const (
	SortByDate      SortField = "entry_date"
	SortBySteps     SortField = "steps"
	SortBySleep     SortField = "sleep_hours"
	SortByCreatedAt SortField = "created_at"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// MoodFilterAll disables mood filtering.
const MoodFilterAll = "all"

// Fetch defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 50
)

// FetchOptions controls filtering, ordering and paging of FetchEntries.
type FetchOptions struct {
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Search     string     `json:"search"`
	SearchType SearchType `json:"searchType"`
	MoodFilter string     `json:"moodFilter"`
	SortBy     SortField  `json:"sortBy"`
	SortOrder  SortOrder  `json:"sortOrder"`
}

// Normalize returns a copy with zero values replaced by defaults.
func (o FetchOptions) Normalize() FetchOptions {
	if o.Page <= 0 {
		o.Page = DefaultPage
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.SearchType == "" {
		o.SearchType = SearchAll
	}
	if o.MoodFilter == "" {
		o.MoodFilter = MoodFilterAll
	}
	if o.SortBy == "" {
		o.SortBy = SortByDate
	}
	if o.SortOrder == "" {
		o.SortOrder = SortDesc
	}
	return o
}

// Validate rejects unknown enum values and pages whose offset would not
// fit in an int. Call it on normalized options.
func (o FetchOptions) Validate() error {
	if o.Limit > 0 && o.Page > math.MaxInt/o.Limit {
		return invalid("page", "Page is out of range")
	}
	switch o.SearchType {
	case SearchAll, SearchNotes, SearchDate, SearchSteps, SearchSleep:
	default:
		return invalid("searchType", fmt.Sprintf("Unknown search type %q", o.SearchType))
	}
	switch o.SortBy {
	case SortByDate, SortBySteps, SortBySleep, SortByCreatedAt:
	default:
		return invalid("sortBy", fmt.Sprintf("Unknown sort field %q", o.SortBy))
	}
	switch o.SortOrder {
	case SortAsc, SortDesc:
	default:
		return invalid("sortOrder", fmt.Sprintf("Unknown sort order %q", o.SortOrder))
	}
	if o.MoodFilter != MoodFilterAll && !Mood(o.MoodFilter).Valid() {
		return invalid("moodFilter", "Invalid mood")
	}
	return nil
}

// Offset is the zero-based index of the first row on the page.
func (o FetchOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// FetchResult is one page of entries.
type FetchResult struct {
	Data    []Entry `json:"data"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	Limit   int     `json:"limit"`
	HasMore bool    `json:"hasMore"`
}

// NewFetchResult derives HasMore from the total.
func NewFetchResult(data []Entry, total, page, limit int) FetchResult {
	if data == nil {
		data = []Entry{}
	}
	return FetchResult{
		Data:    data,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: total > page*limit,
	}
}
