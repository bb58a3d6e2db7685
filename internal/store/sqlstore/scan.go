package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
)

type scanner interface {
	Scan(dest ...any) error
}

// timeLayouts are tried in order when reading timestamps stored or
// returned as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseTime(s string) (time.Time, error) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func scanEntry(row scanner, cols []store.Column) (models.Entry, error) {
	if len(cols) == 0 {
		cols = store.AllColumns
	}

	var (
		e                  models.Entry
		steps              int64
		mood               string
		notes              sql.NullString
		createdAt, updated sql.NullString
	)

	dest := make([]any, len(cols))
	for i, c := range cols {
		switch c {
		case store.ColumnID:
			dest[i] = &e.ID
		case store.ColumnUserID:
			dest[i] = &e.UserID
		case store.ColumnEntryDate:
			dest[i] = &e.EntryDate
		case store.ColumnSteps:
			dest[i] = &steps
		case store.ColumnSleepHours:
			dest[i] = &e.SleepHours
		case store.ColumnMood:
			dest[i] = &mood
		case store.ColumnNotes:
			dest[i] = &notes
		case store.ColumnCreatedAt:
			dest[i] = &createdAt
		case store.ColumnUpdatedAt:
			dest[i] = &updated
		default:
			return models.Entry{}, fmt.Errorf("unknown column %q", c)
		}
	}

	if err := row.Scan(dest...); err != nil {
		return models.Entry{}, err
	}

	e.Steps = int(steps)
	e.Mood = models.Mood(mood)
	if notes.Valid {
		n := notes.String
		e.Notes = &n
	}
	if len(e.EntryDate) > len("2006-01-02") {
		e.EntryDate = e.EntryDate[:len("2006-01-02")]
	}

	var err error
	if createdAt.Valid {
		if e.CreatedAt, err = parseTime(createdAt.String); err != nil {
			return models.Entry{}, err
		}
	}
	if updated.Valid {
		if e.UpdatedAt, err = parseTime(updated.String); err != nil {
			return models.Entry{}, err
		}
	}
	return e, nil
}
