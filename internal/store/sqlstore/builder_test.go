package sqlstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"github.com/stretchr/testify/assert"
)

// dollarDialect mimics a Postgres-style dialect without importing a driver.
type dollarDialect struct{}

func (dollarDialect) Name() string { return "test" }
func (dollarDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }
func (dollarDialect) ReadExpr(c store.Column) string {
	if c == store.ColumnEntryDate {
		return "entry_date::text"
	}
	return string(c)
}
func (dollarDialect) TextExpr(c store.Column) string { return string(c) + "::text" }
func (dollarDialect) LikeOp() string { return "ILIKE" }
func (dollarDialect) NoLimit() string { return "ALL" }
func (dollarDialect) TimeArg(t time.Time) any { return t }
func (dollarDialect) Classify(err error) error { return err }

func TestBuildSelect_FullQuery(t *testing.T) {
	q := store.Query{
		Where: []store.Predicate{
			store.Eq(store.ColumnUserID, "u1"),
			store.Gte(store.ColumnEntryDate, "2024-01-01"),
			store.Lte(store.ColumnEntryDate, "2024-01-31"),
			store.Eq(store.ColumnMood, models.MoodHappy),
		},
		Any: []store.Predicate{
			store.Contains(store.ColumnNotes, "50%"),
			store.Contains(store.ColumnEntryDate, "50%"),
		},
		Order:  []store.Order{{Column: store.ColumnSteps, Desc: true}},
		Limit:  25,
		Offset: 50,
	}

	sql, args := buildSelect(dollarDialect{}, q)

	assert.Equal(t,
		"SELECT id, user_id, entry_date::text, steps, sleep_hours, mood, notes, created_at, updated_at FROM wellness_entries"+
			" WHERE user_id = $1 AND entry_date >= $2 AND entry_date <= $3 AND mood = $4"+
			` AND (notes::text ILIKE $5 ESCAPE '\' OR entry_date::text ILIKE $6 ESCAPE '\')`+
			" ORDER BY steps DESC, id ASC LIMIT $7 OFFSET $8",
		sql)
	assert.Equal(t, []any{"u1", "2024-01-01", "2024-01-31", "happy", `%50\%%`, `%50\%%`, 25, 50}, args)
}

func TestBuildSelect_ProjectionAndOffsetOnly(t *testing.T) {
	q := store.Query{
		Columns: []store.Column{store.ColumnSteps, store.ColumnSleepHours, store.ColumnMood},
		Any:     []store.Predicate{store.Eq(store.ColumnSteps, float64(8000))},
		Offset:  10,
	}
	sql, args := buildSelect(dollarDialect{}, q)

	assert.Equal(t, "SELECT steps, sleep_hours, mood FROM wellness_entries WHERE (steps = $1) LIMIT ALL OFFSET $2", sql)
	assert.Equal(t, []any{int64(8000), 10}, args)
}

func TestBuildCount_IgnoresPaging(t *testing.T) {
	q := store.Query{
		Where: []store.Predicate{store.Eq(store.ColumnUserID, "u1")},
		Order: []store.Order{{Column: store.ColumnEntryDate}},
		Limit: 5,
	}
	sql, args := buildCount(dollarDialect{}, q)
	assert.Equal(t, "SELECT COUNT(*) FROM wellness_entries WHERE user_id = $1", sql)
	assert.Equal(t, []any{"u1"}, args)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, int64(8000), normalizeValue(store.ColumnSteps, 8000))
	assert.Equal(t, int64(8000), normalizeValue(store.ColumnSteps, float64(8000)))
	assert.Equal(t, 7.5, normalizeValue(store.ColumnSteps, 7.5))
	assert.Equal(t, 7.0, normalizeValue(store.ColumnSleepHours, 7))
	assert.Equal(t, "tired", normalizeValue(store.ColumnMood, models.MoodTired))
	assert.Nil(t, normalizeValue(store.ColumnNotes, nil))
}
