package dataservice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/cache"
	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"github.com/dmitrijs2005/wellkeeper/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how many reads reach the wrapped store.
type countingStore struct {
	store.Store
	selects atomic.Int32
	counts  atomic.Int32
	last    atomic.Pointer[store.Query]
}

func (c *countingStore) Select(ctx context.Context, q store.Query) ([]models.Entry, error) {
	c.selects.Add(1)
	c.last.Store(&q)
	return c.Store.Select(ctx, q)
}

func (c *countingStore) Count(ctx context.Context, q store.Query) (int, error) {
	c.counts.Add(1)
	return c.Store.Count(ctx, q)
}

func newTestService(t *testing.T) (*Service, *countingStore) {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "wellkeeper.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	for _, u := range []string{"u1", "u2"} {
		_, err := st.DB().ExecContext(ctx,
			`INSERT INTO users (id, username, password_hash, salt, created_at) VALUES (?, ?, x'00', x'00', '2024-01-01')`, u, u)
		require.NoError(t, err)
	}

	cs := &countingStore{Store: st}
	return New(cs, cache.New(), nil), cs
}

func create(t *testing.T, s *Service, user, date string, steps int, sleep float64, mood models.Mood, notes string) models.Entry {
	t.Helper()
	e, err := s.CreateEntry(context.Background(), user, models.EntryInput{
		EntryDate: date, Steps: steps, SleepHours: sleep, Mood: mood, Notes: notes,
	})
	require.NoError(t, err)
	return e
}

func dates(entries []models.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.EntryDate
	}
	return out
}

func TestFetchEntries_PagesAndCaches(t *testing.T) {
	s, cs := newTestService(t)
	ctx := context.Background()
	create(t, s, "u1", "2024-03-01", 1000, 7, models.MoodHappy, "")
	create(t, s, "u1", "2024-03-02", 2000, 8, models.MoodTired, "")
	create(t, s, "u1", "2024-03-03", 3000, 6, models.MoodHappy, "")
	create(t, s, "u2", "2024-03-02", 9000, 9, models.MoodHappy, "")

	opts := models.FetchOptions{Page: 1, Limit: 2}
	res, err := s.FetchEntries(ctx, "u1", "2024-03-01", "2024-03-31", opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-03", "2024-03-02"}, dates(res.Data))
	assert.Equal(t, 3, res.Total)
	assert.True(t, res.HasMore)

	reads := cs.selects.Load()
	_, err = s.FetchEntries(ctx, "u1", "2024-03-01", "2024-03-31", opts)
	require.NoError(t, err)
	assert.Equal(t, reads, cs.selects.Load(), "second call is served from cache")

	res, err = s.FetchEntries(ctx, "u1", "2024-03-01", "2024-03-31", models.FetchOptions{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01"}, dates(res.Data))
	assert.False(t, res.HasMore)
}

func TestFetchEntries_FiltersAndSort(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	create(t, s, "u1", "2024-03-01", 1000, 7, models.MoodHappy, "Gym day")
	create(t, s, "u1", "2024-03-02", 2000, 7.5, models.MoodTired, "rest")
	create(t, s, "u1", "2024-03-03", 3000, 6, models.MoodHappy, "gym again")

	tests := []struct {
		name string
		opts models.FetchOptions
		want []string
	}{
		{"mood", models.FetchOptions{MoodFilter: "happy"}, []string{"2024-03-03", "2024-03-01"}},
		{"notes", models.FetchOptions{Search: "GYM", SearchType: models.SearchNotes}, []string{"2024-03-03", "2024-03-01"}},
		{"date", models.FetchOptions{Search: "03-02", SearchType: models.SearchDate}, []string{"2024-03-02"}},
		{"steps exact", models.FetchOptions{Search: "3000", SearchType: models.SearchSteps}, []string{"2024-03-03"}},
		{"steps falls back to notes", models.FetchOptions{Search: "rest", SearchType: models.SearchSteps}, []string{"2024-03-02"}},
		{"steps with a fraction falls back to notes", models.FetchOptions{Search: "7.5", SearchType: models.SearchSteps}, []string{}},
		{"sleep exact", models.FetchOptions{Search: "7.5", SearchType: models.SearchSleep}, []string{"2024-03-02"}},
		{"all matches notes or date", models.FetchOptions{Search: "03-01"}, []string{"2024-03-01"}},
		{"sort by steps asc", models.FetchOptions{SortBy: models.SortBySteps, SortOrder: models.SortAsc}, []string{"2024-03-01", "2024-03-02", "2024-03-03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.FetchEntries(ctx, "u1", "", "", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dates(res.Data))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func TestFetchEntries_InvalidOptionsNeverReachStore(t *testing.T) {
	s, cs := newTestService(t)

	_, err := s.FetchEntries(context.Background(), "u1", "", "", models.FetchOptions{SortBy: "mood"})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "sortBy", ve.Field)
	assert.Zero(t, cs.selects.Load())
	assert.Zero(t, cs.counts.Load())
}

func TestFetchEntries_HugePageIsValidationError(t *testing.T) {
	s, cs := newTestService(t)

	_, err := s.FetchEntries(context.Background(), "u1", "", "", models.FetchOptions{Page: math.MaxInt, Limit: 25})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "page", ve.Field)
	assert.Zero(t, cs.counts.Load())
}

func TestCreateEntry_Errors(t *testing.T) {
	s, cs := newTestService(t)
	ctx := context.Background()
	create(t, s, "u1", "2024-03-01", 1, 1, models.MoodHappy, "")

	_, err := s.CreateEntry(ctx, "u1", models.EntryInput{EntryDate: "2024-03-01", Mood: models.MoodHappy})
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	assert.Equal(t, "Duplicate entries not allowed. An entry for this date already exists.", err.Error())

	_, err = s.CreateEntry(ctx, "ghost", models.EntryInput{EntryDate: "2024-03-02", Mood: models.MoodHappy})
	assert.ErrorIs(t, err, ErrInvalidUser)

	reads := cs.selects.Load()
	_, err = s.CreateEntry(ctx, "u1", models.EntryInput{EntryDate: "2024-03-02", Steps: -1, Mood: models.MoodHappy})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Steps cannot be negative", ve.Message)
	assert.Equal(t, reads, cs.selects.Load())
}

func TestWrites_InvalidateOwnerCaches(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	e := create(t, s, "u1", "2024-03-01", 1000, 7, models.MoodHappy, "")

	all, err := s.FetchAllEntries(ctx, "u1", "", "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	st, err := s.GetStats(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1000, st.TotalSteps)
	got, ok, err := s.GetEntryByID(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, ok)

	create(t, s, "u1", "2024-03-02", 500, 5, models.MoodTired, "")
	all, err = s.FetchAllEntries(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-02", "2024-03-01"}, dates(all))
	st, err = s.GetStats(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1500, st.TotalSteps)
	assert.InDelta(t, 6.0, st.AvgSleep, 1e-9)
	assert.Equal(t, 1, st.MoodCounts[models.MoodTired])

	steps := 4242
	_, err = s.UpdateEntry(ctx, e.ID, models.EntryPatch{Steps: &steps})
	require.NoError(t, err)
	got, ok, err = s.GetEntryByID(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4242, got.Steps)

	require.NoError(t, s.DeleteEntry(ctx, e.ID))
	_, ok, err = s.GetEntryByID(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	all, err = s.FetchAllEntries(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-02"}, dates(all))
}

func TestDeleteEntry_Missing(t *testing.T) {
	s, _ := newTestService(t)

	err := s.DeleteEntry(context.Background(), "nope")
	var dae *DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateEntry_Errors(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	create(t, s, "u1", "2024-03-01", 1, 1, models.MoodHappy, "")
	e := create(t, s, "u1", "2024-03-02", 1, 1, models.MoodHappy, "")

	date := "2024-03-01"
	_, err := s.UpdateEntry(ctx, e.ID, models.EntryPatch{EntryDate: &date})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	_, err = s.UpdateEntry(ctx, "nope", models.EntryPatch{EntryDate: &date})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.UpdateEntry(ctx, e.ID, models.EntryPatch{})
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestPointLookups(t *testing.T) {
	s, cs := newTestService(t)
	ctx := context.Background()
	e := create(t, s, "u1", "2024-03-01", 1, 1, models.MoodHappy, "note")

	got, ok, err := s.GetEntryByDate(ctx, "u1", "2024-03-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e.ID, got.ID)

	_, ok, err = s.GetEntryByDate(ctx, "u2", "2024-03-01")
	require.NoError(t, err)
	assert.False(t, ok)

	reads := cs.selects.Load()
	_, ok, err = s.GetEntryByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, err = s.GetEntryByID(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, reads+1, cs.selects.Load(), "misses are cached too")
}

func TestCheckEntryExists(t *testing.T) {
	s, cs := newTestService(t)
	ctx := context.Background()
	e := create(t, s, "u1", "2024-03-01", 1, 1, models.MoodHappy, "")

	ok, err := s.CheckEntryExists(ctx, "u1", "2024-03-01", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CheckEntryExists(ctx, "u1", "2024-03-01", e.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CheckEntryExists(ctx, "u1", "2024-03-01", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 3, cs.counts.Load(), "never cached")
}

func TestCheckEntryExists_FalseAfterDelete(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	e := create(t, s, "u1", "2024-03-01", 1, 1, models.MoodHappy, "")

	ok, err := s.CheckEntryExists(ctx, "u1", "2024-03-01", "")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.DeleteEntry(ctx, e.ID))
	ok, err = s.CheckEntryExists(ctx, "u1", "2024-03-01", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntryLifecycle_ThroughFetchEntries(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	page := models.FetchOptions{Page: 1, Limit: 25}

	e := create(t, s, "u1", "2024-03-01", 5000, 7.5, models.MoodHappy, "")

	res, err := s.FetchEntries(ctx, "u1", "2024-03-01", "2024-03-31", page)
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, 5000, res.Data[0].Steps)
	assert.False(t, res.HasMore)

	time.Sleep(2 * time.Millisecond)
	steps := 6000
	_, err = s.UpdateEntry(ctx, e.ID, models.EntryPatch{Steps: &steps})
	require.NoError(t, err)

	res, err = s.FetchEntries(ctx, "u1", "2024-03-01", "2024-03-31", page)
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, 6000, res.Data[0].Steps)
	assert.True(t, res.Data[0].UpdatedAt.After(e.UpdatedAt))

	require.NoError(t, s.DeleteEntry(ctx, e.ID))
	res, err = s.FetchEntries(ctx, "u1", "2024-03-01", "2024-03-31", page)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Data)
}

func TestFetchEntries_StepsSearchIgnoresNotes(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	create(t, s, "u1", "2024-03-01", 8000, 7, models.MoodHappy, "")
	create(t, s, "u1", "2024-03-02", 3000, 7, models.MoodTired, "walked 8000 steps")

	res, err := s.FetchEntries(ctx, "u1", "", "", models.FetchOptions{Search: "8000", SearchType: models.SearchSteps})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01"}, dates(res.Data))
	assert.Equal(t, 1, res.Total)

	res, err = s.FetchEntries(ctx, "u1", "", "", models.FetchOptions{Search: "8000", SearchType: models.SearchNotes})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-02"}, dates(res.Data))
}

func TestSearchEntries(t *testing.T) {
	s, cs := newTestService(t)
	ctx := context.Background()
	create(t, s, "u1", "2024-03-01", 1, 1, models.MoodHappy, "Yoga")
	create(t, s, "u1", "2024-03-05", 1, 1, models.MoodHappy, "yoga and run")
	create(t, s, "u1", "2024-04-01", 1, 1, models.MoodHappy, "")

	got, err := s.SearchEntries(ctx, "u1", "yoga")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-05", "2024-03-01"}, dates(got))

	got, err = s.SearchEntries(ctx, "u1", "2024-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-01"}, dates(got))

	q := cs.last.Load()
	require.NotNil(t, q)
	assert.Equal(t, SearchLimit, q.Limit)
}

func TestGetStats_ProjectsColumnsAndEmptyWindow(t *testing.T) {
	s, cs := newTestService(t)
	ctx := context.Background()

	st, err := s.GetStats(ctx, "u1", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Zero(t, st.EntryCount)
	assert.Zero(t, st.AvgSleep)
	assert.Len(t, st.MoodCounts, len(models.Moods))

	q := cs.last.Load()
	require.NotNil(t, q)
	assert.Equal(t, []store.Column{store.ColumnSteps, store.ColumnSleepHours, store.ColumnMood}, q.Columns)
}

func TestResults_AreCopies(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	create(t, s, "u1", "2024-03-01", 1, 1, models.MoodHappy, "original")

	first, err := s.FetchAllEntries(ctx, "u1", "", "")
	require.NoError(t, err)
	first[0].Steps = 99
	*first[0].Notes = "changed"

	again, err := s.FetchAllEntries(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].Steps)
	assert.Equal(t, "original", again[0].NotesText())

	st, err := s.GetStats(ctx, "u1", "", "")
	require.NoError(t, err)
	st.MoodCounts[models.MoodHappy] = 50
	st, err = s.GetStats(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, st.MoodCounts[models.MoodHappy])
}

func TestClearUserCache(t *testing.T) {
	s, cs := newTestService(t)
	ctx := context.Background()

	_, err := s.FetchAllEntries(ctx, "u1", "", "")
	require.NoError(t, err)
	_, err = s.FetchAllEntries(ctx, "u2", "", "")
	require.NoError(t, err)
	reads := cs.selects.Load()

	s.ClearUserCache("u1")
	_, err = s.FetchAllEntries(ctx, "u2", "", "")
	require.NoError(t, err)
	assert.Equal(t, reads, cs.selects.Load())
	_, err = s.FetchAllEntries(ctx, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, reads+1, cs.selects.Load())

	s.ClearCache()
	_, err = s.FetchAllEntries(ctx, "u2", "", "")
	require.NoError(t, err)
	assert.Equal(t, reads+2, cs.selects.Load())
}

func TestEmptyUserIsInvalid(t *testing.T) {
	s, cs := newTestService(t)
	_, err := s.FetchAllEntries(context.Background(), "", "", "")
	assert.ErrorIs(t, err, ErrInvalidUser)
	assert.Zero(t, cs.selects.Load())
}

func TestTranslate(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		in   error
		want error
	}{
		{nil, nil},
		{common.ErrorUniqueViolation, ErrDuplicateEntry},
		{common.ErrorForeignKeyViolation, ErrInvalidUser},
		{common.ErrorUnauthorized, ErrInvalidUser},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, translate("op", tt.in))
	}

	err := translate("op", boom)
	var dae *DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.Equal(t, "op", dae.Op)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "op: boom", err.Error())

	err = translate("op", fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenExpired))
	assert.ErrorIs(t, err, ErrInvalidUser)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}
