// Package dataservice is the data-access facade the client UI talks to.
// It validates input, turns UI options into store queries, caches reads
// with per-family TTLs and invalidates them on writes and change events.
package dataservice

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/cache"
	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/logging"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
)

// Default TTLs per cache family.
var DefaultTTLs = map[cache.Kind]time.Duration{
	cache.KindEntries:     2 * time.Minute,
	cache.KindAllEntries:  time.Minute,
	cache.KindEntry:       5 * time.Minute,
	cache.KindEntryByDate: 2 * time.Minute,
	cache.KindSearch:      time.Minute,
	cache.KindStats:       3 * time.Minute,
}

// Families dropped for the owner whenever one of their entries is written.
var writeKinds = []cache.Kind{
	cache.KindEntries, cache.KindAllEntries, cache.KindStats, cache.KindSearch, cache.KindEntryByDate,
}

type Service struct {
	store  store.Store
	cache  *cache.Cache
	logger logging.Logger
	ttls   map[cache.Kind]time.Duration
}

type Option func(*Service)

// WithTTL overrides the TTL of one cache family.
func WithTTL(kind cache.Kind, ttl time.Duration) Option {
	return func(s *Service) { s.ttls[kind] = ttl }
}

func New(st store.Store, c *cache.Cache, logger logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	s := &Service{
		store:  st,
		cache:  c,
		logger: logger.With("module", "dataservice"),
		ttls:   maps.Clone(DefaultTTLs),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) fail(ctx context.Context, op string, err error) error {
	err = translate(op, err)
	var dae *DataAccessError
	if errors.As(err, &dae) {
		s.logger.Warn(ctx, "store call failed", "op", op, "error", dae.Err)
	}
	return err
}

// FetchEntries returns one page of userID's entries in [from, to].
func (s *Service) FetchEntries(ctx context.Context, userID, from, to string, opts models.FetchOptions) (models.FetchResult, error) {
	if userID == "" {
		return models.FetchResult{}, ErrInvalidUser
	}
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return models.FetchResult{}, err
	}

	key := cache.NewKey(cache.KindEntries, userID, from, to, cache.Signature(opts))
	res, err := cache.Load(ctx, s.cache, key, s.ttls[cache.KindEntries], func(ctx context.Context) (models.FetchResult, error) {
		q := fetchQuery(userID, from, to, opts)

		total, err := s.store.Count(ctx, q)
		if err != nil {
			return models.FetchResult{}, err
		}

		q.Order = []store.Order{{Column: store.Column(opts.SortBy), Desc: opts.SortOrder == models.SortDesc}}
		q.Limit = opts.Limit
		q.Offset = opts.Offset()
		rows, err := s.store.Select(ctx, q)
		if err != nil {
			return models.FetchResult{}, err
		}
		return models.NewFetchResult(rows, total, opts.Page, opts.Limit), nil
	})
	if err != nil {
		return models.FetchResult{}, s.fail(ctx, "fetch entries", err)
	}

	res.Data = cloneEntries(res.Data)
	return res, nil
}

// FetchAllEntries returns every entry in [from, to], newest date first.
func (s *Service) FetchAllEntries(ctx context.Context, userID, from, to string) ([]models.Entry, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}

	key := cache.NewKey(cache.KindAllEntries, userID, from, to)
	rows, err := cache.Load(ctx, s.cache, key, s.ttls[cache.KindAllEntries], func(ctx context.Context) ([]models.Entry, error) {
		q := rangeQuery(userID, from, to)
		q.Order = byDateDesc()
		return s.store.Select(ctx, q)
	})
	if err != nil {
		return nil, s.fail(ctx, "fetch all entries", err)
	}
	return cloneEntries(rows), nil
}

func (s *Service) CreateEntry(ctx context.Context, userID string, in models.EntryInput) (models.Entry, error) {
	if userID == "" {
		return models.Entry{}, ErrInvalidUser
	}
	if err := in.Validate(); err != nil {
		return models.Entry{}, err
	}

	e, err := s.store.Insert(ctx, userID, in)
	if err != nil {
		return models.Entry{}, s.fail(ctx, "create entry", err)
	}

	s.invalidateWrite(userID, e.ID)
	s.logger.Debug(ctx, "entry created", "id", e.ID, "date", e.EntryDate)
	return e, nil
}

// UpdateEntry applies patch to entry id. Only the fields present in the
// patch are validated.
func (s *Service) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error) {
	if err := patch.Validate(); err != nil {
		return models.Entry{}, err
	}

	e, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return models.Entry{}, s.fail(ctx, "update entry", err)
	}

	s.invalidateWrite(e.UserID, id)
	return e, nil
}

// DeleteEntry removes entry id. Deleting a missing id fails with a
// *DataAccessError wrapping common.ErrorNotFound.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	owner, err := s.store.Select(ctx, store.Query{
		Columns: []store.Column{store.ColumnID, store.ColumnUserID, store.ColumnEntryDate},
		Where:   []store.Predicate{store.Eq(store.ColumnID, id)},
		Limit:   1,
	})
	if err != nil {
		return s.fail(ctx, "delete entry", err)
	}
	if len(owner) == 0 {
		return &DataAccessError{Op: "delete entry", Err: common.ErrorNotFound}
	}

	if _, err := s.store.Delete(ctx, id); err != nil {
		return s.fail(ctx, "delete entry", err)
	}

	s.invalidateWrite(owner[0].UserID, id)
	return nil
}

type lookup struct {
	entry models.Entry
	found bool
}

// GetEntryByID reports found=false, with no error, when id does not exist.
func (s *Service) GetEntryByID(ctx context.Context, id string) (models.Entry, bool, error) {
	key := cache.NewKey(cache.KindEntry, "", id)
	res, err := cache.Load(ctx, s.cache, key, s.ttls[cache.KindEntry], func(ctx context.Context) (lookup, error) {
		return s.selectOne(ctx, store.Query{Where: []store.Predicate{store.Eq(store.ColumnID, id)}, Limit: 1})
	})
	if err != nil {
		return models.Entry{}, false, s.fail(ctx, "get entry", err)
	}
	return cloneEntry(res.entry), res.found, nil
}

func (s *Service) GetEntryByDate(ctx context.Context, userID, date string) (models.Entry, bool, error) {
	if userID == "" {
		return models.Entry{}, false, ErrInvalidUser
	}

	key := cache.NewKey(cache.KindEntryByDate, userID, date)
	res, err := cache.Load(ctx, s.cache, key, s.ttls[cache.KindEntryByDate], func(ctx context.Context) (lookup, error) {
		return s.selectOne(ctx, store.Query{
			Where: []store.Predicate{
				store.Eq(store.ColumnUserID, userID),
				store.Eq(store.ColumnEntryDate, date),
			},
			Limit: 1,
		})
	})
	if err != nil {
		return models.Entry{}, false, s.fail(ctx, "get entry by date", err)
	}
	return cloneEntry(res.entry), res.found, nil
}

func (s *Service) selectOne(ctx context.Context, q store.Query) (lookup, error) {
	rows, err := s.store.Select(ctx, q)
	if err != nil {
		return lookup{}, err
	}
	if len(rows) == 0 {
		return lookup{}, nil
	}
	return lookup{entry: rows[0], found: true}, nil
}

// CheckEntryExists reports whether userID already has an entry on date,
// ignoring excludeID (the entry being edited). It always asks the store.
func (s *Service) CheckEntryExists(ctx context.Context, userID, date, excludeID string) (bool, error) {
	if userID == "" {
		return false, ErrInvalidUser
	}

	q := store.Query{Where: []store.Predicate{
		store.Eq(store.ColumnUserID, userID),
		store.Eq(store.ColumnEntryDate, date),
	}}
	if excludeID != "" {
		q.Where = append(q.Where, store.Neq(store.ColumnID, excludeID))
	}

	n, err := s.store.Count(ctx, q)
	if err != nil {
		return false, s.fail(ctx, "check entry exists", err)
	}
	return n > 0, nil
}

// SearchEntries matches text against notes or date, newest first.
func (s *Service) SearchEntries(ctx context.Context, userID, text string) ([]models.Entry, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}

	key := cache.NewKey(cache.KindSearch, userID, text)
	rows, err := cache.Load(ctx, s.cache, key, s.ttls[cache.KindSearch], func(ctx context.Context) ([]models.Entry, error) {
		q := applySearch(rangeQuery(userID, "", ""), text, models.SearchAll)
		q.Order = byDateDesc()
		q.Limit = SearchLimit
		return s.store.Select(ctx, q)
	})
	if err != nil {
		return nil, s.fail(ctx, "search entries", err)
	}
	return cloneEntries(rows), nil
}

// GetStats summarises userID's entries in [from, to].
func (s *Service) GetStats(ctx context.Context, userID, from, to string) (models.Stats, error) {
	if userID == "" {
		return models.Stats{}, ErrInvalidUser
	}

	key := cache.NewKey(cache.KindStats, userID, from, to)
	st, err := cache.Load(ctx, s.cache, key, s.ttls[cache.KindStats], func(ctx context.Context) (models.Stats, error) {
		q := rangeQuery(userID, from, to)
		q.Columns = statsColumns
		rows, err := s.store.Select(ctx, q)
		if err != nil {
			return models.Stats{}, err
		}
		return models.ComputeStats(rows), nil
	})
	if err != nil {
		return models.Stats{}, s.fail(ctx, "get stats", err)
	}

	st.MoodCounts = maps.Clone(st.MoodCounts)
	return st, nil
}

func (s *Service) ClearCache() {
	s.cache.Clear()
}

// ClearUserCache drops every cached value scoped to userID. Point lookups
// by id are not user-scoped and stay until they expire or are written.
func (s *Service) ClearUserCache(userID string) {
	s.cache.Invalidate(cache.Selector{UserID: userID})
}

func (s *Service) invalidateWrite(userID, id string) {
	if userID != "" {
		s.cache.Invalidate(cache.Selector{UserID: userID, Kinds: writeKinds})
	}
	s.invalidateEntry(id)
}

func (s *Service) invalidateEntry(id string) {
	k := cache.NewKey(cache.KindEntry, "", id)
	s.cache.Invalidate(cache.Selector{Key: &k})
}
