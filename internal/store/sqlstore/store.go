// Package sqlstore implements store.Store on database/sql. The backends
// supply a Dialect and wire the change feed.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/dbx"
	"github.com/dmitrijs2005/wellkeeper/internal/events"
	"github.com/dmitrijs2005/wellkeeper/internal/logging"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"github.com/google/uuid"
)

// Config wires a Store.
type Config struct {
	DB      *sql.DB
	Dialect Dialect
	// Bus receives change events and serves Watch.
	Bus *events.Bus
	// PublishLocal makes the store publish its own mutations to Bus. Turn
	// it off when the database itself delivers notifications.
	PublishLocal bool
	Logger       logging.Logger
	Now          func() time.Time
	NewID        func() string
}

type Store struct {
	db           *sql.DB
	d            Dialect
	bus          *events.Bus
	publishLocal bool
	logger       logging.Logger
	now          func() time.Time
	newID        func() string
}

var _ store.Store = (*Store)(nil)

func New(cfg Config) *Store {
	s := &Store{
		db:           cfg.DB,
		d:            cfg.Dialect,
		bus:          cfg.Bus,
		publishLocal: cfg.PublishLocal,
		logger:       cfg.Logger,
		now:          cfg.Now,
		newID:        cfg.NewID,
	}
	if s.bus == nil {
		s.bus = events.NewBus(events.DefaultBuffer)
	}
	if s.logger == nil {
		s.logger = logging.NewDiscard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.logger = s.logger.With("module", "sqlstore", "dialect", s.d.Name())
	return s
}

// DB exposes the handle for migrations and neighbouring repositories.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect exposes the SQL dialect for neighbouring repositories.
func (s *Store) Dialect() Dialect { return s.d }

// Bus exposes the fan-out used by Watch.
func (s *Store) Bus() *events.Bus { return s.bus }

func (s *Store) Select(ctx context.Context, q store.Query) ([]models.Entry, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidArgument, err)
	}

	query, args := buildSelect(s.d, q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", s.d.Classify(err))
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows, q.Columns)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", s.d.Classify(err))
	}
	return entries, nil
}

func (s *Store) Count(ctx context.Context, q store.Query) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorInvalidArgument, err)
	}

	query, args := buildCount(s.d, q)
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", s.d.Classify(err))
	}
	return n, nil
}

func (s *Store) returning() string {
	b := newBuilder(s.d)
	b.columns(nil)
	return b.String()
}

func (s *Store) Insert(ctx context.Context, userID string, in models.EntryInput) (models.Entry, error) {
	now := s.d.TimeArg(s.now().UTC())

	b := newBuilder(s.d)
	b.write("INSERT INTO ", table, " (id, user_id, entry_date, steps, sleep_hours, mood, notes, created_at, updated_at) VALUES (")
	b.write(strings.Join([]string{
		b.bind(s.newID()),
		b.bind(userID),
		b.bind(in.EntryDate),
		b.bind(int64(in.Steps)),
		b.bind(in.SleepHours),
		b.bind(string(in.Mood)),
		b.bind(nullString(in.NotesValue())),
		b.bind(now),
		b.bind(now),
	}, ", "))
	b.write(") RETURNING ", s.returning())

	e, err := scanEntry(s.db.QueryRowContext(ctx, b.String(), b.args...), nil)
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to insert entry: %w", s.d.Classify(err))
	}

	s.publish(ctx, models.ChangeInserted, e)
	return e, nil
}

func (s *Store) Update(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error) {
	b := newBuilder(s.d)
	b.write("UPDATE ", table, " SET ")

	var sets []string
	if patch.EntryDate != nil {
		sets = append(sets, "entry_date = "+b.bind(*patch.EntryDate))
	}
	if patch.Steps != nil {
		sets = append(sets, "steps = "+b.bind(int64(*patch.Steps)))
	}
	if patch.SleepHours != nil {
		sets = append(sets, "sleep_hours = "+b.bind(*patch.SleepHours))
	}
	if patch.Mood != nil {
		sets = append(sets, "mood = "+b.bind(string(*patch.Mood)))
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = "+b.bind(nullString(models.EntryInput{Notes: *patch.Notes}.NotesValue())))
	}
	sets = append(sets, "updated_at = "+b.bind(s.d.TimeArg(s.now().UTC())))

	b.write(strings.Join(sets, ", "))
	b.write(" WHERE id = ", b.bind(id), " RETURNING ", s.returning())

	e, err := scanEntry(s.db.QueryRowContext(ctx, b.String(), b.args...), nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entry{}, common.ErrorNotFound
		}
		return models.Entry{}, fmt.Errorf("failed to update entry: %w", s.d.Classify(err))
	}

	s.publish(ctx, models.ChangeUpdated, e)
	return e, nil
}

func (s *Store) Delete(ctx context.Context, id string) (models.Entry, error) {
	sel, selArgs := buildSelect(s.d, store.Query{Where: []store.Predicate{store.Eq(store.ColumnID, id)}})
	del := "DELETE FROM " + table + " WHERE id = " + s.d.Placeholder(1)

	var e models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		e, err = scanEntry(tx.QueryRowContext(ctx, sel, selArgs...), nil)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return err
		}
		_, err = tx.ExecContext(ctx, del, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Entry{}, err
		}
		return models.Entry{}, fmt.Errorf("failed to delete entry: %w", s.d.Classify(err))
	}

	s.publish(ctx, models.ChangeDeleted, e)
	return e, nil
}

// Watch subscribes to userID's changes on the store's bus.
func (s *Store) Watch(ctx context.Context, userID string) (<-chan models.ChangeEvent, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: watch needs a user", common.ErrorInvalidArgument)
	}
	return s.bus.Subscribe(ctx, userID), nil
}

func (s *Store) publish(ctx context.Context, kind models.ChangeKind, e models.Entry) {
	if !s.publishLocal {
		return
	}
	n := s.bus.Publish(models.ChangeEvent{Kind: kind, Entry: e})
	s.logger.Debug(ctx, "change published", "kind", kind, "entry_id", e.ID, "subscribers", n)
}

// Close releases the bus and the database handle.
func (s *Store) Close() error {
	s.bus.Close()
	return s.db.Close()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
