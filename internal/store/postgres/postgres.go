// Package postgres is the Postgres backend of the entry store. Change
// events come from a database trigger, so writes made by any process reach
// every watcher.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/dbx"
	"github.com/dmitrijs2005/wellkeeper/internal/events"
	"github.com/dmitrijs2005/wellkeeper/internal/logging"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"github.com/dmitrijs2005/wellkeeper/internal/store/postgres/migrations"
	"github.com/dmitrijs2005/wellkeeper/internal/store/sqlstore"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Postgres SQLSTATE codes the store distinguishes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
	codeInvalidDatetime     = "22007"
	codeDatetimeOverflow    = "22008"
)

type Dialect struct{}

var _ sqlstore.Dialect = Dialect{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// ReadExpr reads DATE columns as text so they scan into strings.
func (Dialect) ReadExpr(c store.Column) string {
	if c == store.ColumnEntryDate {
		return "entry_date::text"
	}
	return string(c)
}

func (Dialect) TextExpr(c store.Column) string {
	switch c {
	case store.ColumnEntryDate, store.ColumnSteps, store.ColumnSleepHours:
		return string(c) + "::text"
	}
	return string(c)
}

func (Dialect) LikeOp() string { return "ILIKE" }

func (Dialect) NoLimit() string { return "ALL" }

func (Dialect) TimeArg(t time.Time) any { return t.UTC() }

func (Dialect) Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", common.ErrorNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %w", common.ErrorUniqueViolation, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %w", common.ErrorForeignKeyViolation, err)
	case codeCheckViolation, codeInvalidText, codeInvalidDatetime, codeDatetimeOverflow:
		return fmt.Errorf("%w: %w", common.ErrorInvalidArgument, err)
	}
	return err
}

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// Migrate applies the embedded schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := gooseUp(ctx, db); err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}
	return nil
}

// Options tune Open.
type Options struct {
	Pool   dbx.Pool
	Logger logging.Logger
	// Retry configures LISTEN reconnects; nil uses DefaultRetry.
	Retry *Retry
}

// Store is a sqlstore.Store fed by LISTEN/NOTIFY.
type Store struct {
	*sqlstore.Store
	l      *listener
	cancel context.CancelFunc
	done   chan struct{}
}

// Open connects to dsn, migrates the schema and starts the change listener.
func Open(ctx context.Context, dsn string, opts Options) (*Store, error) {
	db, err := dbx.Open(ctx, "pgx", dsn, opts.Pool)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newStore(db, opts), nil
}

func newStore(db *sql.DB, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscard()
	}
	retry := DefaultRetry
	if opts.Retry != nil {
		retry = *opts.Retry
	}

	bus := events.NewBus(events.DefaultBuffer)
	inner := sqlstore.New(sqlstore.Config{
		DB:      db,
		Dialect: Dialect{},
		Bus:     bus,
		Logger:  logger,
	})

	lctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		Store:  inner,
		l:      newListener(db, bus, logger, retry),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		s.l.run(lctx)
	}()
	return s
}

// Listening is closed once the first LISTEN has succeeded.
func (s *Store) Listening() <-chan struct{} { return s.l.ready }

// Close stops the listener, then closes the bus and the database.
func (s *Store) Close() error {
	s.cancel()
	<-s.done
	return s.Store.Close()
}
