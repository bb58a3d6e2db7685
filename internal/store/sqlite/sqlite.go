// Package sqlite is the SQLite backend of the entry store, built on the
// pure-Go modernc.org/sqlite driver. Change events are published in-process.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/dbx"
	"github.com/dmitrijs2005/wellkeeper/internal/filex"
	"github.com/dmitrijs2005/wellkeeper/internal/logging"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"github.com/dmitrijs2005/wellkeeper/internal/store/sqlite/migrations"
	"github.com/dmitrijs2005/wellkeeper/internal/store/sqlstore"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Dialect struct{}

var _ sqlstore.Dialect = Dialect{}

func (Dialect) Name() string { return "sqlite3" }

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) ReadExpr(c store.Column) string { return string(c) }

func (Dialect) TextExpr(c store.Column) string {
	switch c {
	case store.ColumnSteps, store.ColumnSleepHours:
		return "CAST(" + string(c) + " AS TEXT)"
	}
	return string(c)
}

// LikeOp is plain LIKE: SQLite's LIKE already ignores ASCII case.
func (Dialect) LikeOp() string { return "LIKE" }

func (Dialect) NoLimit() string { return "-1" }

func (Dialect) TimeArg(t time.Time) any { return t.UTC().Format(timeLayout) }

func (Dialect) Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", common.ErrorNotFound, err)
	}

	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %w", common.ErrorUniqueViolation, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %w", common.ErrorForeignKeyViolation, err)
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return fmt.Errorf("%w: %w", common.ErrorInvalidArgument, err)
	}

	// Without extended result codes only the primary code is set.
	msg := se.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %w", common.ErrorUniqueViolation, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %w", common.ErrorForeignKeyViolation, err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %w", common.ErrorInvalidArgument, err)
	}
	return err
}

// DSN builds a modernc connection string for path with the pragmas the
// store relies on.
func DSN(path string) string {
	return "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)"
}

// gooseUp is a seam for tests.
var gooseUp = func(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// Migrate applies the embedded schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := gooseUp(ctx, db); err != nil {
		return fmt.Errorf("sqlite migrations: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the database at path, migrates it and
// returns a store that publishes its own changes.
func Open(ctx context.Context, path string, logger logging.Logger) (*sqlstore.Store, error) {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	// One connection serialises writers; SQLite allows only one anyway.
	db, err := dbx.Open(ctx, "sqlite", DSN(path), dbx.Pool{MaxOpenConns: 1})
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(sqlstore.Config{
		DB:           db,
		Dialect:      Dialect{},
		PublishLocal: true,
		Logger:       logger,
	}), nil
}
