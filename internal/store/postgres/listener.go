package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/wellkeeper/internal/events"
	"github.com/dmitrijs2005/wellkeeper/internal/logging"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/jackc/pgx/v5/stdlib"
)

// Channel is the NOTIFY channel the entries trigger writes to.
const Channel = "wellness_entries_changes"

// Retry bounds the pause between LISTEN reconnect attempts.
type Retry struct {
	Initial time.Duration
	Max     time.Duration
}

var DefaultRetry = Retry{Initial: 500 * time.Millisecond, Max: 30 * time.Second}

func (r Retry) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.Initial
	b.MaxInterval = r.Max
	b.Multiplier = 2
	// Retry for as long as the store is open.
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// notification is the trigger payload.
type notification struct {
	Op  string       `json:"op"`
	Row models.Entry `json:"row"`
}

func decodeNotification(payload string) (models.ChangeEvent, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return models.ChangeEvent{}, fmt.Errorf("decode notification: %w", err)
	}
	kind, err := models.ParseChangeKind(n.Op)
	if err != nil {
		return models.ChangeEvent{}, err
	}
	if n.Row.UserID == "" {
		return models.ChangeEvent{}, fmt.Errorf("notification without user_id")
	}
	return models.ChangeEvent{Kind: kind, Entry: n.Row}, nil
}

type listener struct {
	db     *sql.DB
	bus    *events.Bus
	logger logging.Logger
	retry  Retry

	ready     chan struct{}
	readyOnce sync.Once
}

func newListener(db *sql.DB, bus *events.Bus, logger logging.Logger, retry Retry) *listener {
	return &listener{
		db:     db,
		bus:    bus,
		logger: logger.With("module", "pg-listener", "channel", Channel),
		retry:  retry,
		ready:  make(chan struct{}),
	}
}

// run keeps a LISTEN session open until ctx is done.
func (l *listener) run(ctx context.Context) {
	b := l.retry.backOff()
	for {
		err := l.listen(ctx, b.Reset)
		if ctx.Err() != nil {
			return
		}

		wait := b.NextBackOff()
		l.logger.Warn(ctx, "listen session ended, reconnecting", "error", err, "wait", wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}

// listen holds one pooled connection in LISTEN mode and dispatches
// notifications until an error occurs. The connection is always discarded
// afterwards so a session with an active LISTEN never returns to the pool.
func (l *listener) listen(ctx context.Context, onListening func()) error {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return conn.Raw(func(dc any) error {
		sc, ok := dc.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("%w: unexpected driver connection %T", driver.ErrBadConn, dc)
		}
		pc := sc.Conn()

		if _, err := pc.Exec(ctx, "LISTEN "+Channel); err != nil {
			return fmt.Errorf("%w: listen: %w", driver.ErrBadConn, err)
		}
		onListening()
		l.readyOnce.Do(func() { close(l.ready) })
		l.logger.Info(ctx, "listening for entry changes")

		for {
			n, err := pc.WaitForNotification(ctx)
			if err != nil {
				return fmt.Errorf("%w: wait: %w", driver.ErrBadConn, err)
			}
			l.dispatch(ctx, n.Payload)
		}
	})
}

func (l *listener) dispatch(ctx context.Context, payload string) {
	ev, err := decodeNotification(payload)
	if err != nil {
		l.logger.Warn(ctx, "dropping malformed notification", "error", err)
		return
	}
	n := l.bus.Publish(ev)
	l.logger.Debug(ctx, "change received", "kind", ev.Kind, "entry_id", ev.Entry.ID, "subscribers", n)
}
