package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/cache"
	"github.com/dmitrijs2005/wellkeeper/internal/client/client"
	"github.com/dmitrijs2005/wellkeeper/internal/client/config"
	"github.com/dmitrijs2005/wellkeeper/internal/client/export"
	"github.com/dmitrijs2005/wellkeeper/internal/client/view"
	"github.com/dmitrijs2005/wellkeeper/internal/dataservice"
	"github.com/dmitrijs2005/wellkeeper/internal/logging"
	"github.com/dmitrijs2005/wellkeeper/internal/timex"
)

type Mode string

const defaultOnlineCheck = 3 * time.Second

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionClient is the part of the gRPC client that deals with accounts
// and connectivity.
type sessionClient interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Ping(ctx context.Context) error
	Logout()
	UserID() string
	Close() error
}

type exporter interface {
	Export(ctx context.Context, userID, from, to string) (string, error)
}

type App struct {
	config   *config.Config
	session  sessionClient
	data     *dataservice.Service
	exporter exporter
	list     view.EntryList
	reader   *bufio.Reader
	out      io.Writer
	logger   logging.Logger
	now      func() time.Time

	mu       sync.Mutex
	mode     Mode
	userName string
	preset   timex.Preset
	page     int
	sub      *dataservice.Subscription
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", c.LogLevel)

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, logger, client.WatchRetry{Max: c.WatchRetryMax})
	if err != nil {
		return nil, err
	}

	data := dataservice.New(apiClient, cache.New(), logger)

	a := newApp(c, apiClient, data, bufio.NewReader(os.Stdin), os.Stdout, logger)

	ex, err := export.NewS3Exporter(ctx, data, export.Settings{
		Region:       c.Export.Region,
		BaseEndpoint: c.Export.BaseEndpoint,
		AccessKey:    c.Export.AccessKey,
		SecretKey:    c.Export.SecretKey,
		Bucket:       c.Export.Bucket,
	})
	switch {
	case err == nil:
		a.exporter = ex
	case errors.Is(err, export.ErrNotConfigured):
		logger.Debug(ctx, "export disabled, no bucket configured")
	default:
		_ = apiClient.Close()
		return nil, err
	}

	return a, nil
}

func newApp(c *config.Config, s sessionClient, data *dataservice.Service, r *bufio.Reader, w io.Writer, logger logging.Logger) *App {
	return &App{
		config:  c,
		session: s,
		data:    data,
		reader:  r,
		out:     w,
		logger:  logger.With("module", "cli"),
		now:     time.Now,
		preset:  timex.Preset1M,
		page:    1,
	}
}

// Run shows the REPL until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.session.Close()
	defer a.Unwatch(ctx)

	a.printf("Welcome to wellkeeper (type 'help' for commands)\n")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.session.UserID() != ""
}

// StartOnlineStatusWatcher pings the server every interval until ctx is
// done and records whether it answered.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultOnlineCheck
	}
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.session.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
