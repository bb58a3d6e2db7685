package cli

import (
	"context"

	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/dmitrijs2005/wellkeeper/internal/timex"
)

// Watch subscribes to the user's change feed. Every change refreshes the
// displayed list and is printed.
func (a *App) Watch(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sub != nil {
		a.printf("Already watching\n")
		return nil
	}

	sub, err := a.data.SubscribeToChanges(ctx, a.userID(), a.onChange)
	if err != nil {
		return err
	}
	a.sub = sub
	a.printf("Watching for changes, 'unwatch' to stop\n")
	return nil
}

func (a *App) Unwatch(ctx context.Context) error {
	a.mu.Lock()
	sub := a.sub
	a.sub = nil
	a.mu.Unlock()

	if sub == nil {
		return nil
	}
	sub.Unsubscribe()
	a.logger.Debug(ctx, "change feed stopped")
	return nil
}

func (a *App) onChange(ev models.ChangeEvent) {
	a.list.Apply(ev)
	a.printf("[%s] %s %s (%s)\n", timex.FormatDate(a.now()), ev.Kind, ev.Entry.EntryDate, ev.Entry.ID)
}
