package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/wellkeeper/internal/client/view"
	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/dataservice"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
	"github.com/dmitrijs2005/wellkeeper/internal/timex"
)

const defaultRecent = 5

var errEntryNotFound = errors.New("entry not found")

func (a *App) userID() string { return a.session.UserID() }

// window is the date range selected with the range command.
func (a *App) window() (string, string, error) {
	a.mu.Lock()
	p := a.preset
	a.mu.Unlock()
	return timex.PresetRange(p, a.now())
}

// argOrPrompt returns the joined args, or asks for a value when there are none.
func (a *App) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// Add asks for the fields of a new entry and saves it.
func (a *App) Add(ctx context.Context) error {
	today := timex.FormatDate(a.now())
	date, err := getSimpleText(a.reader, fmt.Sprintf("Date (YYYY-MM-DD) [%s]", today), a.out)
	if err != nil {
		return err
	}
	if date == "" {
		date = today
	}

	exists, err := a.data.CheckEntryExists(ctx, a.userID(), date, "")
	if err != nil {
		return err
	}
	if exists {
		return dataservice.ErrDuplicateEntry
	}

	steps, err := GetInt(a.reader, "Steps", 0, a.out)
	if err != nil {
		return err
	}
	sleep, err := GetFloat(a.reader, "Sleep hours", 0, a.out)
	if err != nil {
		return err
	}
	moodText, err := getSimpleText(a.reader, "Mood (happy, neutral, tired, stressed)", a.out)
	if err != nil {
		return err
	}
	notes, err := getSimpleText(a.reader, "Notes (optional)", a.out)
	if err != nil {
		return err
	}

	e, err := a.data.CreateEntry(ctx, a.userID(), models.EntryInput{
		EntryDate:  date,
		Steps:      steps,
		SleepHours: sleep,
		Mood:       models.Mood(strings.ToLower(moodText)),
		Notes:      notes,
	})
	if err != nil {
		return err
	}

	a.list.ApplyCreated(e)
	a.printf("Saved entry %s for %s\n", e.ID, e.EntryDate)
	return nil
}

// Edit changes an existing entry. Empty answers keep the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Enter entry id to edit")
	if err != nil {
		return err
	}
	cur, err := a.lookup(ctx, id)
	if err != nil {
		return err
	}

	var patch models.EntryPatch

	if s, ok, err := GetOptional(a.reader, "Date", cur.EntryDate, a.out); err != nil {
		return err
	} else if ok && s != cur.EntryDate {
		exists, err := a.data.CheckEntryExists(ctx, a.userID(), s, id)
		if err != nil {
			return err
		}
		if exists {
			return dataservice.ErrDuplicateEntry
		}
		patch.EntryDate = &s
	}

	if s, ok, err := GetOptional(a.reader, "Steps", strconv.Itoa(cur.Steps), a.out); err != nil {
		return err
	} else if ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%q is not a whole number", s)
		}
		patch.Steps = &n
	}

	if s, ok, err := GetOptional(a.reader, "Sleep hours", strconv.FormatFloat(cur.SleepHours, 'g', -1, 64), a.out); err != nil {
		return err
	} else if ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		patch.SleepHours = &f
	}

	if s, ok, err := GetOptional(a.reader, "Mood", string(cur.Mood), a.out); err != nil {
		return err
	} else if ok {
		m := models.Mood(strings.ToLower(s))
		patch.Mood = &m
	}

	if s, ok, err := GetOptional(a.reader, "Notes ('-' clears)", cur.NotesText(), a.out); err != nil {
		return err
	} else if ok {
		patch.Notes = &s
	}

	if patch.Empty() {
		a.printf("Nothing changed\n")
		return nil
	}

	e, err := a.data.UpdateEntry(ctx, id, patch)
	if err != nil {
		return err
	}
	a.list.ApplyUpdated(e)
	a.printf("Updated entry %s\n", e.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Enter entry id to delete")
	if err != nil {
		return err
	}
	if err := a.data.DeleteEntry(ctx, id); err != nil {
		return err
	}
	a.list.ApplyDeleted(id)
	a.printf("Deleted entry %s\n", id)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Enter entry id to show")
	if err != nil {
		return err
	}
	e, err := a.lookup(ctx, id)
	if err != nil {
		return err
	}
	a.printEntry(e)
	return nil
}

func (a *App) lookup(ctx context.Context, id string) (models.Entry, error) {
	e, ok, err := a.data.GetEntryByID(ctx, id)
	if err != nil {
		return models.Entry{}, err
	}
	if !ok || e.UserID != a.userID() {
		return models.Entry{}, errEntryNotFound
	}
	return e, nil
}

// List prints one page of the selected range. An optional argument picks
// the page.
func (a *App) List(ctx context.Context, args []string) error {
	a.mu.Lock()
	page := a.page
	a.mu.Unlock()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("page must be a positive number")
		}
		page = n
	}

	from, to, err := a.window()
	if err != nil {
		return err
	}

	res, err := a.data.FetchEntries(ctx, a.userID(), from, to, models.FetchOptions{Page: page})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.page = page
	a.mu.Unlock()

	a.list.Replace(res.Data)
	a.printEntries(a.list.Entries())
	more := ""
	if res.HasMore {
		more = fmt.Sprintf(", 'list %d' for more", page+1)
	}
	a.printf("Page %d, %d entries between %s and %s%s\n", res.Page, res.Total, from, to, more)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	text, err := a.argOrPrompt(args, "Search notes or dates")
	if err != nil {
		return err
	}
	found, err := a.data.SearchEntries(ctx, a.userID(), text)
	if err != nil {
		return err
	}
	a.printEntries(found)
	a.printf("%d matching entries\n", len(found))
	return nil
}

// Stats prints totals for the selected range, or for the preset given as
// argument.
func (a *App) Stats(ctx context.Context, args []string) error {
	from, to, err := a.window()
	if len(args) > 0 {
		from, to, err = timex.PresetRange(timex.Preset(args[0]), a.now())
	}
	if err != nil {
		return err
	}

	st, err := a.data.GetStats(ctx, a.userID(), from, to)
	if err != nil {
		return err
	}
	a.printStats(from, to, st)
	return nil
}

// Range selects the date window used by list, stats, recent and export,
// then lists its first page.
func (a *App) Range(ctx context.Context, args []string) error {
	p, err := a.argOrPrompt(args, "Range (1D, 1W, 1M, 6M, 1Y, 5Y, All)")
	if err != nil {
		return err
	}
	if _, _, err := timex.PresetRange(timex.Preset(p), a.now()); err != nil {
		return err
	}

	a.mu.Lock()
	a.preset = timex.Preset(p)
	a.page = 1
	a.mu.Unlock()

	return a.List(ctx, nil)
}

func (a *App) Recent(ctx context.Context, args []string) error {
	n := defaultRecent
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("count must be a positive number")
		}
		n = v
	}

	from, to, err := a.window()
	if err != nil {
		return err
	}
	all, err := a.data.FetchAllEntries(ctx, a.userID(), from, to)
	if err != nil {
		return err
	}
	a.printEntries(view.Recent(all, n))
	return nil
}

func (a *App) ClearCache(ctx context.Context) error {
	a.data.ClearCache()
	a.printf("Cache cleared\n")
	return nil
}

// describe turns an error into the message shown at the prompt.
func describe(err error) string {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, common.ErrTokenExpired):
		return "Session expired. Please sign in again."
	case errors.Is(err, dataservice.ErrDuplicateEntry):
		return dataservice.ErrDuplicateEntry.Error()
	case errors.Is(err, dataservice.ErrInvalidUser):
		return dataservice.ErrInvalidUser.Error()
	case errors.Is(err, common.ErrorUnauthorized):
		return "Wrong user name or password."
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, errEntryNotFound):
		return "Entry not found."
	case errors.Is(err, common.ErrorForbidden):
		return "That entry belongs to another user."
	case isUnavailable(err):
		return "Server is unavailable, try again later."
	}
	return err.Error()
}
