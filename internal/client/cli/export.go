package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/wellkeeper/internal/timex"
)

var errExportDisabled = errors.New("export is not configured, set WELLKEEPER_S3_BUCKET")

// Export uploads the selected range, or the preset given as argument.
func (a *App) Export(ctx context.Context, args []string) error {
	if a.exporter == nil {
		return errExportDisabled
	}

	from, to, err := a.window()
	if len(args) > 0 {
		from, to, err = timex.PresetRange(timex.Preset(args[0]), a.now())
	}
	if err != nil {
		return err
	}

	key, err := a.exporter.Export(ctx, a.userID(), from, to)
	if err != nil {
		return err
	}
	a.printf("Exported %s..%s to %s\n", from, to, key)
	return nil
}
