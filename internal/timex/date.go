package timex

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
)

// Preset names a relative date window.
type Preset string

const (
	Preset1D  Preset = "1D"
	Preset1W  Preset = "1W"
	Preset1M  Preset = "1M"
	Preset6M  Preset = "6M"
	Preset1Y  Preset = "1Y"
	Preset5Y  Preset = "5Y"
	PresetAll Preset = "All"
)

// Presets lists the supported windows in display order.
var Presets = []Preset{Preset1D, Preset1W, Preset1M, Preset6M, Preset1Y, Preset5Y, PresetAll}

// Bounds used by the "All" window.
const (
	MinDate = "1970-01-01"
	MaxDate = "2099-12-31"
)

// FormatDate renders t as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(common.DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(common.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// PresetRange returns the inclusive [from, to] date window ending today.
// 1D covers today only.
func PresetRange(p Preset, now time.Time) (from, to string, err error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to = FormatDate(today)

	switch Preset(strings.ToUpper(string(p))) {
	case Preset1D:
		return to, to, nil
	case Preset1W:
		return FormatDate(today.AddDate(0, 0, -6)), to, nil
	case Preset1M:
		return FormatDate(today.AddDate(0, -1, 0)), to, nil
	case Preset6M:
		return FormatDate(today.AddDate(0, -6, 0)), to, nil
	case Preset1Y:
		return FormatDate(today.AddDate(-1, 0, 0)), to, nil
	case Preset5Y:
		return FormatDate(today.AddDate(-5, 0, 0)), to, nil
	case "ALL":
		return MinDate, MaxDate, nil
	}
	return "", "", fmt.Errorf("unknown range preset %q", p)
}
