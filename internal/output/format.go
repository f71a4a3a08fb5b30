package output

import (
	"time"

	"github.com/mitchellh/colorstring"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. 12,500.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatTime renders t in local time, or an empty string for nil.
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// Colorizer expands [color] tags, or strips them when color is off.
func Colorizer(enabled bool) *colorstring.Colorize {
	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !enabled,
		Reset:   true,
	}
}

// StatusColor is the color tag used for an export status.
func StatusColor(status string) string {
	switch status {
	case constants.StatusCompleted:
		return "[green]"
	case constants.StatusInterrupted:
		return "[red]"
	case constants.StatusInProgress:
		return "[cyan]"
	default:
		return "[light_gray]"
	}
}

// Humanize replaces underscores with spaces, e.g. line_items becomes "line items".
func Humanize(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}
