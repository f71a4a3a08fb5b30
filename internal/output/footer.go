package output

import (
	"fmt"
	"io"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
)

// Footer summarizes a list fetch.
type Footer struct {
	Displayed int
	Total     int
	All       bool
	Limit     int // 0 when --limit was not given
}

// Warning explains why fewer records than exist were displayed, or returns "".
func (f Footer) Warning() string {
	if f.Displayed >= f.Total {
		return ""
	}
	if f.All || f.Limit > constants.MaxListRecords {
		return fmt.Sprintf("The maximum number of exports that can be displayed is %s", FormatCount(constants.MaxListRecords))
	}
	if f.Limit > 0 {
		return ""
	}

	displayed := fmt.Sprintf("Only %s of %s records are displayed", FormatCount(f.Displayed), FormatCount(f.Total))
	if f.Total < constants.MaxListRecords {
		return displayed + ", to see all existing items run the command with the --all flag enabled"
	}
	return fmt.Sprintf("%s, to see more items (max %s) run the command with the --limit flag enabled", displayed, FormatCount(constants.MaxListRecords))
}

// WriteFooter prints the totals, then the warning if there is one.
func WriteFooter(w io.Writer, f Footer, color bool) error {
	c := Colorizer(color)
	out := c.Color(fmt.Sprintf("\nTotal displayed exports: [light_yellow]%s[reset]\nTotal export count: [light_yellow]%s[reset]\n",
		FormatCount(f.Displayed), FormatCount(f.Total)))

	if warning := f.Warning(); warning != "" {
		out += c.Color("\n[yellow]Warning:[reset] " + warning + "\n")
	}

	_, err := io.WriteString(w, out)
	return err
}
