package present

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// barWidth is the number of cells a 100% bar fills.
const barWidth = 30

// Text renders a view for a terminal.
func Text(v View) string {
	var b strings.Builder

	status := "stopped"
	if v.Active {
		status = "running"
		if v.Source != "" {
			status += " (" + v.Source + ")"
		}
	}
	fmt.Fprintf(&b, "Camera: %s\n", status)
	if v.FPSText != "" {
		b.WriteString(v.FPSText + "\n")
	}
	if v.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", v.Error)
	}
	b.WriteString("\n")

	if v.Headline == nil {
		b.WriteString(v.Empty + "\n")
		return b.String()
	}

	h := v.Headline
	fmt.Fprintf(&b, "%s  %s", h.Glyph, h.Title)
	if h.HasConfidence {
		fmt.Fprintf(&b, "  %s", h.ConfidenceText)
	}
	b.WriteString("\n\n")

	if len(v.Rows) == 0 {
		return b.String()
	}

	titleWidth := 0
	for _, r := range v.Rows {
		if w := runewidth.StringWidth(r.Title); w > titleWidth {
			titleWidth = w
		}
	}

	for _, r := range v.Rows {
		filled := int(r.Bar / 100 * barWidth)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(&b, "%s %s %s %6s\n",
			runewidth.FillRight(r.Glyph, 2),
			runewidth.FillRight(r.Title, titleWidth),
			bar,
			r.Text,
		)
	}
	return b.String()
}
