// Package present renders controller state into a view model shared by
// the web dashboard and terminal commands. Rendering is pure: it reads a
// session.State and never talks to the camera or the backend.
package present

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/teslashibe/go-emotion/pkg/emotion"
	"github.com/teslashibe/go-emotion/pkg/session"
)

// Placeholder texts.
const (
	PlaceholderCamera  = "Camera feed will appear here"
	PlaceholderResults = "Start camera or upload an image to detect emotions"
)

// View is everything a presenter needs to paint one frame of UI.
type View struct {
	Active    bool      `json:"active"`
	SessionID string    `json:"session_id,omitempty"`
	Source    string    `json:"source,omitempty"`
	FPS       int       `json:"fps"`
	FPSText   string    `json:"fps_text,omitempty"`
	Error     string    `json:"error,omitempty"`
	Headline  *Headline `json:"headline,omitempty"`
	Rows      []Row     `json:"rows"`
	Empty     string    `json:"empty,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Headline is the dominant-emotion card.
type Headline struct {
	Label emotion.Label `json:"label"`
	Title string        `json:"title"`
	Glyph string        `json:"glyph"`
	Color string        `json:"color"`

	// HasConfidence is false when the distribution has no non-zero value
	// for the dominant label; the card then omits the confidence line.
	HasConfidence  bool    `json:"has_confidence"`
	Confidence     float64 `json:"confidence,omitempty"`
	ConfidenceText string  `json:"confidence_text,omitempty"`
}

// Row is one entry of the detail list.
type Row struct {
	Label   emotion.Label `json:"label"`
	Title   string        `json:"title"`
	Glyph   string        `json:"glyph"`
	Color   string        `json:"color"`
	Percent float64       `json:"percent"`
	Text    string        `json:"text"`

	// Bar is the fill width in percent, clamped to 0-100.
	Bar float64 `json:"bar"`
}

// Render builds the view for s. The headline label is the one the server
// reported; it is not recomputed from the distribution.
func Render(s session.State) View {
	v := View{
		Active:    s.Active,
		SessionID: s.SessionID,
		Source:    s.Source,
		FPS:       s.FPS,
		Error:     s.Error,
		Rows:      []Row{},
		UpdatedAt: s.UpdatedAt,
	}
	if s.FPS > 0 {
		v.FPSText = fmt.Sprintf("Processing: %d FPS", s.FPS)
	}

	if s.Result == nil || s.Result.Dominant == "" {
		v.Empty = PlaceholderResults
		return v
	}

	v.Headline = headline(s.Result)
	for _, score := range s.Result.Emotions.Ranked() {
		v.Rows = append(v.Rows, row(score))
	}
	return v
}

func headline(r *emotion.Result) *Headline {
	style := emotion.StyleFor(r.Dominant)
	h := &Headline{
		Label: r.Dominant,
		Title: Title(r.Dominant),
		Glyph: style.Glyph,
		Color: style.Color,
	}
	if conf, ok := r.Emotions.Get(r.Dominant); ok && conf != 0 && !math.IsNaN(conf) {
		h.HasConfidence = true
		h.Confidence = conf
		h.ConfidenceText = Percent(conf) + " confidence"
	}
	return h
}

func row(s emotion.Score) Row {
	style := emotion.StyleFor(s.Label)
	return Row{
		Label:   s.Label,
		Title:   Title(s.Label),
		Glyph:   style.Glyph,
		Color:   style.Color,
		Percent: s.Confidence,
		Text:    Percent(s.Confidence),
		Bar:     clamp(s.Confidence, 0, 100),
	}
}

// Title capitalizes a label for display.
func Title(l emotion.Label) string {
	// Casers are stateful, so each call gets its own.
	return cases.Title(language.Und).String(string(l))
}

// Percent formats a confidence with one decimal, e.g. "87.3%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
