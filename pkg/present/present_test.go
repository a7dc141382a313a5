package present

import (
	"strings"
	"testing"

	"github.com/teslashibe/go-emotion/pkg/emotion"
	"github.com/teslashibe/go-emotion/pkg/session"
)

func fixtureState() session.State {
	return session.State{
		Active: true,
		FPS:    7,
		Result: emotion.NewResult(emotion.Happy, emotion.Distribution{
			emotion.Happy:   87.3,
			emotion.Sad:     4.1,
			emotion.Neutral: 8.6,
		}),
	}
}

func TestRender_Fixture(t *testing.T) {
	v := Render(fixtureState())

	if v.Headline == nil {
		t.Fatal("Expected headline")
	}
	if v.Headline.Label != emotion.Happy {
		t.Errorf("Expected happy headline, got %s", v.Headline.Label)
	}
	if v.Headline.ConfidenceText != "87.3% confidence" {
		t.Errorf("Expected 87.3%% confidence, got %q", v.Headline.ConfidenceText)
	}
	if v.Headline.Glyph != "😊" {
		t.Errorf("Expected 😊, got %s", v.Headline.Glyph)
	}

	want := []emotion.Label{emotion.Happy, emotion.Neutral, emotion.Sad}
	if len(v.Rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(v.Rows))
	}
	for i, label := range want {
		if v.Rows[i].Label != label {
			t.Errorf("Row %d: expected %s, got %s", i, label, v.Rows[i].Label)
		}
	}
	if v.Rows[1].Text != "8.6%" {
		t.Errorf("Expected 8.6%%, got %s", v.Rows[1].Text)
	}
	if v.FPSText != "Processing: 7 FPS" {
		t.Errorf("Unexpected FPS text %q", v.FPSText)
	}
}

func TestRender_HeadlineNotRecomputed(t *testing.T) {
	s := session.State{Result: emotion.NewResult(emotion.Sad, emotion.Distribution{
		emotion.Happy: 90,
		emotion.Sad:   10,
	})}

	v := Render(s)
	if v.Headline.Label != emotion.Sad {
		t.Errorf("Headline must follow the server, got %s", v.Headline.Label)
	}
	if v.Rows[0].Label != emotion.Happy {
		t.Errorf("Rows must still sort by confidence, got %s first", v.Rows[0].Label)
	}
}

func TestRender_HeadlineWithoutConfidence(t *testing.T) {
	tests := []struct {
		name     string
		emotions emotion.Distribution
	}{
		{"missing", emotion.Distribution{emotion.Sad: 12}},
		{"zero", emotion.Distribution{emotion.Happy: 0}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Render(session.State{Result: emotion.NewResult(emotion.Happy, tt.emotions)})
			if v.Headline == nil {
				t.Fatal("Expected headline")
			}
			if v.Headline.HasConfidence {
				t.Error("Expected no confidence line")
			}
		})
	}
}

func TestRender_UnknownLabelFallsBack(t *testing.T) {
	v := Render(session.State{Result: emotion.NewResult("contempt", emotion.Distribution{"contempt": 40})})

	fallback := emotion.Fallback()
	if v.Headline.Color != fallback.Color || v.Headline.Glyph != fallback.Glyph {
		t.Errorf("Expected fallback style, got %s %s", v.Headline.Color, v.Headline.Glyph)
	}
	if v.Headline.Title != "Contempt" {
		t.Errorf("Expected capitalized title, got %s", v.Headline.Title)
	}
}

func TestRender_Empty(t *testing.T) {
	v := Render(session.State{})

	if v.Headline != nil {
		t.Error("Expected no headline")
	}
	if v.Empty != PlaceholderResults {
		t.Errorf("Expected placeholder, got %q", v.Empty)
	}
	if v.Rows == nil {
		t.Error("Rows should be an empty slice for JSON")
	}
	if v.FPSText != "" {
		t.Error("FPS text hidden at 0")
	}
}

func TestRender_BarClamped(t *testing.T) {
	v := Render(session.State{Result: emotion.NewResult(emotion.Fear, emotion.Distribution{
		emotion.Fear:  120,
		emotion.Angry: -3,
	})})

	if v.Rows[0].Bar != 100 {
		t.Errorf("Expected clamp to 100, got %v", v.Rows[0].Bar)
	}
	if v.Rows[1].Bar != 0 {
		t.Errorf("Expected clamp to 0, got %v", v.Rows[1].Bar)
	}
}

func TestText(t *testing.T) {
	s := fixtureState()
	s.Source = "mock"
	s.Error = "No face"
	out := Text(Render(s))

	for _, want := range []string{"running (mock)", "Processing: 7 FPS", "Error: No face", "Happy  87.3% confidence"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	happy := strings.Index(out, "Happy ")
	neutral := strings.Index(out, "Neutral")
	sad := strings.Index(out, "Sad")
	if !(happy < neutral && neutral < sad) {
		t.Errorf("Expected rows in confidence order:\n%s", out)
	}
}

func TestText_Empty(t *testing.T) {
	out := Text(Render(session.State{}))
	if !strings.Contains(out, "Camera: stopped") || !strings.Contains(out, PlaceholderResults) {
		t.Errorf("Unexpected empty output:\n%s", out)
	}
}
