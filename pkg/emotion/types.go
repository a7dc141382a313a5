// Package emotion holds the data model shared by the capture pipeline and
// the presenters: emotion labels, probability distributions and the
// detection result returned by the remote classifier.
package emotion

import (
	"sort"
	"strings"
)

// Label identifies an emotion as reported by the classifier.
// Labels received from the server are carried through unvalidated.
type Label string

// Known labels. The classifier is trained on this closed set.
const (
	Happy    Label = "happy"
	Sad      Label = "sad"
	Angry    Label = "angry"
	Surprise Label = "surprise"
	Fear     Label = "fear"
	Disgust  Label = "disgust"
	Neutral  Label = "neutral"
)

// Unknown stands in for a response without a dominant label.
const Unknown Label = "unknown"

// Labels returns the known labels in display order.
func Labels() []Label {
	return []Label{Happy, Sad, Angry, Surprise, Fear, Disgust, Neutral}
}

// Normalize lowercases and trims a label for table lookups.
func (l Label) Normalize() Label {
	return Label(strings.ToLower(strings.TrimSpace(string(l))))
}

// Known reports whether the label belongs to the closed set.
func (l Label) Known() bool {
	n := l.Normalize()
	for _, k := range Labels() {
		if n == k {
			return true
		}
	}
	return false
}

// String returns the label text.
func (l Label) String() string {
	return string(l)
}

// Distribution maps a label to a confidence percentage (0-100).
// Values are not guaranteed to sum to 100.
type Distribution map[Label]float64

// Score is one entry of a ranked distribution.
type Score struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Ranked returns the entries sorted by descending confidence.
// Equal confidences are ordered by label so output is stable.
func (d Distribution) Ranked() []Score {
	scores := make([]Score, 0, len(d))
	for label, conf := range d {
		scores = append(scores, Score{Label: label, Confidence: conf})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].Label < scores[j].Label
	})
	return scores
}

// Get returns the confidence for a label and whether it was present.
func (d Distribution) Get(label Label) (float64, bool) {
	v, ok := d[label]
	return v, ok
}

// Clone returns an independent copy. A nil distribution clones to an empty one.
func (d Distribution) Clone() Distribution {
	out := make(Distribution, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Result is a single detection: the dominant label reported by the server
// and the full distribution. Each successful response produces a fresh
// Result that replaces the previous one.
type Result struct {
	// Dominant is the server-reported dominant emotion. It is not checked
	// against the distribution.
	Dominant Label `json:"dominant_emotion"`

	// Emotions is the per-label confidence. Never nil.
	Emotions Distribution `json:"emotions"`

	// Confidence echoes the server's confidence for the dominant label,
	// when the server sends one.
	Confidence float64 `json:"confidence,omitempty"`
}

// NewResult builds a Result, normalizing a nil distribution to an empty one.
func NewResult(dominant Label, emotions Distribution) *Result {
	if emotions == nil {
		emotions = Distribution{}
	}
	return &Result{Dominant: dominant, Emotions: emotions}
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	return &Result{
		Dominant:   r.Dominant,
		Emotions:   r.Emotions.Clone(),
		Confidence: r.Confidence,
	}
}
