package emotion

// Style is the display color and glyph for a label.
type Style struct {
	Color string `json:"color"` // CSS hex color
	Glyph string `json:"glyph"` // emoji
}

// fallbackStyle is used for labels outside the known set.
var fallbackStyle = Style{Color: "#6b7280", Glyph: "😐"}

// styles is indexed in the same order as Labels().
var styles = [...]struct {
	label Label
	style Style
}{
	{Happy, Style{Color: "#22c55e", Glyph: "😊"}},
	{Sad, Style{Color: "#3b82f6", Glyph: "😢"}},
	{Angry, Style{Color: "#ef4444", Glyph: "😠"}},
	{Surprise, Style{Color: "#eab308", Glyph: "😲"}},
	{Fear, Style{Color: "#a855f7", Glyph: "😨"}},
	{Disgust, Style{Color: "#f97316", Glyph: "🤢"}},
	{Neutral, Style{Color: "#6b7280", Glyph: "😐"}},
}

func styleIndex(l Label) (int, bool) {
	for i := range styles {
		if styles[i].label == l {
			return i, true
		}
	}
	return 0, false
}

// StyleFor returns the style for a label, case-insensitively.
// Unrecognized labels get the neutral fallback.
func StyleFor(l Label) Style {
	if !l.Known() {
		return Fallback()
	}
	i, _ := styleIndex(l.Normalize())
	return styles[i].style
}

// Fallback returns the style used for unrecognized labels.
func Fallback() Style {
	return fallbackStyle
}
