package questions

// Type is the answer format of a question. Every question in the
// maturity bank is a five-point rating.
type Type string

const (
	TypeRating Type = "rating"
)

// Theme groups related questions and is the unit of per-area scoring.
type Theme struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Icon        string `yaml:"icon" json:"icon"`
	Description string `yaml:"description" json:"description"`
}

// Question is a single Likert item. Options are ordered from the lowest
// maturity ("1. Initial - ...") to the highest ("5. Optimising - ...").
type Question struct {
	ID       int      `yaml:"id" json:"id"`
	Theme    string   `yaml:"theme" json:"theme"`
	Question string   `yaml:"question" json:"question"`
	Type     Type     `yaml:"type,omitempty" json:"type"`
	Options  []string `yaml:"options" json:"options"`
	Tip      string   `yaml:"tip,omitempty" json:"tip,omitempty"`
}

// ThemeLabel renders a theme id the way reports show it:
// "data-publication" becomes "DATA PUBLICATION".
func ThemeLabel(themeID string) string {
	out := []byte(themeID)
	for i, c := range out {
		switch {
		case c == '-':
			out[i] = ' '
		case c >= 'a' && c <= 'z':
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}
