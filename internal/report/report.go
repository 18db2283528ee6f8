// Package report turns the analysis service's free-form reply into a
// structured polarization report.
package report

// Limits applied to every parsed report.
const (
	MinScore     = 0
	MaxScore     = 100
	DefaultScore = 50
	MaxItems     = 3
)

// PlaceholderURL is used for alternative viewpoints listed without a link.
const PlaceholderURL = "#"

// Report is the structured result of one analysis. List fields are never nil.
type Report struct {
	PolarizationScore     int         `json:"polarizationScore"`
	Summary               string      `json:"summary"`
	Biases                []string    `json:"biases"`
	MissingPerspectives   []string    `json:"missingPerspectives"`
	AlternativeViewpoints []Viewpoint `json:"alternativeViewpoints"`
}

// Viewpoint is a suggested article presenting another perspective.
type Viewpoint struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (r Report) Clone() Report {
	out := r
	out.Biases = append([]string{}, r.Biases...)
	out.MissingPerspectives = append([]string{}, r.MissingPerspectives...)
	out.AlternativeViewpoints = append([]Viewpoint{}, r.AlternativeViewpoints...)
	return out
}

// Level is a human-facing band of polarization scores.
type Level struct {
	Name    string `json:"name"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Levels are ordered by ascending score range and cover [MinScore, MaxScore].
var Levels = []Level{
	{Name: "balanced", Min: 0, Max: 30, Title: "Fairly Balanced Views", Message: "This content presents a balanced perspective."},
	{Name: "slight", Min: 31, Max: 60, Title: "Potential Bias Detected", Message: "Consider exploring other perspectives for a fuller understanding."},
	{Name: "moderate", Min: 61, Max: 80, Title: "Notably Biased Views", Message: "This content shows notable bias. Here are some alternative viewpoints:"},
	{Name: "extreme", Min: 81, Max: 100, Title: "Extremely Skewed Views Detected", Message: "Strong bias detected. Consider these opposing perspectives:"},
}

// LevelFor returns the level containing score after clamping.
func LevelFor(score int) Level {
	score = clamp(score)
	for _, l := range Levels {
		if score <= l.Max {
			return l
		}
	}
	return Levels[len(Levels)-1]
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
