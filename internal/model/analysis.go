package model

import "strings"

// UnnamedSection is the key used when the payload had no recognized turns.
const UnnamedSection = "unnamed"

type PayloadShape string

const (
	ShapeRawText   PayloadShape = "raw_text"
	ShapeTurnArray PayloadShape = "turn_array"
)

type Section struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// NormalizedAnalysis is a read-only view derived from a raw engine payload.
// Sections keep the order in which they appeared in the payload.
type NormalizedAnalysis struct {
	Shape      PayloadShape `json:"shape"`
	Sections   []Section    `json:"sections"`
	MatchScore *int         `json:"match_score,omitempty"`
	// ScoreSource names the heuristic that produced MatchScore.
	ScoreSource string `json:"score_source,omitempty"`
}

func (a *NormalizedAnalysis) Section(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	for _, s := range a.Sections {
		if s.Name == name {
			return s.Text, true
		}
	}
	return "", false
}

// Recognized reports whether any named section was extracted from a structured payload.
func (a *NormalizedAnalysis) Recognized() bool {
	return a != nil && a.Shape == ShapeTurnArray && len(a.Sections) > 0
}

// Text joins all section texts with newlines.
func (a *NormalizedAnalysis) Text() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, len(a.Sections))
	for _, s := range a.Sections {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n")
}
