// Package analysis turns raw evaluation engine payloads into a NormalizedAnalysis.
//
// The engine has answered in several incompatible shapes over time. Each
// recognized shape is a Payload; parsers are tried in order and RawText always
// matches, so normalization never fails.
package analysis

import (
	"strings"

	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/tidwall/gjson"
)

// DefaultTurnNames are the transcript turns that carry user-facing narrative.
var DefaultTurnNames = []string{"summary", "applicant_lookup_agent"}

// Payload is one recognized shape of an engine response.
type Payload interface {
	Shape() model.PayloadShape
	Sections() []model.Section
	// ScoreText is the text the score heuristics are applied to.
	ScoreText() string
}

type RawText struct {
	Text string
}

func (p RawText) Shape() model.PayloadShape { return model.ShapeRawText }

func (p RawText) Sections() []model.Section {
	return []model.Section{{Name: model.UnnamedSection, Text: p.Text}}
}

func (p RawText) ScoreText() string { return p.Text }

type Turn struct {
	Name    string
	Content string
}

// TurnArray holds only the recognized turns of a transcript, in array order.
type TurnArray struct {
	Turns []Turn
}

func (p TurnArray) Shape() model.PayloadShape { return model.ShapeTurnArray }

func (p TurnArray) Sections() []model.Section {
	sections := make([]model.Section, 0, len(p.Turns))
	for _, t := range p.Turns {
		sections = append(sections, model.Section{Name: t.Name, Text: t.Content})
	}
	return sections
}

func (p TurnArray) ScoreText() string {
	parts := make([]string, 0, len(p.Turns))
	for _, t := range p.Turns {
		parts = append(parts, t.Content)
	}
	return strings.Join(parts, "\n")
}

// turnEncoding is where a turn keeps its name and its narrative content.
type turnEncoding struct {
	namePath    string
	contentPath string
}

var turnEncodings = []turnEncoding{
	{namePath: "__dict__.chat_name", contentPath: "__dict__.chat_response.chat_message.__dict__.content"},
	{namePath: "name", contentPath: "response.content"},
	{namePath: "chat_name", contentPath: "chat_response.chat_message.content"},
}

type Normalizer struct {
	allowed map[string]struct{}
}

// NewNormalizer builds a normalizer recognizing the given turn names, or
// DefaultTurnNames when none are given.
func NewNormalizer(turnNames ...string) *Normalizer {
	if len(turnNames) == 0 {
		turnNames = DefaultTurnNames
	}
	allowed := make(map[string]struct{}, len(turnNames))
	for _, name := range turnNames {
		allowed[name] = struct{}{}
	}
	return &Normalizer{allowed: allowed}
}

var defaultNormalizer = NewNormalizer()

func Normalize(raw string) model.NormalizedAnalysis {
	return defaultNormalizer.Normalize(raw)
}

func (n *Normalizer) Normalize(raw string) (analysis model.NormalizedAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			analysis = model.NormalizedAnalysis{
				Shape:    model.ShapeRawText,
				Sections: RawText{Text: raw}.Sections(),
			}
		}
	}()

	payload := n.Parse(raw)
	analysis = model.NormalizedAnalysis{
		Shape:    payload.Shape(),
		Sections: payload.Sections(),
	}
	if score, source, ok := extractScore(payload.ScoreText()); ok {
		analysis.MatchScore = &score
		analysis.ScoreSource = source
	}
	return analysis
}

// Parse returns the first payload shape that matches raw.
func (n *Normalizer) Parse(raw string) Payload {
	if p, ok := n.parseTurnArray(raw); ok {
		return p
	}
	return RawText{Text: raw}
}

func (n *Normalizer) parseTurnArray(raw string) (Payload, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") || !gjson.Valid(trimmed) {
		return nil, false
	}

	var (
		turns []Turn
		index = map[string]int{}
	)
	gjson.Parse(trimmed).ForEach(func(_, el gjson.Result) bool {
		name, content, ok := readTurn(el)
		if !ok {
			return true
		}
		if _, allowed := n.allowed[name]; !allowed {
			return true
		}
		if strings.TrimSpace(content) == "" {
			return true
		}
		if i, seen := index[name]; seen {
			turns[i].Content += "\n" + content
			return true
		}
		index[name] = len(turns)
		turns = append(turns, Turn{Name: name, Content: content})
		return true
	})

	if len(turns) == 0 {
		return nil, false
	}
	return TurnArray{Turns: turns}, true
}

func readTurn(el gjson.Result) (name, content string, ok bool) {
	if !el.IsObject() {
		return "", "", false
	}
	for _, enc := range turnEncodings {
		n := el.Get(enc.namePath)
		if n.Type != gjson.String {
			continue
		}
		c := el.Get(enc.contentPath)
		if c.Type != gjson.String {
			return n.String(), "", true
		}
		return n.String(), c.String(), true
	}
	return "", "", false
}
