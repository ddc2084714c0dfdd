package model

import (
	"path/filepath"
	"strings"
)

// Document is one uploaded source file. Names are not required to be unique within a batch.
type Document struct {
	Name    string
	Content []byte
}

// Format returns the lowercase file suffix including the dot, e.g. ".pdf".
func (d Document) Format() string {
	return strings.ToLower(filepath.Ext(d.Name))
}

// ExtractionOutcome is either extracted text or a failure reason.
type ExtractionOutcome struct {
	Text   string
	Reason string
	Failed bool
}

func Extracted(text string) ExtractionOutcome {
	return ExtractionOutcome{Text: text}
}

func ExtractionFailed(reason string) ExtractionOutcome {
	return ExtractionOutcome{Reason: reason, Failed: true}
}
