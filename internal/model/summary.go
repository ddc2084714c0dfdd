package model

import "time"

type SummaryStatus string

const (
	SummaryGenerated    SummaryStatus = "generated"
	SummaryNoData       SummaryStatus = "no_data"
	SummaryUnconfigured SummaryStatus = "unconfigured"
	SummaryFailed       SummaryStatus = "failed"
)

// ComparativeSummary is derived from a whole batch snapshot. Content is always populated.
type ComparativeSummary struct {
	Content     string        `json:"content"`
	Status      SummaryStatus `json:"status"`
	Documents   int           `json:"documents"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// Cacheable reports whether the summary may be reused until invalidated.
func (s ComparativeSummary) Cacheable() bool {
	return s.Status == SummaryGenerated || s.Status == SummaryNoData
}
