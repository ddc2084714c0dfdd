package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/fadilmartias/cv-batch-analyzer/internal/metrics"
	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/service"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	comparisonSystemInstruction = "You are an AI assistant that helps compare and summarize multiple CV analyses for recruitment purposes. Provide detailed comparisons and clear recommendations."
	comparisonPreamble          = "Please provide a comprehensive comparison and summary of the following CV analyses:\n\n"
	comparisonInstruction       = "Please compare the candidates based on their qualifications, experience, skills, and overall suitability for the position. Highlight the strongest candidates and explain why. Create a table comparing key aspects across all candidates and provide a final ranking with rationale."

	noDataMessage = "No successfully analyzed CVs to compare."
)

type SynthesisUsecase struct {
	summarizer service.SummarizerInterface
	metrics    *metrics.BatchMetrics
	now        func() time.Time
	logger     *zap.Logger

	cache *lru.Cache[uuid.UUID, model.ComparativeSummary]
}

// NewSynthesisUsecase keeps the most recent summaries; cacheSize <= 0 uses
// the default bound.
func NewSynthesisUsecase(summarizer service.SummarizerInterface, cacheSize int, m *metrics.BatchMetrics, log *zap.Logger) *SynthesisUsecase {
	return &SynthesisUsecase{
		summarizer: summarizer,
		metrics:    m,
		now:        time.Now,
		logger:     logger.OrNop(log),
		cache:      newLRU[model.ComparativeSummary](cacheSize),
	}
}

// Synthesize returns the cached summary of the batch or computes one. The
// backend call is not serialized, so concurrent first reads may both call it.
func (uc *SynthesisUsecase) Synthesize(ctx context.Context, batch *model.BatchResult) model.ComparativeSummary {
	if cached, ok := uc.cache.Get(batch.ID); ok {
		return cached
	}

	summary := uc.compute(ctx, batch)
	uc.metrics.ObserveSummary(string(summary.Status))

	if summary.Cacheable() {
		uc.cache.Add(batch.ID, summary)
	}
	return summary
}

func (uc *SynthesisUsecase) Regenerate(ctx context.Context, batch *model.BatchResult) model.ComparativeSummary {
	uc.Invalidate(batch.ID)
	return uc.Synthesize(ctx, batch)
}

func (uc *SynthesisUsecase) Invalidate(batchID uuid.UUID) {
	uc.cache.Remove(batchID)
}

func (uc *SynthesisUsecase) compute(ctx context.Context, batch *model.BatchResult) model.ComparativeSummary {
	prompt, compared := BuildComparisonPrompt(batch)
	summary := model.ComparativeSummary{
		Documents:   compared,
		GeneratedAt: uc.now(),
	}

	switch {
	case compared == 0:
		summary.Status = model.SummaryNoData
		summary.Content = noDataMessage
		return summary
	case uc.summarizer == nil || !uc.summarizer.Configured():
		summary.Status = model.SummaryUnconfigured
		summary.Content = fmt.Sprintf("⚠️ %s credentials not configured. Please add them to your .env file to enable the comparative summary feature.", uc.backendName())
		return summary
	}

	content, err := uc.summarizer.Summarize(ctx, comparisonSystemInstruction, prompt)
	if err != nil {
		uc.logger.Error("comparative summary failed",
			zap.String("batch_id", batch.ID.String()),
			zap.String("backend", uc.backendName()),
			zap.Error(err),
		)
		summary.Status = model.SummaryFailed
		summary.Content = fmt.Sprintf("⚠️ Error generating summary: %v. Please check your %s credentials.", err, uc.backendName())
		return summary
	}

	summary.Status = model.SummaryGenerated
	summary.Content = content
	return summary
}

func (uc *SynthesisUsecase) backendName() string {
	if uc.summarizer == nil {
		return "Summarization backend"
	}
	switch uc.summarizer.Name() {
	case "azure_openai":
		return "Azure OpenAI API"
	case "gemini":
		return "Gemini API"
	default:
		return uc.summarizer.Name()
	}
}

// BuildComparisonPrompt lists every completed entry of the batch and returns the
// prompt together with the number of entries it includes.
func BuildComparisonPrompt(batch *model.BatchResult) (string, int) {
	var b strings.Builder
	b.WriteString(comparisonPreamble)

	compared := 0
	for _, entry := range batch.Entries {
		if !entry.Succeeded() {
			continue
		}
		compared++

		text := entry.Result.RawPayload
		if entry.Analysis.Recognized() {
			text = entry.Analysis.Text()
		}
		fmt.Fprintf(&b, "CV: %s\n", entry.DocumentName)
		fmt.Fprintf(&b, "Analysis: %s\n\n", text)
	}

	b.WriteString(comparisonInstruction)
	return b.String(), compared
}
