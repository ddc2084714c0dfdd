package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fadilmartias/cv-batch-analyzer/internal/config"
	"github.com/fadilmartias/cv-batch-analyzer/internal/dto"
	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/service"
	"github.com/fadilmartias/cv-batch-analyzer/internal/usecase"
	"github.com/fadilmartias/cv-batch-analyzer/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <files...>",
	Short: "Evaluate local CV files in order and print the per-document results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  evaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().BoolP("summary", "s", false, "also generate the comparative summary")
	evaluateCmd.Flags().BoolP("json", "j", false, "print results as JSON")
	evaluateCmd.Flags().Duration("pacing", 0, "delay between submissions (default from PIPELINE_PACING_DELAY)")
}

type evaluateOutput struct {
	Batch   dto.BatchDTO              `json:"batch"`
	Summary *model.ComparativeSummary `json:"summary,omitempty"`
}

func evaluate(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	logJSON, _ := cmd.Flags().GetBool("log-json")
	withSummary, _ := cmd.Flags().GetBool("summary")
	asJSON, _ := cmd.Flags().GetBool("json")
	pacing, _ := cmd.Flags().GetDuration("pacing")

	log, err := logger.NewStderr(logJSON, debug)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	docs, err := readDocuments(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipelineConfig := *config.LoadPipelineConfig()
	if cmd.Flags().Changed("pacing") {
		pipelineConfig.PacingDelay = pacing
	}

	batchUC := usecase.NewBatchUsecase(
		util.NewExtractor(log.Named("extractor"), pipelineConfig.OCRFallback),
		service.NewEngineService(config.LoadEngineConfig(), log.Named("engine")),
		nil,
		nil,
		&pipelineConfig,
		nil,
		log.Named("batch"),
	)

	log.Info("evaluating documents", zap.Int("count", len(docs)))
	result := batchUC.RunBatch(ctx, docs, func(fraction float64) {
		log.Info("progress", zap.String("done", fmt.Sprintf("%.0f%%", fraction*100)))
	})

	var summary *model.ComparativeSummary
	if withSummary {
		summarizer, err := newSummarizer(ctx, log)
		if err != nil {
			return err
		}
		s := usecase.NewSynthesisUsecase(summarizer, 1, nil, log.Named("synthesis")).Synthesize(ctx, result)
		summary = &s
	}

	snapshot := &model.BatchSnapshot{
		ID:            result.ID,
		Status:        model.BatchStatusCompleted,
		Progress:      1,
		DocumentCount: result.Len(),
		CreatedAt:     result.CreatedAt,
		Result:        result,
	}
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(evaluateOutput{Batch: dto.NewBatchDTO(snapshot), Summary: summary})
	}
	printResult(out, result, summary)
	return nil
}

func readDocuments(paths []string) ([]model.Document, error) {
	docs := make([]model.Document, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		docs = append(docs, model.Document{Name: filepath.Base(p), Content: content})
	}
	return docs, nil
}

func newSummarizer(ctx context.Context, log *zap.Logger) (service.SummarizerInterface, error) {
	cfg := config.LoadSummaryConfig()
	if cfg.Provider == config.SummaryProviderGemini {
		gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig(), log.Named("gemini"))
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}
	return service.NewAzureOpenAIService(cfg, log.Named("azure_openai")), nil
}

func printResult(w io.Writer, result *model.BatchResult, summary *model.ComparativeSummary) {
	for _, e := range result.Entries {
		fmt.Fprintf(w, "== [%d] %s: %s\n", e.Position+1, e.DocumentName, e.Status)
		if !e.Succeeded() {
			fmt.Fprintf(w, "   %s\n\n", e.Reason)
			continue
		}
		if e.Analysis.MatchScore != nil {
			fmt.Fprintf(w, "   match score: %d%% (%s)\n", *e.Analysis.MatchScore, e.Analysis.ScoreSource)
		}
		for _, s := range e.Analysis.Sections {
			fmt.Fprintf(w, "-- %s\n%s\n", s.Name, s.Text)
		}
		fmt.Fprintln(w)
	}

	if summary != nil {
		fmt.Fprintf(w, "== Comparative summary (%s, %d documents)\n%s\n", summary.Status, summary.Documents, summary.Content)
	}
}
