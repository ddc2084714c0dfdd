package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/cv-batch-analyzer/internal/analysis"
	"github.com/fadilmartias/cv-batch-analyzer/internal/config"
	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/fadilmartias/cv-batch-analyzer/internal/metrics"
	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/repository"
	"github.com/fadilmartias/cv-batch-analyzer/internal/response"
	"github.com/fadilmartias/cv-batch-analyzer/internal/service"
	"github.com/fadilmartias/cv-batch-analyzer/internal/util"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

var errNoBatchStore = errors.New("batch store is not configured")

// ProgressFunc receives the completed fraction of a batch, in (0, 1].
type ProgressFunc func(fraction float64)

type SummaryInvalidator interface {
	Invalidate(batchID uuid.UUID)
}

type BatchUsecase struct {
	extractor   util.ExtractorInterface
	engine      service.EngineServiceInterface
	normalizer  *analysis.Normalizer
	batchRepo   repository.BatchRepositoryInterface
	invalidator SummaryInvalidator
	metrics     *metrics.BatchMetrics
	pacingDelay time.Duration
	wait        func(ctx context.Context, d time.Duration) error
	now         func() time.Time
	logger      *zap.Logger

	sessions *lru.Cache[uuid.UUID, *model.BatchResult]
}

// NewBatchUsecase wires the pipeline. batchRepo and invalidator may be nil when
// batches are only run in-process.
func NewBatchUsecase(
	extractor util.ExtractorInterface,
	engine service.EngineServiceInterface,
	batchRepo repository.BatchRepositoryInterface,
	invalidator SummaryInvalidator,
	cfg *config.PipelineConfig,
	m *metrics.BatchMetrics,
	log *zap.Logger,
) *BatchUsecase {
	return &BatchUsecase{
		extractor:   extractor,
		engine:      engine,
		normalizer:  analysis.NewNormalizer(),
		batchRepo:   batchRepo,
		invalidator: invalidator,
		metrics:     m,
		pacingDelay: cfg.PacingDelay,
		wait:        waitFor,
		now:         time.Now,
		logger:      logger.OrNop(log),
		sessions:    newLRU[*model.BatchResult](cfg.SessionCacheSize),
	}
}

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunBatch evaluates documents one at a time, in order. The result always has
// one entry per document.
func (uc *BatchUsecase) RunBatch(ctx context.Context, docs []model.Document, progress ProgressFunc) *model.BatchResult {
	return uc.runBatch(ctx, uuid.New(), docs, progress)
}

func (uc *BatchUsecase) runBatch(ctx context.Context, id uuid.UUID, docs []model.Document, progress ProgressFunc) *model.BatchResult {
	uc.metrics.StartBatch()
	defer uc.metrics.FinishBatch()

	result := &model.BatchResult{
		ID:        id,
		CreatedAt: uc.now(),
		Entries:   make([]model.BatchEntry, 0, len(docs)),
	}
	total := len(docs)

	for i, doc := range docs {
		start := time.Now()
		entry, submitted := uc.evaluateDocument(ctx, i, doc)
		result.Entries = append(result.Entries, entry)
		uc.metrics.ObserveDocument(string(entry.Status), time.Since(start))

		uc.logger.Info("document evaluated",
			zap.String("batch_id", id.String()),
			zap.Int("position", i),
			zap.String("document", doc.Name),
			zap.String("status", string(entry.Status)),
			zap.String("reason", entry.Reason),
		)

		if progress != nil {
			progress(float64(i+1) / float64(total))
		}

		if submitted {
			if err := uc.wait(ctx, uc.pacingDelay); err != nil {
				uc.logger.Debug("pacing interrupted", zap.Error(err))
			}
		}
	}
	return result
}

// evaluateDocument reports whether a submission was attempted, which is what
// the pacing delay applies to.
func (uc *BatchUsecase) evaluateDocument(ctx context.Context, position int, doc model.Document) (model.BatchEntry, bool) {
	entry := model.BatchEntry{
		Position:     position,
		DocumentName: doc.Name,
	}

	outcome := uc.extractor.Extract(doc)
	if outcome.Failed {
		entry.Status = model.EntryExtractionFailed
		entry.Reason = outcome.Reason
		return entry, false
	}

	if err := ctx.Err(); err != nil {
		entry.Status = model.EntrySubmissionFailed
		entry.Result = model.EvaluationErr(fmt.Sprintf("evaluation cancelled: %v", err))
		entry.Reason = entry.Result.Reason
		return entry, false
	}

	result := uc.engine.Submit(ctx, model.EvaluationRequest{
		Text:              outcome.Text,
		Identifier:        fmt.Sprintf("cv_%d", position+1),
		ConversationToken: uuid.NewString(),
	})
	entry.Result = result
	if result.Failed {
		entry.Status = model.EntrySubmissionFailed
		entry.Reason = result.Reason
		return entry, true
	}

	normalized := uc.normalizer.Normalize(result.RawPayload)
	entry.Status = model.EntryCompleted
	entry.Analysis = &normalized
	return entry, true
}

// Submit stores a new processing batch and evaluates it in the background.
func (uc *BatchUsecase) Submit(ctx context.Context, docs []model.Document) (uuid.UUID, error) {
	if uc.batchRepo == nil {
		return uuid.Nil, errNoBatchStore
	}
	if len(docs) == 0 {
		return uuid.Nil, model.ErrEmptyBatch
	}

	record := &model.BatchRecord{
		ID:            uuid.New(),
		Status:        model.BatchStatusProcessing,
		DocumentCount: len(docs),
		CreatedAt:     uc.now(),
		UpdatedAt:     uc.now(),
	}
	if err := uc.batchRepo.CreateBatch(ctx, record); err != nil {
		return uuid.Nil, fmt.Errorf("create batch: %w", err)
	}

	go uc.process(record.ID, docs)

	return record.ID, nil
}

func (uc *BatchUsecase) process(id uuid.UUID, docs []model.Document) {
	ctx := context.Background()
	log := uc.logger.With(zap.String("batch_id", id.String()))

	defer func() {
		if r := recover(); r != nil {
			log.Error("batch processing panicked", zap.Any("panic", r))
			uc.markFailed(ctx, log, id, fmt.Sprintf("processing panicked: %v", r))
		}
	}()

	result := uc.runBatch(ctx, id, docs, func(fraction float64) {
		if err := uc.batchRepo.UpdateProgress(ctx, id, fraction); err != nil {
			log.Warn("failed to update batch progress", zap.Error(err))
		}
	})

	if err := uc.batchRepo.SaveEntries(ctx, id, toEntryRecords(result)); err != nil {
		log.Error("failed to save batch entries", zap.Error(err))
		uc.markFailed(ctx, log, id, "saving results failed: "+err.Error())
		uc.storeSession(result)
		return
	}
	if err := uc.batchRepo.MarkCompleted(ctx, id); err != nil {
		log.Error("failed to mark batch completed", zap.Error(err))
		uc.markFailed(ctx, log, id, "completing batch failed: "+err.Error())
		uc.storeSession(result)
		return
	}

	uc.storeSession(result)
	log.Info("batch completed", zap.Int("documents", result.Len()))
}

func (uc *BatchUsecase) markFailed(ctx context.Context, log *zap.Logger, id uuid.UUID, reason string) {
	if err := uc.batchRepo.MarkFailed(ctx, id, reason); err != nil {
		log.Error("failed to mark batch failed", zap.String("reason", reason), zap.Error(err))
	}
}

func (uc *BatchUsecase) storeSession(result *model.BatchResult) {
	uc.sessions.Add(result.ID, result)

	if uc.invalidator != nil {
		uc.invalidator.Invalidate(result.ID)
	}
}

// Get returns the stored batch. Completed batches carry their result, with every
// analysis recomputed from the stored raw payloads. A failed batch carries its
// result while it is still held in memory or its entries were saved.
func (uc *BatchUsecase) Get(ctx context.Context, id uuid.UUID) (*model.BatchSnapshot, error) {
	if uc.batchRepo == nil {
		return nil, errNoBatchStore
	}
	record, err := uc.batchRepo.FindBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshot := &model.BatchSnapshot{
		ID:            record.ID,
		Status:        record.Status,
		FailureReason: record.FailureReason,
		Progress:      record.Progress,
		DocumentCount: record.DocumentCount,
		CreatedAt:     record.CreatedAt,
	}
	if record.Status == model.BatchStatusProcessing {
		return snapshot, nil
	}

	if result, ok := uc.sessions.Get(id); ok {
		snapshot.Result = result
		return snapshot, nil
	}
	if record.Status == model.BatchStatusFailed && len(record.Entries) == 0 {
		return snapshot, nil
	}

	result := uc.rebuild(record)
	uc.sessions.Add(id, result)
	snapshot.Result = result
	return snapshot, nil
}

func (uc *BatchUsecase) rebuild(record *model.BatchRecord) *model.BatchResult {
	result := &model.BatchResult{
		ID:        record.ID,
		CreatedAt: record.CreatedAt,
		Entries:   make([]model.BatchEntry, 0, len(record.Entries)),
	}
	for _, er := range record.Entries {
		entry := model.BatchEntry{
			Position:     er.Position,
			DocumentName: er.DocumentName,
			Status:       model.EntryStatus(er.Status),
			Reason:       er.Reason,
		}
		switch entry.Status {
		case model.EntryCompleted:
			entry.Result = model.EvaluationOk(er.RawPayload, er.ConversationToken, er.MessageToken)
			normalized := uc.normalizer.Normalize(er.RawPayload)
			entry.Analysis = &normalized
		case model.EntrySubmissionFailed:
			entry.Result = model.EvaluationErr(er.Reason)
		}
		result.Entries = append(result.Entries, entry)
	}
	return result
}

func toEntryRecords(result *model.BatchResult) []model.EntryRecord {
	records := make([]model.EntryRecord, 0, result.Len())
	for _, e := range result.Entries {
		records = append(records, model.EntryRecord{
			BatchID:           result.ID,
			Position:          e.Position,
			DocumentName:      e.DocumentName,
			Status:            string(e.Status),
			Reason:            e.Reason,
			RawPayload:        e.Result.RawPayload,
			ConversationToken: e.Result.ConversationToken,
			MessageToken:      e.Result.MessageToken,
		})
	}
	return records
}

func (uc *BatchUsecase) List(ctx context.Context, page, pageSize int) ([]model.BatchRecord, *response.Pagination, error) {
	if uc.batchRepo == nil {
		return nil, nil, errNoBatchStore
	}
	page, pageSize = response.ClampPage(page, pageSize)

	batches, total, err := uc.batchRepo.ListBatches(ctx, page, pageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, response.NewPagination(page, pageSize, len(batches), total), nil
}

// Feedback forwards a rating of one entry's evaluation to the engine.
func (uc *BatchUsecase) Feedback(ctx context.Context, id uuid.UUID, position int, positive bool) error {
	snapshot, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	if !snapshot.Readable() {
		return snapshot.Unavailable()
	}
	entry, err := snapshot.Result.Entry(position)
	if err != nil {
		return err
	}
	if entry.Result.ConversationToken == "" || entry.Result.MessageToken == "" {
		return model.ErrNoConversation
	}

	return uc.engine.SubmitFeedback(ctx, model.FeedbackEvent{
		ConversationToken: entry.Result.ConversationToken,
		MessageToken:      entry.Result.MessageToken,
		Polarity:          model.Polarity(positive),
	})
}
