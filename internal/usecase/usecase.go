package usecase

import (
	"context"

	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/response"
	"github.com/google/uuid"
)

type BatchUsecaseInterface interface {
	RunBatch(ctx context.Context, docs []model.Document, progress ProgressFunc) *model.BatchResult
	Submit(ctx context.Context, docs []model.Document) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*model.BatchSnapshot, error)
	List(ctx context.Context, page, pageSize int) ([]model.BatchRecord, *response.Pagination, error)
	Feedback(ctx context.Context, id uuid.UUID, position int, positive bool) error
}

type SynthesisUsecaseInterface interface {
	Synthesize(ctx context.Context, batch *model.BatchResult) model.ComparativeSummary
	Regenerate(ctx context.Context, batch *model.BatchResult) model.ComparativeSummary
	Invalidate(batchID uuid.UUID)
}

type CriteriaUsecaseInterface interface {
	Preview(doc model.Document) (string, []byte, error)
	Publish(ctx context.Context, title string, doc model.Document) (*model.JobCriteria, error)
	Search(ctx context.Context, query string, topK int) ([]model.JobCriteria, error)
	PublicURL(objectKey string) string
}

var (
	_ BatchUsecaseInterface     = (*BatchUsecase)(nil)
	_ SynthesisUsecaseInterface = (*SynthesisUsecase)(nil)
	_ CriteriaUsecaseInterface  = (*CriteriaUsecase)(nil)
)
