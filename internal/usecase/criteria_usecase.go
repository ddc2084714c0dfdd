package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/repository"
	"github.com/fadilmartias/cv-batch-analyzer/internal/service"
	"github.com/fadilmartias/cv-batch-analyzer/internal/util"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const criteriaContentType = "application/json"

var (
	ErrStorageNotConfigured   = errors.New("criteria storage is not configured")
	ErrEmbeddingNotConfigured = errors.New("criteria embeddings are not configured")
	ErrCriteriaUnreadable     = errors.New("job criteria document is unreadable")
)

type criteriaPayload struct {
	JobCriteriaText string `json:"job_criteria_text"`
}

type CriteriaUsecase struct {
	extractor  util.ExtractorInterface
	storage    service.StorageServiceInterface
	repo       repository.CriteriaRepositoryInterface
	embedder   service.EmbedderInterface
	objectName string
	logger     *zap.Logger
}

// NewCriteriaUsecase accepts a nil storage or embedder; publishing then fails
// or skips the embedding respectively.
func NewCriteriaUsecase(
	extractor util.ExtractorInterface,
	storage service.StorageServiceInterface,
	repo repository.CriteriaRepositoryInterface,
	embedder service.EmbedderInterface,
	objectName string,
	log *zap.Logger,
) *CriteriaUsecase {
	return &CriteriaUsecase{
		extractor:  extractor,
		storage:    storage,
		repo:       repo,
		embedder:   embedder,
		objectName: objectName,
		logger:     logger.OrNop(log),
	}
}

// Preview extracts the document and renders the JSON that Publish would upload.
func (uc *CriteriaUsecase) Preview(doc model.Document) (string, []byte, error) {
	outcome := uc.extractor.Extract(doc)
	if outcome.Failed {
		return "", nil, fmt.Errorf("%w: %s", ErrCriteriaUnreadable, outcome.Reason)
	}
	if outcome.Text == "" {
		return "", nil, fmt.Errorf("%w: no text", ErrCriteriaUnreadable)
	}

	payload, err := json.MarshalIndent(criteriaPayload{JobCriteriaText: outcome.Text}, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode job criteria: %w", err)
	}
	return outcome.Text, payload, nil
}

// Publish overwrites the criteria object read by the evaluation engine and
// records the published text.
func (uc *CriteriaUsecase) Publish(ctx context.Context, title string, doc model.Document) (*model.JobCriteria, error) {
	if uc.storage == nil {
		return nil, ErrStorageNotConfigured
	}
	text, payload, err := uc.Preview(doc)
	if err != nil {
		return nil, err
	}

	if err := uc.storage.Upload(ctx, uc.objectName, payload, criteriaContentType); err != nil {
		return nil, fmt.Errorf("publish job criteria: %w", err)
	}

	if title == "" {
		title = doc.Name
	}
	criteria := &model.JobCriteria{
		Title:     title,
		Content:   text,
		ObjectKey: uc.objectName,
	}

	if uc.embedder != nil && uc.embedder.Configured() {
		embedding, err := uc.embedder.GenerateEmbedding(ctx, text)
		if err != nil {
			uc.logger.Warn("job criteria embedding failed, saving without it", zap.Error(err))
		} else {
			vector := pgvector.NewVector(embedding)
			criteria.Embedding = &vector
		}
	}

	if uc.repo != nil {
		if err := uc.repo.Create(ctx, criteria); err != nil {
			return nil, fmt.Errorf("save job criteria: %w", err)
		}
	}

	uc.logger.Info("job criteria published",
		zap.String("title", title),
		zap.String("object", uc.objectName),
		zap.Bool("embedded", criteria.Embedding != nil),
	)
	return criteria, nil
}

// Search returns the published criteria closest to query.
func (uc *CriteriaUsecase) Search(ctx context.Context, query string, topK int) ([]model.JobCriteria, error) {
	if uc.embedder == nil || !uc.embedder.Configured() || uc.repo == nil {
		return nil, ErrEmbeddingNotConfigured
	}
	if topK <= 0 {
		topK = 5
	}

	embedding, err := uc.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return uc.repo.Search(ctx, pgvector.NewVector(embedding), topK)
}

func (uc *CriteriaUsecase) PublicURL(objectKey string) string {
	if uc.storage == nil || objectKey == "" {
		return ""
	}
	return uc.storage.PublicURL(objectKey)
}
