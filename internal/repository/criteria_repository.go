package repository

import (
	"context"

	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CriteriaRepositoryInterface interface {
	Create(ctx context.Context, criteria *model.JobCriteria) error
	Search(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.JobCriteria, error)
}

type CriteriaRepository struct {
	db *gorm.DB
}

func NewCriteriaRepository(db *gorm.DB) *CriteriaRepository {
	return &CriteriaRepository{db}
}

func (r *CriteriaRepository) Create(ctx context.Context, criteria *model.JobCriteria) error {
	return r.db.WithContext(ctx).Create(criteria).Error
}

// Search orders published criteria by euclidean distance; rows without an embedding are skipped.
func (r *CriteriaRepository) Search(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.JobCriteria, error) {
	var criteria []model.JobCriteria
	err := r.db.WithContext(ctx).Raw(`
        SELECT *
        FROM job_criteria
        WHERE embedding IS NOT NULL
        ORDER BY embedding <-> ?
        LIMIT ?
    `, embedding, topK).Scan(&criteria).Error
	return criteria, err
}
