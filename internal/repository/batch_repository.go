package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/response"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchRepositoryInterface interface {
	CreateBatch(ctx context.Context, batch *model.BatchRecord) error
	SaveEntries(ctx context.Context, batchID uuid.UUID, entries []model.EntryRecord) error
	UpdateProgress(ctx context.Context, batchID uuid.UUID, progress float64) error
	MarkCompleted(ctx context.Context, batchID uuid.UUID) error
	MarkFailed(ctx context.Context, batchID uuid.UUID, reason string) error
	FindBatch(ctx context.Context, batchID uuid.UUID) (*model.BatchRecord, error)
	ListBatches(ctx context.Context, page, pageSize int) ([]model.BatchRecord, int64, error)
}

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db}
}

func (r *BatchRepository) CreateBatch(ctx context.Context, batch *model.BatchRecord) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// SaveEntries replaces every entry of the batch in one transaction.
func (r *BatchRepository) SaveEntries(ctx context.Context, batchID uuid.UUID, entries []model.EntryRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", batchID).Delete(&model.EntryRecord{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].BatchID = batchID
		}
		return tx.Create(&entries).Error
	})
}

func (r *BatchRepository) UpdateProgress(ctx context.Context, batchID uuid.UUID, progress float64) error {
	return r.db.WithContext(ctx).
		Model(&model.BatchRecord{}).
		Where("id = ?", batchID).
		Update("progress", progress).Error
}

func (r *BatchRepository) MarkCompleted(ctx context.Context, batchID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.BatchRecord{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"status":   model.BatchStatusCompleted,
			"progress": 1.0,
		}).Error
}

func (r *BatchRepository) MarkFailed(ctx context.Context, batchID uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&model.BatchRecord{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"status":         model.BatchStatusFailed,
			"failure_reason": reason,
		}).Error
}

func (r *BatchRepository) FindBatch(ctx context.Context, batchID uuid.UUID) (*model.BatchRecord, error) {
	var batch model.BatchRecord
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&batch, "id = ?", batchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListBatches returns one page of batches, newest first, without entries.
func (r *BatchRepository) ListBatches(ctx context.Context, page, pageSize int) ([]model.BatchRecord, int64, error) {
	var (
		batches []model.BatchRecord
		total   int64
	)
	db := r.db.WithContext(ctx).Model(&model.BatchRecord{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("created_at DESC").
		Offset(response.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&batches).Error
	return batches, total, err
}
