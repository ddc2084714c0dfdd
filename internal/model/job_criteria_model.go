package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type JobCriteria struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title     string           `json:"title"`
	Content   string           `gorm:"type:text" json:"content"`
	ObjectKey string           `gorm:"type:text" json:"object_key"`
	Embedding *pgvector.Vector `gorm:"type:vector(3072)" json:"-"` // nil when embeddings are not configured
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (j *JobCriteria) TableName() string {
	return "job_criteria"
}
