package dto

import (
	"encoding/json"
	"time"

	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/google/uuid"
)

type CriteriaPreviewDTO struct {
	Text     string          `json:"text"`
	Criteria json.RawMessage `json:"criteria"`
}

type CriteriaDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url,omitempty"`
	Embedded  bool      `json:"embedded"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCriteriaDTO(c *model.JobCriteria, url string) CriteriaDTO {
	return CriteriaDTO{
		ID:        c.ID,
		Title:     c.Title,
		ObjectKey: c.ObjectKey,
		URL:       url,
		Embedded:  c.Embedding != nil,
		CreatedAt: c.CreatedAt,
	}
}
