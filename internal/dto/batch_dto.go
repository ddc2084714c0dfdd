package dto

import (
	"time"

	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/google/uuid"
)

type BatchSubmittedDTO struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type BatchListItemDTO struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"` // "processing", "completed" or "failed"
	FailureReason string    `json:"failure_reason,omitempty"`
	Progress      float64   `json:"progress"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type BatchDTO struct {
	BatchListItemDTO
	Entries []EntryDTO `json:"entries,omitempty"`
}

type EntryDTO struct {
	Position          int                `json:"position"`
	DocumentName      string             `json:"document_name"`
	Status            model.EntryStatus  `json:"status"`
	Reason            string             `json:"reason,omitempty"`
	Shape             model.PayloadShape `json:"shape,omitempty"`
	Sections          []model.Section    `json:"sections,omitempty"`
	MatchScore        *int               `json:"match_score,omitempty"`
	ScoreSource       string             `json:"score_source,omitempty"`
	ConversationToken string             `json:"conversation_token,omitempty"`
	MessageToken      string             `json:"message_token,omitempty"`
}

type FeedbackRequest struct {
	Positive *bool `json:"positive"`
}

func NewBatchListItemDTO(record model.BatchRecord) BatchListItemDTO {
	return BatchListItemDTO{
		ID:            record.ID,
		Status:        record.Status,
		FailureReason: record.FailureReason,
		Progress:      record.Progress,
		DocumentCount: record.DocumentCount,
		CreatedAt:     record.CreatedAt,
	}
}

func NewBatchDTO(snapshot *model.BatchSnapshot) BatchDTO {
	data := BatchDTO{
		BatchListItemDTO: BatchListItemDTO{
			ID:            snapshot.ID,
			Status:        snapshot.Status,
			FailureReason: snapshot.FailureReason,
			Progress:      snapshot.Progress,
			DocumentCount: snapshot.DocumentCount,
			CreatedAt:     snapshot.CreatedAt,
		},
	}
	if snapshot.Result == nil {
		return data
	}

	data.Entries = make([]EntryDTO, 0, snapshot.Result.Len())
	for _, e := range snapshot.Result.Entries {
		entry := EntryDTO{
			Position:          e.Position,
			DocumentName:      e.DocumentName,
			Status:            e.Status,
			Reason:            e.Reason,
			ConversationToken: e.Result.ConversationToken,
			MessageToken:      e.Result.MessageToken,
		}
		if e.Analysis != nil {
			entry.Shape = e.Analysis.Shape
			entry.Sections = e.Analysis.Sections
			entry.MatchScore = e.Analysis.MatchScore
			entry.ScoreSource = e.Analysis.ScoreSource
		}
		data.Entries = append(data.Entries, entry)
	}
	return data
}
