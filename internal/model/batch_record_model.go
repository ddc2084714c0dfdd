package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
	BatchStatusFailed     = "failed"
)

type BatchRecord struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Status        string        `gorm:"type:varchar(50)" json:"status"` // "processing", "completed" or "failed"
	FailureReason string        `gorm:"type:text" json:"failure_reason,omitempty"`
	Progress      float64       `gorm:"type:float" json:"progress"`
	DocumentCount int           `json:"document_count"`
	Entries       []EntryRecord `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (b *BatchRecord) TableName() string {
	return "evaluation_batches"
}

// EntryRecord stores only the raw payload; the normalized view is recomputed on load.
type EntryRecord struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BatchID           uuid.UUID `gorm:"type:uuid;index:idx_entry_batch_position,unique" json:"batch_id"`
	Position          int       `gorm:"index:idx_entry_batch_position,unique" json:"position"`
	DocumentName      string    `gorm:"type:text" json:"document_name"`
	Status            string    `gorm:"type:varchar(50)" json:"status"`
	Reason            string    `gorm:"type:text" json:"reason"`
	RawPayload        string    `gorm:"type:text" json:"raw_payload"`
	ConversationToken string    `gorm:"type:varchar(100)" json:"conversation_token"`
	MessageToken      string    `gorm:"type:varchar(100)" json:"message_token"`
	CreatedAt         time.Time `json:"created_at"`
}

func (e *EntryRecord) TableName() string {
	return "evaluation_entries"
}
