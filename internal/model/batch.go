package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EntryStatus string

const (
	EntryExtractionFailed EntryStatus = "extraction_failed"
	EntrySubmissionFailed EntryStatus = "submission_failed"
	EntryCompleted        EntryStatus = "completed"
)

// BatchEntry is one slot of a batch, in upload order.
type BatchEntry struct {
	Position     int
	DocumentName string
	Status       EntryStatus
	Reason       string
	Result       EvaluationResult
	Analysis     *NormalizedAnalysis
}

func (e BatchEntry) Succeeded() bool {
	return e.Status == EntryCompleted && e.Analysis != nil
}

type BatchResult struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Entries   []BatchEntry
}

func (b *BatchResult) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Entries)
}

func (b *BatchResult) Entry(position int) (*BatchEntry, error) {
	if b == nil || position < 0 || position >= len(b.Entries) {
		return nil, ErrEntryNotFound
	}
	return &b.Entries[position], nil
}

// BatchSnapshot is the stored view of a batch. Result stays nil while the batch
// is processing, and may be nil for a failed batch whose entries were lost.
type BatchSnapshot struct {
	ID            uuid.UUID
	Status        string
	FailureReason string
	Progress      float64
	DocumentCount int
	CreatedAt     time.Time
	Result        *BatchResult
}

func (s *BatchSnapshot) Completed() bool {
	return s != nil && s.Status == BatchStatusCompleted && s.Result != nil
}

// Readable reports whether entries can be served, which includes a failed
// batch whose result is still held in memory.
func (s *BatchSnapshot) Readable() bool {
	return s != nil && s.Status != BatchStatusProcessing && s.Result != nil
}

// Unavailable explains why a snapshot without a result cannot be served.
func (s *BatchSnapshot) Unavailable() error {
	if s.Status == BatchStatusFailed {
		return fmt.Errorf("%w: %s", ErrBatchFailed, s.FailureReason)
	}
	return ErrBatchProcessing
}
