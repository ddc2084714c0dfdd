package model

import "errors"

var (
	ErrBatchNotFound   = errors.New("batch not found")
	ErrEntryNotFound   = errors.New("batch entry not found")
	ErrNoConversation  = errors.New("entry has no conversation to give feedback on")
	ErrBatchProcessing = errors.New("batch is still processing")
	ErrBatchFailed     = errors.New("batch processing failed")
	ErrEmptyBatch      = errors.New("batch has no documents")
)
