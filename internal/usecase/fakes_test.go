package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// fakeExtractor treats ".bad" documents as unreadable and returns content verbatim otherwise.
type fakeExtractor struct{}

func (fakeExtractor) Extract(doc model.Document) model.ExtractionOutcome {
	if doc.Format() == ".bad" {
		return model.ExtractionFailed("unsupported format: .bad")
	}
	return model.Extracted(string(doc.Content))
}

// fakeEngine answers with a fixed payload unless the text contains "fail".
type fakeEngine struct {
	mu        sync.Mutex
	payload   string
	requests  []model.EvaluationRequest
	feedbacks []model.FeedbackEvent
	feedErr   error
}

func (e *fakeEngine) Submit(_ context.Context, req model.EvaluationRequest) model.EvaluationResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req)
	if strings.Contains(req.Text, "fail") {
		return model.EvaluationErr("engine chat status: 502 Bad Gateway")
	}
	return model.EvaluationOk(e.payload, req.ConversationToken, "msg-"+req.Identifier)
}

func (e *fakeEngine) SubmitFeedback(_ context.Context, event model.FeedbackEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.feedbacks = append(e.feedbacks, event)
	return e.feedErr
}

type fakeBatchRepo struct {
	mu          sync.Mutex
	batches     map[uuid.UUID]*model.BatchRecord
	progress    []float64
	done        chan uuid.UUID
	saveErr     error
	completeErr error
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{
		batches: make(map[uuid.UUID]*model.BatchRecord),
		done:    make(chan uuid.UUID, 4),
	}
}

func (r *fakeBatchRepo) CreateBatch(_ context.Context, batch *model.BatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *batch
	r.batches[batch.ID] = &copied
	return nil
}

func (r *fakeBatchRepo) SaveEntries(_ context.Context, batchID uuid.UUID, entries []model.EntryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	b, ok := r.batches[batchID]
	if !ok {
		return model.ErrBatchNotFound
	}
	b.Entries = append([]model.EntryRecord(nil), entries...)
	return nil
}

func (r *fakeBatchRepo) UpdateProgress(_ context.Context, batchID uuid.UUID, progress float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, progress)
	if b, ok := r.batches[batchID]; ok {
		b.Progress = progress
	}
	return nil
}

func (r *fakeBatchRepo) MarkCompleted(_ context.Context, batchID uuid.UUID) error {
	r.mu.Lock()
	if r.completeErr != nil {
		r.mu.Unlock()
		return r.completeErr
	}
	b, ok := r.batches[batchID]
	if ok {
		b.Status = model.BatchStatusCompleted
		b.Progress = 1
	}
	r.mu.Unlock()
	if !ok {
		return model.ErrBatchNotFound
	}
	r.done <- batchID
	return nil
}

func (r *fakeBatchRepo) MarkFailed(_ context.Context, batchID uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[batchID]
	if !ok {
		return model.ErrBatchNotFound
	}
	b.Status = model.BatchStatusFailed
	b.FailureReason = reason
	return nil
}

func (r *fakeBatchRepo) FindBatch(_ context.Context, batchID uuid.UUID) (*model.BatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[batchID]
	if !ok {
		return nil, model.ErrBatchNotFound
	}
	copied := *b
	copied.Entries = append([]model.EntryRecord(nil), b.Entries...)
	return &copied, nil
}

func (r *fakeBatchRepo) ListBatches(_ context.Context, page, pageSize int) ([]model.BatchRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.BatchRecord, 0, len(r.batches))
	for _, b := range r.batches {
		all = append(all, *b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

type fakeSummarizer struct {
	mu         sync.Mutex
	configured bool
	answer     string
	err        error
	calls      int
	lastPrompt string
	lastSystem string
}

func (s *fakeSummarizer) Name() string     { return "azure_openai" }
func (s *fakeSummarizer) Configured() bool { return s.configured }

func (s *fakeSummarizer) Summarize(_ context.Context, system, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastSystem = system
	s.lastPrompt = prompt
	return s.answer, s.err
}

type fakeStorage struct {
	objects     map[string][]byte
	contentType string
	err         error
}

func (s *fakeStorage) Upload(_ context.Context, objectName string, data []byte, contentType string) error {
	if s.err != nil {
		return s.err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[objectName] = data
	s.contentType = contentType
	return nil
}

func (s *fakeStorage) PublicURL(objectName string) string {
	return "http://storage.local/job-criteria/" + objectName
}

type fakeEmbedder struct {
	configured bool
	vector     []float32
	err        error
}

func (e *fakeEmbedder) Configured() bool { return e.configured }

func (e *fakeEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return e.vector, e.err
}

type fakeCriteriaRepo struct {
	saved    []model.JobCriteria
	searched *pgvector.Vector
	topK     int
}

func (r *fakeCriteriaRepo) Create(_ context.Context, criteria *model.JobCriteria) error {
	if criteria.Title == "" {
		return errors.New("title required")
	}
	r.saved = append(r.saved, *criteria)
	return nil
}

func (r *fakeCriteriaRepo) Search(_ context.Context, embedding pgvector.Vector, topK int) ([]model.JobCriteria, error) {
	r.searched = &embedding
	r.topK = topK
	return r.saved, nil
}
