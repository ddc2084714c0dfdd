package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fadilmartias/cv-batch-analyzer/internal/dto"
	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/response"
	"github.com/fadilmartias/cv-batch-analyzer/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBatchUsecase struct {
	submitted   []model.Document
	submitID    uuid.UUID
	submitErr   error
	snapshots   map[uuid.UUID]*model.BatchSnapshot
	feedbackErr error
	feedback    []bool
}

func (f *fakeBatchUsecase) RunBatch(context.Context, []model.Document, usecase.ProgressFunc) *model.BatchResult {
	return &model.BatchResult{}
}

func (f *fakeBatchUsecase) Submit(_ context.Context, docs []model.Document) (uuid.UUID, error) {
	f.submitted = docs
	return f.submitID, f.submitErr
}

func (f *fakeBatchUsecase) Get(_ context.Context, id uuid.UUID) (*model.BatchSnapshot, error) {
	s, ok := f.snapshots[id]
	if !ok {
		return nil, model.ErrBatchNotFound
	}
	return s, nil
}

func (f *fakeBatchUsecase) List(_ context.Context, page, pageSize int) ([]model.BatchRecord, *response.Pagination, error) {
	records := []model.BatchRecord{{ID: uuid.New(), Status: model.BatchStatusCompleted, Progress: 1, DocumentCount: 2}}
	return records, &response.Pagination{Page: page, PageSize: pageSize, TotalItems: 1, TotalPages: 1, From: 1, To: 1}, nil
}

func (f *fakeBatchUsecase) Feedback(_ context.Context, _ uuid.UUID, _ int, positive bool) error {
	f.feedback = append(f.feedback, positive)
	return f.feedbackErr
}

type fakeSynthesis struct {
	synthesized int
	regenerated int
}

func (f *fakeSynthesis) Synthesize(_ context.Context, batch *model.BatchResult) model.ComparativeSummary {
	f.synthesized++
	return model.ComparativeSummary{Content: "ranking", Status: model.SummaryGenerated, Documents: batch.Len()}
}

func (f *fakeSynthesis) Regenerate(ctx context.Context, batch *model.BatchResult) model.ComparativeSummary {
	f.regenerated++
	return f.Synthesize(ctx, batch)
}

func (f *fakeSynthesis) Invalidate(uuid.UUID) {}

type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       json.RawMessage      `json:"data"`
	Details    json.RawMessage      `json:"details"`
	Pagination *response.Pagination `json:"pagination"`
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp.StatusCode, env
}

type upload struct {
	field, name, content string
}

func multipartRequest(t *testing.T, target string, files []upload, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func completedSnapshot(id uuid.UUID) *model.BatchSnapshot {
	score := 80
	return &model.BatchSnapshot{
		ID:            id,
		Status:        model.BatchStatusCompleted,
		Progress:      1,
		DocumentCount: 2,
		Result: &model.BatchResult{
			ID: id,
			Entries: []model.BatchEntry{
				{
					Position:     0,
					DocumentName: "alice.pdf",
					Status:       model.EntryCompleted,
					Result:       model.EvaluationOk("raw", "thread-1", "msg-1"),
					Analysis: &model.NormalizedAnalysis{
						Shape:       model.ShapeTurnArray,
						Sections:    []model.Section{{Name: "summary", Text: "Match: 80%"}},
						MatchScore:  &score,
						ScoreSource: "percentage",
					},
				},
				{Position: 1, DocumentName: "x.doc", Status: model.EntryExtractionFailed, Reason: "unsupported format: .doc"},
			},
		},
	}
}

func newBatchApp(uc *fakeBatchUsecase, synth *fakeSynthesis) *fiber.App {
	app := fiber.New()
	NewBatchHandler(uc, synth, 64).RegisterRoutes(app)
	return app
}

func TestSubmitBatch(t *testing.T) {
	uc := &fakeBatchUsecase{submitID: uuid.New()}
	app := newBatchApp(uc, &fakeSynthesis{})

	req := multipartRequest(t, "/batches", []upload{
		{field: "documents", name: "alice.txt", content: "alice"},
		{field: "documents", name: "bob.pdf", content: "%PDF"},
	}, nil)
	status, env := doRequest(t, app, req)

	assert.Equal(t, fiber.StatusAccepted, status)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"id":"`+uc.submitID.String()+`","status":"processing"}`, string(env.Data))
	require.Len(t, uc.submitted, 2)
	assert.Equal(t, "alice.txt", uc.submitted[0].Name)
	assert.Equal(t, []byte("alice"), uc.submitted[0].Content)
	assert.Equal(t, "bob.pdf", uc.submitted[1].Name)
}

func TestSubmitBatchValidation(t *testing.T) {
	uc := &fakeBatchUsecase{submitID: uuid.New()}
	app := newBatchApp(uc, &fakeSynthesis{})

	status, env := doRequest(t, app, multipartRequest(t, "/batches", nil, map[string]string{"note": "x"}))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)

	tooLarge := multipartRequest(t, "/batches", []upload{
		{field: "documents", name: "big.txt", content: strings.Repeat("a", 65)},
	}, nil)
	status, env = doRequest(t, app, tooLarge)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, env.Message, "too large")
	assert.Nil(t, uc.submitted)
}

func TestGetBatch(t *testing.T) {
	id := uuid.New()
	uc := &fakeBatchUsecase{snapshots: map[uuid.UUID]*model.BatchSnapshot{id: completedSnapshot(id)}}
	app := newBatchApp(uc, &fakeSynthesis{})

	status, env := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/batches/"+id.String(), nil))
	require.Equal(t, fiber.StatusOK, status)

	var data struct {
		Status  string `json:"status"`
		Entries []struct {
			DocumentName string          `json:"document_name"`
			Status       string          `json:"status"`
			Reason       string          `json:"reason"`
			MatchScore   *int            `json:"match_score"`
			Sections     []model.Section `json:"sections"`
			MessageToken string          `json:"message_token"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "completed", data.Status)
	require.Len(t, data.Entries, 2)
	require.NotNil(t, data.Entries[0].MatchScore)
	assert.Equal(t, 80, *data.Entries[0].MatchScore)
	assert.Equal(t, "msg-1", data.Entries[0].MessageToken)
	assert.Equal(t, "summary", data.Entries[0].Sections[0].Name)
	assert.Equal(t, "extraction_failed", data.Entries[1].Status)
	assert.Equal(t, "unsupported format: .doc", data.Entries[1].Reason)
	assert.Nil(t, data.Entries[1].MatchScore)
}

func TestGetBatchErrors(t *testing.T) {
	app := newBatchApp(&fakeBatchUsecase{}, &fakeSynthesis{})

	status, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/batches/not-a-uuid", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/batches/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestListBatches(t *testing.T) {
	app := newBatchApp(&fakeBatchUsecase{}, &fakeSynthesis{})

	status, env := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/batches?page=2&page_size=5", nil))
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Page)
	assert.Equal(t, 5, env.Pagination.PageSize)
}

func TestSummaryEndpoints(t *testing.T) {
	id := uuid.New()
	processing := uuid.New()
	uc := &fakeBatchUsecase{snapshots: map[uuid.UUID]*model.BatchSnapshot{
		id:         completedSnapshot(id),
		processing: {ID: processing, Status: model.BatchStatusProcessing, Progress: 0.5},
	}}
	synth := &fakeSynthesis{}
	app := newBatchApp(uc, synth)

	status, env := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/batches/"+id.String()+"/summary", nil))
	require.Equal(t, fiber.StatusOK, status)
	var summary model.ComparativeSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, model.SummaryGenerated, summary.Status)
	assert.Equal(t, 2, summary.Documents)

	status, _ = doRequest(t, app, httptest.NewRequest(http.MethodPost, "/batches/"+id.String()+"/summary/regenerate", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, synth.regenerated)

	status, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/batches/"+processing.String()+"/summary", nil))
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestSummaryOfFailedBatch(t *testing.T) {
	lost := uuid.New()
	kept := uuid.New()
	readable := completedSnapshot(kept)
	readable.Status = model.BatchStatusFailed
	readable.FailureReason = "saving results failed: db down"
	uc := &fakeBatchUsecase{snapshots: map[uuid.UUID]*model.BatchSnapshot{
		lost: {ID: lost, Status: model.BatchStatusFailed, FailureReason: "processing panicked: boom", Progress: 0.5},
		kept: readable,
	}}
	app := newBatchApp(uc, &fakeSynthesis{})

	status, env := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/batches/"+lost.String()+"/summary", nil))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, env.Message, "processing panicked: boom")

	status, _ = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/batches/"+kept.String()+"/summary", nil))
	assert.Equal(t, fiber.StatusOK, status)

	status, env = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/batches/"+lost.String(), nil))
	require.Equal(t, fiber.StatusOK, status)
	var batch dto.BatchDTO
	require.NoError(t, json.Unmarshal(env.Data, &batch))
	assert.Equal(t, model.BatchStatusFailed, batch.Status)
	assert.Equal(t, "processing panicked: boom", batch.FailureReason)
}

func TestFeedbackEndpoint(t *testing.T) {
	id := uuid.New()
	uc := &fakeBatchUsecase{}
	app := newBatchApp(uc, &fakeSynthesis{})

	feedback := func(position, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/batches/"+id.String()+"/entries/"+position+"/feedback", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		status, _ := doRequest(t, app, req)
		return status
	}

	assert.Equal(t, fiber.StatusOK, feedback("0", `{"positive":true}`))
	assert.Equal(t, []bool{true}, uc.feedback)

	assert.Equal(t, fiber.StatusBadRequest, feedback("0", `{}`))
	assert.Equal(t, fiber.StatusBadRequest, feedback("-1", `{"positive":false}`))

	uc.feedbackErr = model.ErrNoConversation
	assert.Equal(t, fiber.StatusConflict, feedback("1", `{"positive":false}`))

	uc.feedbackErr = model.ErrEntryNotFound
	assert.Equal(t, fiber.StatusNotFound, feedback("9", `{"positive":false}`))
}
