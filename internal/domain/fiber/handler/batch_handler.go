package handler

import (
	"time"

	"github.com/fadilmartias/cv-batch-analyzer/internal/dto"
	"github.com/fadilmartias/cv-batch-analyzer/internal/middleware"
	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/usecase"
	"github.com/fadilmartias/cv-batch-analyzer/internal/util"
	"github.com/gofiber/fiber/v2"
)

const documentsField = "documents"

type BatchHandler struct {
	uc            usecase.BatchUsecaseInterface
	synthesis     usecase.SynthesisUsecaseInterface
	maxUploadSize int64
}

func NewBatchHandler(uc usecase.BatchUsecaseInterface, synthesis usecase.SynthesisUsecaseInterface, maxUploadSize int64) *BatchHandler {
	return &BatchHandler{uc: uc, synthesis: synthesis, maxUploadSize: maxUploadSize}
}

func (h *BatchHandler) RegisterRoutes(app *fiber.App) {
	batches := app.Group("/batches")
	batches.Post("/", middleware.RateLimiter(5, time.Minute), h.Submit)
	batches.Get("/", h.List)
	batches.Get("/:id", h.Get)
	batches.Get("/:id/summary", h.Summary)
	batches.Post("/:id/summary/regenerate", h.RegenerateSummary)
	batches.Post("/:id/entries/:position/feedback", h.Feedback)
}

func (h *BatchHandler) Submit(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, "documents are required", util.NewFormError("documents are required", map[string]string{documentsField: "multipart upload expected"}))
	}

	files := append(form.File[documentsField], form.File[documentsField+"[]"]...)
	if len(files) == 0 {
		return fail(c, "documents are required", util.NewFormError("documents are required", map[string]string{documentsField: "at least one file is required"}))
	}

	docs := make([]model.Document, 0, len(files))
	for _, file := range files {
		doc, err := readDocument(documentsField, file, h.maxUploadSize)
		if err != nil {
			return fail(c, "cannot read uploaded document", err)
		}
		docs = append(docs, doc)
	}

	id, err := h.uc.Submit(c.UserContext(), docs)
	if err != nil {
		return fail(c, "failed to submit batch", err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Success submit batch",
		Data:    dto.BatchSubmittedDTO{ID: id, Status: model.BatchStatusProcessing},
	})
}

func (h *BatchHandler) List(c *fiber.Ctx) error {
	batches, pagination, err := h.uc.List(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return fail(c, "failed to list batches", err)
	}

	data := make([]dto.BatchListItemDTO, 0, len(batches))
	for _, b := range batches {
		data = append(data, dto.NewBatchListItemDTO(b))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list batches",
		Data:       data,
		Pagination: pagination,
	})
}

func (h *BatchHandler) Get(c *fiber.Ctx) error {
	snapshot, err := h.snapshot(c)
	if err != nil {
		return fail(c, "batch not found", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get batch",
		Data:    dto.NewBatchDTO(snapshot),
	})
}

func (h *BatchHandler) Summary(c *fiber.Ctx) error {
	return h.summary(c, false)
}

func (h *BatchHandler) RegenerateSummary(c *fiber.Ctx) error {
	return h.summary(c, true)
}

func (h *BatchHandler) summary(c *fiber.Ctx, regenerate bool) error {
	snapshot, err := h.snapshot(c)
	if err != nil {
		return fail(c, "batch not found", err)
	}
	if !snapshot.Readable() {
		err := snapshot.Unavailable()
		return fail(c, err.Error(), err)
	}

	var summary model.ComparativeSummary
	if regenerate {
		summary = h.synthesis.Regenerate(c.UserContext(), snapshot.Result)
	} else {
		summary = h.synthesis.Synthesize(c.UserContext(), snapshot.Result)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get comparative summary",
		Data:    summary,
	})
}

func (h *BatchHandler) Feedback(c *fiber.Ctx) error {
	id, err := parseBatchID(c)
	if err != nil {
		return fail(c, "invalid batch id", err)
	}
	position, err := parsePosition(c)
	if err != nil {
		return fail(c, "invalid entry position", err)
	}

	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil || req.Positive == nil {
		return fail(c, "positive is required", util.NewFormError("positive is required", map[string]string{"positive": "must be true or false"}))
	}

	if err := h.uc.Feedback(c.UserContext(), id, position, *req.Positive); err != nil {
		return fail(c, "failed to send feedback", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success send feedback",
	})
}

func (h *BatchHandler) snapshot(c *fiber.Ctx) (*model.BatchSnapshot, error) {
	id, err := parseBatchID(c)
	if err != nil {
		return nil, err
	}
	return h.uc.Get(c.UserContext(), id)
}
