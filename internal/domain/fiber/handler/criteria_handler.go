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

const documentField = "document"

type CriteriaHandler struct {
	uc            usecase.CriteriaUsecaseInterface
	maxUploadSize int64
}

func NewCriteriaHandler(uc usecase.CriteriaUsecaseInterface, maxUploadSize int64) *CriteriaHandler {
	return &CriteriaHandler{uc: uc, maxUploadSize: maxUploadSize}
}

func (h *CriteriaHandler) RegisterRoutes(app *fiber.App) {
	criteria := app.Group("/criteria")
	criteria.Post("/preview", h.Preview)
	criteria.Post("/", middleware.RateLimiter(5, time.Minute), h.Publish)
	criteria.Get("/search", h.Search)
}

func (h *CriteriaHandler) uploadedDocument(c *fiber.Ctx) (model.Document, error) {
	file, err := c.FormFile(documentField)
	if err != nil {
		return model.Document{}, util.NewFormError("document file is required", map[string]string{documentField: "required"})
	}
	return readDocument(documentField, file, h.maxUploadSize)
}

func (h *CriteriaHandler) Preview(c *fiber.Ctx) error {
	doc, err := h.uploadedDocument(c)
	if err != nil {
		return fail(c, "cannot read uploaded document", err)
	}

	text, payload, err := h.uc.Preview(doc)
	if err != nil {
		return fail(c, "failed to extract job criteria", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success preview job criteria",
		Data:    dto.CriteriaPreviewDTO{Text: text, Criteria: payload},
	})
}

func (h *CriteriaHandler) Publish(c *fiber.Ctx) error {
	doc, err := h.uploadedDocument(c)
	if err != nil {
		return fail(c, "cannot read uploaded document", err)
	}

	criteria, err := h.uc.Publish(c.UserContext(), c.FormValue("title"), doc)
	if err != nil {
		return fail(c, "failed to publish job criteria", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success publish job criteria",
		Data:    dto.NewCriteriaDTO(criteria, h.uc.PublicURL(criteria.ObjectKey)),
	})
}

func (h *CriteriaHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fail(c, "q is required", util.NewFormError("q is required", map[string]string{"q": "required"}))
	}

	found, err := h.uc.Search(c.UserContext(), query, c.QueryInt("top_k", 5))
	if err != nil {
		return fail(c, "failed to search job criteria", err)
	}

	data := make([]dto.CriteriaDTO, 0, len(found))
	for i := range found {
		data = append(data, dto.NewCriteriaDTO(&found[i], h.uc.PublicURL(found[i].ObjectKey)))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success search job criteria",
		Data:    data,
	})
}
