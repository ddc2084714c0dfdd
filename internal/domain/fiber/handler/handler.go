package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/fadilmartias/cv-batch-analyzer/internal/usecase"
	"github.com/fadilmartias/cv-batch-analyzer/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	var formErr *util.FormError
	switch {
	case errors.As(err, &formErr):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrBatchNotFound), errors.Is(err, model.ErrEntryNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrBatchProcessing), errors.Is(err, model.ErrBatchFailed), errors.Is(err, model.ErrNoConversation):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrEmptyBatch):
		return fiber.StatusBadRequest
	case errors.Is(err, usecase.ErrCriteriaUnreadable):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrStorageNotConfigured), errors.Is(err, usecase.ErrEmbeddingNotConfigured):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, message string, err error) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    errorStatus(err),
		Message: message,
	}, err)
}

func parseBatchID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, util.NewFormError("invalid batch id", map[string]string{"id": "must be a UUID"})
	}
	return id, nil
}

func parsePosition(c *fiber.Ctx) (int, error) {
	position, err := strconv.Atoi(c.Params("position"))
	if err != nil || position < 0 {
		return 0, util.NewFormError("invalid entry position", map[string]string{"position": "must be a non-negative integer"})
	}
	return position, nil
}

// readDocument loads one uploaded file into memory, enforcing the size limit.
func readDocument(field string, file *multipart.FileHeader, maxSize int64) (model.Document, error) {
	if file.Size > maxSize {
		return model.Document{}, util.NewFormError(
			fmt.Sprintf("%s file size is too large (max %dMB)", field, maxSize/(1024*1024)),
			map[string]string{field: file.Filename},
		)
	}

	f, err := file.Open()
	if err != nil {
		return model.Document{}, fmt.Errorf("open %s: %w", file.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return model.Document{}, fmt.Errorf("read %s: %w", file.Filename, err)
	}
	return model.Document{Name: file.Filename, Content: content}, nil
}
