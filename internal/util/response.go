package util

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/fadilmartias/cv-batch-analyzer/internal/config"
	"github.com/fadilmartias/cv-batch-analyzer/internal/response"
	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every API response. Field order is the wire order.
type Envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Meta       any                  `json:"meta,omitempty"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
	Errors     map[string]string    `json:"errors,omitempty"`
	Details    any                  `json:"details,omitempty"`
	DevMessage string               `json:"dev_message,omitempty"`
	Trace      string               `json:"trace,omitempty"`
}

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
	Meta       any
}

type ErrorResponseFormat struct {
	Code       int
	Message    string
	DevMessage string
	Details    any
	Trace      string
}

// FormError is a client input problem; Errors maps field names to reasons.
type FormError struct {
	Errors  map[string]string
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("form error: %s", e.Message)
}

func NewFormError(message string, errors map[string]string) *FormError {
	return &FormError{
		Message: message,
		Errors:  errors,
	}
}

func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(Envelope{
		Success:    true,
		Message:    params.Message,
		Meta:       params.Meta,
		Pagination: params.Pagination,
		Data:       params.Data,
	})
}

// ErrorResponse writes the error envelope. A *FormError in err supplies the
// message and field errors. Developer output (dev_message, trace) is
// omitted in production.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, err ...error) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusInternalServerError
	}
	body := Envelope{
		Message: params.Message,
		Details: params.Details,
	}

	var cause error
	if len(err) > 0 {
		cause = err[0]
	}
	var formErr *FormError
	if errors.As(cause, &formErr) {
		body.Message = formErr.Message
		body.Errors = formErr.Errors
	}
	if body.Message == "" {
		body.Message = fiber.ErrInternalServerError.Message
	}

	if config.LoadAppConfig().Env != "production" {
		body.DevMessage = params.DevMessage
		if body.DevMessage == "" && cause != nil {
			body.DevMessage = cause.Error()
		}
		body.Trace = params.Trace
		if body.Trace == "" && code >= fiber.StatusInternalServerError {
			body.Trace = string(debug.Stack())
		}
	}
	return c.Status(code).JSON(body)
}
