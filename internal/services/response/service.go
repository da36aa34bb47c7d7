// Package response renders success and error payloads for the HTTP layer
// and maps pipeline errors onto HTTP statuses.
package response

import (
	"fmt"
	"time"

	"github.com/grounded-ai/groundedqa/internal/models"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Service renders API responses.
type Service struct{}

// NewService creates a response service.
func NewService() *Service {
	return &Service{}
}

// ErrorResponse is the standard API error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error taxonomy fields.
type ErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Success sends a 200 OK response with the provided data.
func (s *Service) Success(c *fiber.Ctx, data any) error {
	return c.JSON(data)
}

// HandleError maps a pipeline error to an HTTP response. Rate-limit denials
// carry a Retry-After header rounded up to whole seconds.
func (s *Service) HandleError(c *fiber.Ctx, err error, requestID string) error {
	appErr := models.SanitizeError(err)

	if appErr.Type == models.ErrorTypeRateLimit && appErr.RetryAfter > 0 {
		seconds := int(appErr.RetryAfter / time.Second)
		if appErr.RetryAfter%time.Second > 0 {
			seconds++
		}
		c.Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	status := appErr.GetStatusCode()
	if status >= 500 {
		fiberlog.Errorf("[%s] request failed: %v", requestID, err)
	} else {
		fiberlog.Warnf("[%s] request rejected: %v", requestID, err)
	}

	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorDetail{
			Message:   appErr.Message,
			Type:      string(appErr.Type),
			Code:      appErr.Code,
			RequestID: requestID,
		},
	})
}

// BadRequest sends a 400 with a validation-style body.
func (s *Service) BadRequest(c *fiber.Ctx, message, requestID string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: ErrorDetail{
			Message:   message,
			Type:      string(models.ErrorTypeValidation),
			RequestID: requestID,
		},
	})
}
