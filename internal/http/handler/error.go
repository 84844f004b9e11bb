package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"blogapi/internal/http/middleware"
	"blogapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// writeError writes the error envelope. code is machine readable; message is
// shown to clients and never carries internal error text.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details map[string]string) error {
	res := errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

func writeValidation(c *fiber.Ctx, details map[string]string) error {
	return writeErrorDetails(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", details)
}

func writeInvalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

// respondError translates service errors into the error envelope. resource
// names the entity in not found messages.
func respondError(c *fiber.Ctx, err error, resource string) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return writeValidation(c, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", resource+" not found")
	case errors.Is(err, service.ErrParentNotFound):
		return writeValidation(c, map[string]string{"parent": service.ErrParentNotFound.Error()})
	case errors.Is(err, service.ErrInvalidParent):
		return writeValidation(c, map[string]string{"parent": service.ErrInvalidParent.Error()})
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

type statusError struct {
	code    string
	message string
}

// frameworkErrors covers the statuses Fiber itself produces; anything else
// is reported as an internal error.
var frameworkErrors = map[int]statusError{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:              {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {"PAYLOAD_TOO_LARGE", "request body too large"},
	fiber.StatusUnsupportedMediaType:  {"UNSUPPORTED_MEDIA_TYPE", "unsupported media type"},
	fiber.StatusRequestTimeout:        {"REQUEST_TIMEOUT", "request timeout"},
}

// ErrorHandler returns the Fiber global error handler. It renders every
// error that escapes a handler in the error envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			if se, ok := frameworkErrors[e.Code]; ok {
				return writeError(c, e.Code, se.code, se.message)
			}
		}
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
