package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
	"github.com/sensorbridge/sensorbridge/internal/services"
)

// ErrorHandler returns a custom error handler middleware. Service errors
// keep their code and map to a matching HTTP status; fiber errors pass
// through; anything else becomes a generic 500.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
		}

		var serr *services.ServiceError
		var ferr *fiber.Error
		switch {
		case errors.As(err, &serr):
			code = statusForCode(serr.Code)
			detail.Code = serr.Code
			detail.Message = serr.Message
			detail.Details = serr.Details
		case errors.As(err, &ferr):
			code = ferr.Code
			detail.Message = ferr.Message
		}

		logger.Error("Request error",
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(models.ErrorResponse{Error: detail})
	}
}

func statusForCode(code string) int {
	switch code {
	case services.CodeInvalidAction, services.CodeInvalidQuery:
		return fiber.StatusBadRequest
	case services.CodeDeviceNotFound:
		return fiber.StatusNotFound
	case services.CodeBrokerUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
