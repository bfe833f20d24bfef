package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"stitchlink/internal/services"
	"stitchlink/internal/transport/httpdto"
	stitch_errors "stitchlink/pkg/errors"
)

func respondError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	code := errorCode(err)

	var fieldErr *stitch_errors.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(status, httpdto.NewFieldErrorResponse(err.Error(), code, fieldErr.Field))
		return
	}
	c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, stitch_errors.ErrInvalidInput):
		return "VALIDATION_ERROR"
	case errors.Is(err, stitch_errors.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, stitch_errors.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, stitch_errors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, stitch_errors.ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, stitch_errors.ErrAlreadyExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, stitch_errors.ErrChatClosed):
		return "CHAT_CLOSED"
	default:
		return "INTERNAL_ERROR"
	}
}
