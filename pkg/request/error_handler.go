package request

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursetrack-server-go/pkg/response"
)

// Handler returns a middleware that turns errors attached with c.Error into envelope responses.
func Handler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := errors.Join(errorsFromContext(c.Errors)...)
		if err == nil {
			return
		}

		status, message, code := classify(err)
		response.AppError(logger, c, apperrors.Wrap(err, message, status, code))
	}
}

func errorsFromContext(errs []*gin.Error) []error {
	list := make([]error, 0, len(errs))
	for _, item := range errs {
		if item != nil && item.Err != nil {
			list = append(list, item.Err)
		}
	}
	return list
}

// classify is only consulted for errors that are not already AppErrors.
func classify(err error) (int, string, apperrors.ErrorCode) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Resource not found", apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "Resource already exists", apperrors.ErrConflict
	case strings.Contains(err.Error(), "invalid input syntax for type uuid"):
		return http.StatusBadRequest, "Invalid ID format", apperrors.ErrValidation
	}

	return http.StatusInternalServerError, "Internal server error", apperrors.ErrInternal
}
