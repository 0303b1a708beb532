package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/rusdhi-de/clinic-api/pkg/errors"
)

// RespondError renders a service error as the standard envelope, mapping
// application error codes to HTTP statuses. The error is also attached to
// the context so the error middleware can log it.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		return
	}

	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}
