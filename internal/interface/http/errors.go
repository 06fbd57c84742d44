package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/internal/application"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
	"github.com/oksasatya/go-course-platform/pkg/response"
	"github.com/oksasatya/go-course-platform/pkg/validation"
)

// fail maps a service error onto the response envelope.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, ve.Kind.Error(), gin.H{"reasons": ve.Reasons})
	case errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrCourseNotFound),
		errors.Is(err, application.ErrExamNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrInvalidScore):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrStorageNotEnabled):
		response.Error[any](c, http.StatusServiceUnavailable, err.Error(), nil)
	case errors.Is(err, application.ErrCallerContract):
		helpers.LogError(logger, "handler called service without caller email", err, logrus.Fields{"path": c.FullPath()})
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	default:
		helpers.LogError(logger, "request failed", err, logrus.Fields{"path": c.FullPath(), "request_id": c.GetString("request_id")})
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

func invalidPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
