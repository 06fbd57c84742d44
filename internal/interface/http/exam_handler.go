package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/internal/application"
	"github.com/oksasatya/go-course-platform/internal/interface/middleware"
	"github.com/oksasatya/go-course-platform/pkg/response"
)

type ExamHandler struct {
	Svc    *application.ExamService
	Logger *logrus.Logger
}

func NewExamHandler(svc *application.ExamService, logger *logrus.Logger) *ExamHandler {
	return &ExamHandler{Svc: svc, Logger: logger}
}

type attemptRequest struct {
	Score *float64 `json:"score" binding:"required,min=0,max=100"`
}

type attemptsQuery struct {
	Page int `form:"page" binding:"omitempty,min=1"`
	Size int `form:"size" binding:"omitempty,min=1,max=50"`
}

// RecordAttempt POST /api/exams/:id/attempts (auth required)
func (h *ExamHandler) RecordAttempt(c *gin.Context) {
	var req attemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	attempt, err := h.Svc.RecordAttempt(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), *req.Score)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, attempt, "attempt recorded", nil)
}

// Attempts GET /api/exams/attempts (auth required)
func (h *ExamHandler) Attempts(c *gin.Context) {
	var q attemptsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidPayload(c, err)
		return
	}
	items, err := h.Svc.Attempts(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), q.Page, q.Size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, items, "attempts", gin.H{"count": len(items)})
}
