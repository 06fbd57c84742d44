package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/internal/application"
	"github.com/oksasatya/go-course-platform/internal/interface/middleware"
	"github.com/oksasatya/go-course-platform/pkg/response"
)

type CourseHandler struct {
	Svc    *application.CourseService
	Logger *logrus.Logger
}

func NewCourseHandler(svc *application.CourseService, logger *logrus.Logger) *CourseHandler {
	return &CourseHandler{Svc: svc, Logger: logger}
}

func (h *CourseHandler) Browse(c *gin.Context) {
	var q application.CourseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidPayload(c, err)
		return
	}
	page, err := h.Svc.Browse(c.Request.Context(), q)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, page.Items, "courses", gin.H{"page": page.Page, "size": page.Size, "count": len(page.Items)})
}

func (h *CourseHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, course, "course", nil)
}

// Create POST /api/courses (Company or Admin)
func (h *CourseHandler) Create(c *gin.Context) {
	var req application.CreateCourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	course, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, course, "course created", nil)
}
