package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-course-platform/internal/interface/http"
	"github.com/oksasatya/go-course-platform/internal/interface/middleware"
)

type ExamModule struct {
	Handler *handlers.ExamHandler
	Tokens  middleware.TokenParser
}

func NewExamModule(h *handlers.ExamHandler, tokens middleware.TokenParser) *ExamModule {
	return &ExamModule{Handler: h, Tokens: tokens}
}

func (m *ExamModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/exams")
	auth.Use(middleware.JWTAuth(m.Tokens))
	{
		auth.GET("/attempts", m.Handler.Attempts)
		auth.POST("/:id/attempts", m.Handler.RecordAttempt)
	}
}
