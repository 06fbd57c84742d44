package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	handlers "github.com/oksasatya/go-course-platform/internal/interface/http"
	"github.com/oksasatya/go-course-platform/internal/interface/middleware"
)

type CourseModule struct {
	Handler *handlers.CourseHandler
	Tokens  middleware.TokenParser
}

func NewCourseModule(h *handlers.CourseHandler, tokens middleware.TokenParser) *CourseModule {
	return &CourseModule{Handler: h, Tokens: tokens}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	rg.GET("/courses", m.Handler.Browse)
	rg.GET("/courses/search", m.Handler.Search)
	rg.GET("/courses/:id", m.Handler.Get)
	rg.POST("/courses",
		middleware.JWTAuth(m.Tokens),
		middleware.RequireRole(entity.RoleCompany, entity.RoleAdmin),
		m.Handler.Create,
	)
}
