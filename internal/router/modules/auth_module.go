package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-course-platform/internal/interface/http"
	"github.com/oksasatya/go-course-platform/internal/interface/middleware"
)

// AuthModule wires the authentication endpoints.
// Public: login and registration for both account kinds.
// Protected: DELETE /user, PUT /password, PUT /picture.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  middleware.TokenParser
}

func NewAuthModule(h *handlers.AuthHandler, tokens middleware.TokenParser) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/authentication")
	g.POST("/regular-user", m.Handler.LoginRegularUser)
	g.POST("/company-user", m.Handler.LoginCompany)
	g.POST("/register/regular", m.Handler.RegisterRegularUser)
	g.POST("/register/company", m.Handler.RegisterCompanyUser)

	auth := g.Group("/")
	auth.Use(middleware.JWTAuth(m.Tokens))
	{
		auth.DELETE("/user", m.Handler.DeleteUser)
		auth.PUT("/password", m.Handler.UpdatePassword)
		auth.PUT("/picture", m.Handler.UpdatePicture)
	}
}
