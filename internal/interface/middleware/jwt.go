package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-course-platform/pkg/helpers"
	"github.com/oksasatya/go-course-platform/pkg/response"
)

// Gin context keys set by the middleware in this package.
const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
	CtxUserNameKey  = "userName"
	CtxRolesKey     = "roles"
	CtxRequestIDKey = "request_id"
	CtxRealIPKey    = "real_ip"
)

// TokenParser verifies an access token; *helpers.TokenIssuer implements it.
type TokenParser interface {
	Parse(token string) (*helpers.Claims, error)
}

// JWTAuth reads the bearer token from the Authorization header, validates
// it, and injects the caller identity into the context.
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.Subject)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Set(CtxUserNameKey, claims.UserName)
		c.Set(CtxRolesKey, claims.Roles)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Roles returns the roles JWTAuth stored on c.
func Roles(c *gin.Context) []string {
	roles, _ := c.Get(CtxRolesKey)
	r, _ := roles.([]string)
	return r
}

// RequireRole lets the request through when the caller holds any of roles.
// It must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, have := range Roles(c) {
			for _, want := range roles {
				if strings.EqualFold(have, want) {
					c.Next()
					return
				}
			}
		}
		response.Abort(c, http.StatusForbidden, "insufficient role", nil)
	}
}
