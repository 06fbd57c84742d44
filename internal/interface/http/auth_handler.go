package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/internal/application"
	"github.com/oksasatya/go-course-platform/internal/interface/middleware"
	"github.com/oksasatya/go-course-platform/pkg/response"
)

const maxPictureBytes = 5 << 20

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

func (h *AuthHandler) LoginRegularUser(c *gin.Context) {
	var req application.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	res, err := h.Svc.LoginRegularUser(c.Request.Context(), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "login successful", nil)
}

func (h *AuthHandler) LoginCompany(c *gin.Context) {
	var req application.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	res, err := h.Svc.LoginCompany(c.Request.Context(), req)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "login successful", nil)
}

func (h *AuthHandler) RegisterRegularUser(c *gin.Context) {
	var req application.RegisterUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	if err := h.Svc.RegisterRegularUser(c.Request.Context(), req); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusCreated, gin.H{"email": req.Email}, "registered", nil)
}

func (h *AuthHandler) RegisterCompanyUser(c *gin.Context) {
	var req application.RegisterCompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	if err := h.Svc.RegisterCompanyUser(c.Request.Context(), req); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusCreated, gin.H{"email": req.Email}, "registered", nil)
}

// DeleteUser DELETE /api/authentication/user (auth required)
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), c.GetString(middleware.CtxUserEmailKey)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}

// UpdatePassword PUT /api/authentication/password (auth required)
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req application.UpdatePasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	email := c.GetString(middleware.CtxUserEmailKey)
	if err := h.Svc.UpdatePassword(c.Request.Context(), email, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": true}, "password updated", nil)
}

// UpdatePicture PUT /api/authentication/picture (auth required), multipart field "picture"
func (h *AuthHandler) UpdatePicture(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPictureBytes+1<<10)
	fh, err := c.FormFile("picture")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"picture": "is required"})
		return
	}
	if fh.Size > maxPictureBytes {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"picture": "must be at most 5MB"})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"picture": "must be an image"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UpdatePicture(c.Request.Context(), c.GetString(middleware.CtxUserEmailKey), f, fh.Filename, contentType)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"picture_url": url}, "picture updated", nil)
}
