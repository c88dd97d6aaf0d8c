// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/vowlist/core/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies the credentials and issues the session cookie. A wrong
// username and a wrong password are indistinguishable to the caller.
func (h *Handler) Login(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.Login")
	defer span.End()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		h.respondError(c, model.Validationf("username and password are required"), "")
		return
	}

	admin, err := h.aStore.GetAdminByUsername(ctx, req.Username)
	if err != nil && !model.IsKind(err, model.ErrorKindNotFound) {
		span.RecordError(err)
		h.respondError(c, err, "could not read admin user")
		return
	}
	if err != nil || !admin.CheckPassword(req.Password) {
		h.logger.WarnContext(ctx, "failed login attempt", "username", req.Username)
		h.respondError(c, model.Unauthorizedf("wrong username or password"), "")
		return
	}

	if err := h.sessions.Issue(c, admin); err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not create session")
		return
	}
	h.logger.InfoContext(ctx, "admin logged in", "username", admin.Username)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "login successful",
		"redirectTo": "/admin/weddings",
	})
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logout successful"})
}
