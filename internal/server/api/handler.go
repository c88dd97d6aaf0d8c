// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vowlist/core/internal/db"
	"github.com/vowlist/core/internal/model"
	"github.com/vowlist/core/internal/server/session"
)

func NewHandler(
	wStore db.WeddingStore,
	gStore db.GuestStore,
	aStore db.AdminStore,
	sessions *session.Manager,
	uploadDir string,
) *Handler {
	return &Handler{
		wStore:    wStore,
		gStore:    gStore,
		aStore:    aStore,
		sessions:  sessions,
		uploadDir: uploadDir,
		logger:    slog.Default().WithGroup("api"),
	}
}

type Handler struct {
	wStore    db.WeddingStore
	gStore    db.GuestStore
	aStore    db.AdminStore
	sessions  *session.Manager
	uploadDir string
	logger    *slog.Logger
}

// respondError maps the error kind to a transport status. Internal
// causes are logged but never leak to the client.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	message := fallback
	var merr *model.Error
	if errors.As(err, &merr) && merr.Kind != model.ErrorKindInternal {
		message = merr.Message
	} else {
		h.logger.ErrorContext(c.Request.Context(), fallback, "error", err)
	}
	c.AbortWithStatusJSON(statusOf(model.KindOf(err)), gin.H{"error": message})
}

func statusOf(kind model.ErrorKind) int {
	switch kind {
	case model.ErrorKindValidation:
		return http.StatusBadRequest
	case model.ErrorKindNotFound:
		return http.StatusNotFound
	case model.ErrorKindConflict:
		return http.StatusConflict
	case model.ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case model.ErrorKindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
