// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/vowlist/core/internal/model"
	"github.com/vowlist/core/internal/server/session"
)

// ListWeddings returns the active weddings, newest first.
func (h *Handler) ListWeddings(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.ListWeddings")
	defer span.End()

	weddings, err := h.wStore.ListWeddings(ctx)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not list weddings")
		return
	}
	if weddings == nil {
		weddings = []*model.Wedding{}
	}
	c.JSON(http.StatusOK, weddings)
}

func (h *Handler) CreateWedding(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.CreateWedding")
	defer span.End()

	var wedding model.Wedding
	if err := c.ShouldBindJSON(&wedding); err != nil {
		span.RecordError(err)
		h.respondError(c, model.Validationf("invalid request body"), "")
		return
	}

	if _, err := h.wStore.CreateWedding(ctx, &wedding); err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not create wedding")
		return
	}
	h.logger.InfoContext(ctx, "wedding created",
		"slug", wedding.Slug, "admin", session.Username(c))
	c.JSON(http.StatusCreated, wedding)
}

// GetWedding returns the full record for the admin dashboard.
func (h *Handler) GetWedding(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.GetWedding")
	defer span.End()

	wedding, err := h.wStore.GetWeddingBySlug(ctx, c.Param("slug"))
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not read wedding")
		return
	}
	c.JSON(http.StatusOK, wedding)
}

// PublicWedding returns the subset of fields the RSVP page needs,
// internal identifiers stay private.
func (h *Handler) PublicWedding(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.PublicWedding")
	defer span.End()

	wedding, err := h.wStore.GetWeddingBySlug(ctx, c.Param("slug"))
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not read wedding")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bride_name":       wedding.BrideName,
		"groom_name":       wedding.GroomName,
		"wedding_date":     wedding.WeddingDate,
		"wedding_time":     wedding.WeddingTime,
		"venue_name":       wedding.VenueName,
		"venue_address":    wedding.VenueAddress,
		"additional_info":  wedding.AdditionalInfo,
		"header_image":     wedding.HeaderImage,
		"header_text":      wedding.HeaderText,
		"background_color": wedding.BackgroundColor,
		"text_color":       wedding.TextColor,
		"accent_color":     wedding.AccentColor,
	})
}

func (h *Handler) UpdateWedding(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.UpdateWedding")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, model.Validationf("invalid wedding id"), "")
		return
	}

	var update model.WeddingUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		span.RecordError(err)
		h.respondError(c, model.Validationf("invalid request body"), "")
		return
	}

	wedding, err := h.wStore.UpdateWedding(ctx, id, update)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not update wedding")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "wedding": wedding})
}

// DeleteWedding removes the wedding and every guest it owns. A header
// image left on disk is removed best effort, a failure there is logged
// and never fails the request.
func (h *Handler) DeleteWedding(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.DeleteWedding")
	defer span.End()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, model.Validationf("invalid wedding id"), "")
		return
	}

	wedding, err := h.wStore.GetWeddingByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not read wedding")
		return
	}

	removed, err := h.wStore.DeleteWedding(ctx, id)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not delete wedding")
		return
	}

	if wedding.HeaderImage != "" && h.uploadDir != "" {
		img := filepath.Join(h.uploadDir, filepath.Base(wedding.HeaderImage))
		if err := os.Remove(img); err != nil && !os.IsNotExist(err) {
			h.logger.WarnContext(ctx, "could not remove header image", "path", img, "error", err)
		}
	}

	h.logger.InfoContext(ctx, "wedding deleted",
		"slug", wedding.Slug, "removed", removed, "admin", session.Username(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "wedding list removed",
		"removed": removed,
	})
}
