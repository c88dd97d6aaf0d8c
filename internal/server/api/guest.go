// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/vowlist/core/internal/export"
	"github.com/vowlist/core/internal/model"
	"github.com/vowlist/core/internal/server/session"
)

// SubmitRSVP handles the public confirmation flow: wedding lookup,
// structural validation, phone dedup, insert. The pre-insert phone check
// is an early exit; the store's uniqueness constraint stays the
// authoritative guard and a violation there gets the same 409.
func (h *Handler) SubmitRSVP(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.SubmitRSVP")
	defer span.End()

	wedding, err := h.wStore.GetWeddingBySlug(ctx, c.Param("slug"))
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not read wedding")
		return
	}

	var req model.RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		h.respondError(c, model.Validationf("invalid request body"), "")
		return
	}
	if err := req.Validate(); err != nil {
		span.RecordError(err)
		h.respondError(c, err, "")
		return
	}

	existing, err := h.gStore.CheckPhoneExists(ctx, wedding.ID, req.Phone)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not check phone")
		return
	}
	if existing != nil {
		h.respondDuplicate(c, existing.Name)
		return
	}

	guest := req.Guest(wedding)
	if _, err := h.gStore.CreateGuest(ctx, guest); err != nil {
		span.RecordError(err)
		if model.IsKind(err, model.ErrorKindConflict) {
			// Lost the race against a concurrent submission; answer as
			// if the pre-check had caught it.
			name := req.Name
			if winner, lookupErr := h.gStore.CheckPhoneExists(ctx, wedding.ID, guest.Phone); lookupErr == nil && winner != nil {
				name = winner.Name
			}
			h.respondDuplicate(c, name)
			return
		}
		h.respondError(c, err, "could not save confirmation")
		return
	}

	h.logger.InfoContext(ctx, "rsvp confirmed",
		"wedding", wedding.Slug, "guest", guest.Name,
		"people", guest.Adults+guest.Children)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "attendance confirmed",
		"guest":   guest,
	})
}

func (h *Handler) respondDuplicate(c *gin.Context, guestName string) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{
		"error": "you already confirmed your attendance, thank you",
		"guest": guestName,
	})
}

// ListGuests returns the guests of one wedding, newest first.
func (h *Handler) ListGuests(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.ListGuests")
	defer span.End()

	wedding, err := h.wStore.GetWeddingBySlug(ctx, c.Param("slug"))
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not read wedding")
		return
	}
	guests, err := h.gStore.ListGuestsByWedding(ctx, wedding.ID)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not list guests")
		return
	}
	if guests == nil {
		guests = []*model.Guest{}
	}
	c.JSON(http.StatusOK, guests)
}

// DeleteGuest removes one RSVP. The guest must belong to the wedding in
// the path, otherwise the request is rejected with 403.
func (h *Handler) DeleteGuest(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.DeleteGuest")
	defer span.End()

	wedding, err := h.wStore.GetWeddingBySlug(ctx, c.Param("slug"))
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not read wedding")
		return
	}

	guestID, err := uuid.Parse(c.Param("guestid"))
	if err != nil {
		h.respondError(c, model.NotFoundf("guest not found"), "")
		return
	}
	guest, err := h.gStore.GetGuestByID(ctx, guestID)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not read guest")
		return
	}
	if guest.WeddingID != wedding.ID {
		h.respondError(c, model.Forbiddenf("guest does not belong to this wedding"), "")
		return
	}

	if err := h.gStore.DeleteGuest(ctx, guestID); err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not delete guest")
		return
	}
	h.logger.InfoContext(ctx, "guest removed",
		"wedding", wedding.Slug, "guest", guest.Name, "admin", session.Username(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "guest removed"})
}

// GuestStats aggregates the confirmations of one wedding.
func (h *Handler) GuestStats(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.GuestStats")
	defer span.End()

	wedding, err := h.wStore.GetWeddingBySlug(ctx, c.Param("slug"))
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not read wedding")
		return
	}
	stats, err := h.gStore.GuestStats(ctx, wedding.ID)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not aggregate guests")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportGuests streams the guest list as a CSV download.
func (h *Handler) ExportGuests(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "Handler.ExportGuests")
	defer span.End()

	wedding, err := h.wStore.GetWeddingBySlug(ctx, c.Param("slug"))
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not read wedding")
		return
	}
	guests, err := h.gStore.ListGuestsByWedding(ctx, wedding.ID)
	if err != nil {
		span.RecordError(err)
		h.respondError(c, err, "could not list guests")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(wedding)))
	if err := export.WriteGuestsCSV(c.Writer, guests); err != nil {
		span.RecordError(err)
		h.logger.ErrorContext(ctx, "could not write export", "error", err)
	}
}
