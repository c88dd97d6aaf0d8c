// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/vowlist/core/internal/model"
)

// GuestStore persists one record per RSVP.
//
// CheckPhoneExists is the early-exit half of the dedup gate; it returns
// the matching guest or nil. The authoritative guard is the store's
// uniqueness constraint on (wedding, phone): CreateGuest surfaces a
// violation as a conflict error, never as a second row.
type GuestStore interface {
	CreateGuest(context.Context, *model.Guest) (uuid.UUID, error)
	CheckPhoneExists(ctx context.Context, weddingID uuid.UUID, phone string) (*model.Guest, error)
	ListGuestsByWedding(context.Context, uuid.UUID) ([]*model.Guest, error)
	GetGuestByID(context.Context, uuid.UUID) (*model.Guest, error)
	DeleteGuest(context.Context, uuid.UUID) error
	GuestStats(context.Context, uuid.UUID) (*model.GuestStats, error)
}
