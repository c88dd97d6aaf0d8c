// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/vowlist/core/internal/model"
)

// WeddingStore persists one record per event.
//
// CreateWedding fails with a conflict when the slug is already taken by
// any record, active or not, so a deactivated wedding keeps its URL
// reserved. DeleteWedding removes the wedding together with all of its
// guests in one transaction and reports the number of removed rows.
type WeddingStore interface {
	CreateWedding(context.Context, *model.Wedding) (uuid.UUID, error)
	ListWeddings(context.Context) ([]*model.Wedding, error)
	GetWeddingBySlug(context.Context, string) (*model.Wedding, error)
	GetWeddingByID(context.Context, uuid.UUID) (*model.Wedding, error)
	UpdateWedding(context.Context, uuid.UUID, model.WeddingUpdate) (*model.Wedding, error)
	DeleteWedding(context.Context, uuid.UUID) (int, error)
}
