// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/vowlist/core/internal/model"
)

type AdminStore interface {
	CreateAdmin(context.Context, *model.AdminUser) (uuid.UUID, error)
	GetAdminByUsername(context.Context, string) (*model.AdminUser, error)
	// EnsureAdmin creates the given user unless the username exists.
	EnsureAdmin(context.Context, *model.AdminUser) error
}
