// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/vowlist/core/internal/model"
)

func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

type AdminStore struct {
	db *sql.DB
}

func (s *AdminStore) CreateAdmin(ctx context.Context, admin *model.AdminUser) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateAdmin")
	defer span.End()

	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	now := time.Now().UTC()
	admin.CreatedAt = &now

	_, err := s.db.ExecContext(ctx, `INSERT INTO admin_users
		(id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		admin.ID.String(), admin.Username, admin.PasswordHash, now,
	)
	if err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return uuid.Nil, model.Conflictf("admin user %q already exists", admin.Username)
		}
		return uuid.Nil, model.WrapInternal(err, "could not create admin user")
	}
	return admin.ID, nil
}

func (s *AdminStore) GetAdminByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetAdminByUsername")
	defer span.End()

	var (
		admin     model.AdminUser
		id        string
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, created_at
		FROM admin_users WHERE username = ?`, username).
		Scan(&id, &admin.Username, &admin.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundf("admin user not found")
	}
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not read admin user")
	}
	if admin.ID, err = uuid.Parse(id); err != nil {
		return nil, model.WrapInternal(err, "could not read admin user")
	}
	admin.CreatedAt = &createdAt
	return &admin, nil
}

func (s *AdminStore) EnsureAdmin(ctx context.Context, admin *model.AdminUser) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "EnsureAdmin")
	defer span.End()

	_, err := s.GetAdminByUsername(ctx, admin.Username)
	if err == nil {
		return nil
	}
	if !model.IsKind(err, model.ErrorKindNotFound) {
		return err
	}
	_, err = s.CreateAdmin(ctx, admin)
	return err
}
