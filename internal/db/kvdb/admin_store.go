// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/vowlist/core/internal/model"
)

const bucketAdmin = "admin_store"

func NewAdminStore(db *bolt.DB) (*AdminStore, error) {
	return &AdminStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketAdmin))
		return err
	})
}

type AdminStore struct {
	db *bolt.DB
}

// adminRecord is the stored shape. model.AdminUser hides the hash from
// JSON serialization, here it has to be kept.
type adminRecord struct {
	ID           uuid.UUID  `json:"id"`
	CreatedAt    *time.Time `json:"created_at"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
}

func (a *AdminStore) CreateAdmin(ctx context.Context, admin *model.AdminUser) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateAdmin")
	defer span.End()

	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	now := time.Now().UTC()
	admin.CreatedAt = &now

	j, err := json.Marshal(adminRecord{
		ID:           admin.ID,
		CreatedAt:    admin.CreatedAt,
		Username:     admin.Username,
		PasswordHash: admin.PasswordHash,
	})
	if err != nil {
		return uuid.Nil, model.WrapInternal(err, "could not encode admin user")
	}

	span.AddEvent("Update bucket")
	return admin.ID, a.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketAdmin))
		if bucket.Get([]byte(admin.Username)) != nil {
			err := model.Conflictf("admin user %q already exists", admin.Username)
			span.RecordError(err)
			return err
		}
		return bucket.Put([]byte(admin.Username), j)
	})
}

func (a *AdminStore) GetAdminByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetAdminByUsername")
	defer span.End()

	span.AddEvent("View bucket")
	var rec adminRecord
	err := a.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketAdmin)).Get([]byte(username))
		if res == nil {
			return model.NotFoundf("admin user not found")
		}
		return json.Unmarshal(res, &rec)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &model.AdminUser{
		ID:           rec.ID,
		CreatedAt:    rec.CreatedAt,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
	}, nil
}

func (a *AdminStore) EnsureAdmin(ctx context.Context, admin *model.AdminUser) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "EnsureAdmin")
	defer span.End()

	_, err := a.GetAdminByUsername(ctx, admin.Username)
	if err == nil {
		return nil
	}
	if !model.IsKind(err, model.ErrorKindNotFound) {
		return err
	}
	_, err = a.CreateAdmin(ctx, admin)
	return err
}
