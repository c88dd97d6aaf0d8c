// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/vowlist/core/internal/model"
)

const bucketGuest = "guest_store"

func NewGuestStore(db *bolt.DB) (*GuestStore, error) {
	return &GuestStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketGuest))
		return err
	})
}

type GuestStore struct {
	db *bolt.DB
}

// CreateGuest runs the phone dedup check inside the write transaction.
// Writers are serialized, so two submissions with the same phone cannot
// both pass the scan.
func (g *GuestStore) CreateGuest(ctx context.Context, guest *model.Guest) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	now := time.Now().UTC()
	guest.CreatedAt = &now

	j, err := json.Marshal(guest)
	if err != nil {
		return uuid.Nil, model.WrapInternal(err, "could not encode guest")
	}

	span.AddEvent("Update bucket")
	return guest.ID, g.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketGuest))
		existing, err := findPhone(bucket, guest.WeddingID, guest.Phone)
		if err != nil {
			return model.WrapInternal(err, "could not scan guests")
		}
		if existing != nil {
			err := model.Conflictf("phone %s already confirmed for this wedding", guest.Phone)
			span.RecordError(err)
			return err
		}
		return bucket.Put(guest.ID[:], j)
	})
}

func (g *GuestStore) CheckPhoneExists(ctx context.Context, weddingID uuid.UUID, phone string) (*model.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CheckPhoneExists")
	defer span.End()

	span.AddEvent("View bucket")
	var guest *model.Guest
	err := g.db.View(func(tx *bolt.Tx) error {
		var err error
		guest, err = findPhone(tx.Bucket([]byte(bucketGuest)), weddingID, phone)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not check phone")
	}
	return guest, nil
}

func (g *GuestStore) ListGuestsByWedding(ctx context.Context, weddingID uuid.UUID) ([]*model.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListGuestsByWedding")
	defer span.End()

	span.AddEvent("View bucket")
	var guests []*model.Guest
	err := g.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketGuest)).ForEach(func(_, v []byte) error {
			guest := &model.Guest{}
			if err := json.Unmarshal(v, guest); err != nil {
				span.RecordError(err)
				return err
			}
			if guest.WeddingID == weddingID {
				guests = append(guests, guest)
			}
			return nil
		})
	})
	if err != nil {
		return nil, model.WrapInternal(err, "could not list guests")
	}
	sort.Slice(guests, func(i, j int) bool {
		return guests[i].CreatedAt.After(*guests[j].CreatedAt)
	})
	return guests, nil
}

func (g *GuestStore) GetGuestByID(ctx context.Context, guestID uuid.UUID) (*model.Guest, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetGuestByID")
	defer span.End()

	span.AddEvent("View bucket")
	guest := &model.Guest{}
	err := g.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketGuest)).Get(guestID[:])
		if res == nil {
			return model.NotFoundf("guest not found")
		}
		return json.Unmarshal(res, guest)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return guest, nil
}

func (g *GuestStore) DeleteGuest(ctx context.Context, guestID uuid.UUID) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	span.AddEvent("Update bucket")
	return g.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketGuest))
		if bucket.Get(guestID[:]) == nil {
			err := model.NotFoundf("guest not found")
			span.RecordError(err)
			return err
		}
		return bucket.Delete(guestID[:])
	})
}

func (g *GuestStore) GuestStats(ctx context.Context, weddingID uuid.UUID) (*model.GuestStats, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GuestStats")
	defer span.End()

	guests, err := g.ListGuestsByWedding(ctx, weddingID)
	if err != nil {
		return nil, err
	}
	stats := &model.GuestStats{}
	for _, guest := range guests {
		stats.Add(guest)
	}
	return stats, nil
}

func findPhone(bucket *bolt.Bucket, weddingID uuid.UUID, phone string) (*model.Guest, error) {
	var found *model.Guest
	err := bucket.ForEach(func(_, v []byte) error {
		if found != nil {
			return nil
		}
		guest := &model.Guest{}
		if err := json.Unmarshal(v, guest); err != nil {
			return err
		}
		if guest.WeddingID == weddingID && guest.Phone == phone {
			found = guest
		}
		return nil
	})
	return found, err
}
