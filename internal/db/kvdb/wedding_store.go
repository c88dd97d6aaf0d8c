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

const (
	bucketWedding     = "wedding_store"
	bucketWeddingSlug = "wedding_slug_idx"
)

func NewWeddingStore(db *bolt.DB) (*WeddingStore, error) {
	return &WeddingStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketWedding)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(bucketWeddingSlug))
		return err
	})
}

type WeddingStore struct {
	db *bolt.DB
}

// CreateWedding claims the slug in the index bucket and stores the
// record in one write transaction; bolt serializes writers, so the
// check-then-put pair cannot race.
func (s *WeddingStore) CreateWedding(ctx context.Context, wedding *model.Wedding) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateWedding")
	defer span.End()

	if err := wedding.Validate(); err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}
	if wedding.ID == uuid.Nil {
		wedding.ID = uuid.New()
	}
	now := time.Now().UTC()
	wedding.CreatedAt = &now
	wedding.Active = true
	wedding.ApplyDefaults()
	if wedding.Slug == "" {
		span.AddEvent("derive slug")
		wedding.Slug = model.DeriveSlug(wedding.BrideName, wedding.GroomName, wedding.WeddingDate, now)
	}

	j, err := json.Marshal(wedding)
	if err != nil {
		return uuid.Nil, model.WrapInternal(err, "could not encode wedding")
	}

	span.AddEvent("Update bucket")
	return wedding.ID, s.db.Update(func(tx *bolt.Tx) error {
		slugs := tx.Bucket([]byte(bucketWeddingSlug))
		if slugs.Get([]byte(wedding.Slug)) != nil {
			err := model.Conflictf("a wedding with slug %q already exists", wedding.Slug)
			span.RecordError(err)
			return err
		}
		if err := slugs.Put([]byte(wedding.Slug), wedding.ID[:]); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketWedding)).Put(wedding.ID[:], j)
	})
}

func (s *WeddingStore) ListWeddings(ctx context.Context) ([]*model.Wedding, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListWeddings")
	defer span.End()

	span.AddEvent("View bucket")
	var weddings []*model.Wedding
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketWedding)).ForEach(func(_, v []byte) error {
			wedding := &model.Wedding{}
			if err := json.Unmarshal(v, wedding); err != nil {
				span.RecordError(err)
				return err
			}
			if wedding.Active {
				weddings = append(weddings, wedding)
			}
			return nil
		})
	})
	if err != nil {
		return nil, model.WrapInternal(err, "could not list weddings")
	}
	sort.Slice(weddings, func(i, j int) bool {
		return weddings[i].CreatedAt.After(*weddings[j].CreatedAt)
	})
	return weddings, nil
}

func (s *WeddingStore) GetWeddingBySlug(ctx context.Context, slug string) (*model.Wedding, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetWeddingBySlug")
	defer span.End()

	span.AddEvent("View bucket")
	wedding := &model.Wedding{}
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket([]byte(bucketWeddingSlug)).Get([]byte(slug))
		if id == nil {
			return model.NotFoundf("wedding %q not found", slug)
		}
		res := tx.Bucket([]byte(bucketWedding)).Get(id)
		if res == nil {
			return model.NotFoundf("wedding %q not found", slug)
		}
		return json.Unmarshal(res, wedding)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !wedding.Active {
		return nil, model.NotFoundf("wedding %q not found", slug)
	}
	return wedding, nil
}

func (s *WeddingStore) GetWeddingByID(ctx context.Context, id uuid.UUID) (*model.Wedding, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetWeddingByID")
	defer span.End()

	span.AddEvent("View bucket")
	wedding := &model.Wedding{}
	err := s.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketWedding)).Get(id[:])
		if res == nil {
			return model.NotFoundf("wedding not found")
		}
		return json.Unmarshal(res, wedding)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return wedding, nil
}

func (s *WeddingStore) UpdateWedding(ctx context.Context, id uuid.UUID, update model.WeddingUpdate) (*model.Wedding, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateWedding")
	defer span.End()

	span.AddEvent("Update bucket")
	wedding := &model.Wedding{}
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketWedding))
		res := bucket.Get(id[:])
		if res == nil {
			return model.NotFoundf("wedding not found")
		}
		if err := json.Unmarshal(res, wedding); err != nil {
			return model.WrapInternal(err, "could not decode wedding")
		}
		wedding.Merge(update)
		j, err := json.Marshal(wedding)
		if err != nil {
			return model.WrapInternal(err, "could not encode wedding")
		}
		return bucket.Put(id[:], j)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return wedding, nil
}

// DeleteWedding drops the record, its slug index entry and every guest
// referencing it inside one write transaction.
func (s *WeddingStore) DeleteWedding(ctx context.Context, id uuid.UUID) (int, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "DeleteWedding")
	defer span.End()

	span.AddEvent("Update bucket")
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketWedding))
		res := bucket.Get(id[:])
		if res == nil {
			return model.NotFoundf("wedding not found")
		}
		wedding := &model.Wedding{}
		if err := json.Unmarshal(res, wedding); err != nil {
			return model.WrapInternal(err, "could not decode wedding")
		}

		guests := tx.Bucket([]byte(bucketGuest))
		if guests != nil {
			var stale [][]byte
			err := guests.ForEach(func(k, v []byte) error {
				guest := &model.Guest{}
				if err := json.Unmarshal(v, guest); err != nil {
					return err
				}
				if guest.WeddingID == id {
					stale = append(stale, k)
				}
				return nil
			})
			if err != nil {
				return model.WrapInternal(err, "could not scan guests")
			}
			for _, k := range stale {
				if err := guests.Delete(k); err != nil {
					return err
				}
				removed++
			}
		}

		if err := tx.Bucket([]byte(bucketWeddingSlug)).Delete([]byte(wedding.Slug)); err != nil {
			return err
		}
		if err := bucket.Delete(id[:]); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return removed, nil
}
