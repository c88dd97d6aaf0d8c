// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package sqlitedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/vowlist/core/internal/model"
)

const guestColumns = `g.id, g.wedding_id, w.slug, g.name, g.adults, g.children,
	g.adults_names, g.children_details, g.phone, g.created_at`

const guestFrom = ` FROM guests g JOIN weddings w ON w.id = g.wedding_id`

func NewGuestStore(db *sql.DB) *GuestStore {
	return &GuestStore{db: db}
}

type GuestStore struct {
	db *sql.DB
}

// CreateGuest inserts the RSVP. The UNIQUE (wedding_id, phone) constraint
// is the authoritative dedup guard; a violation comes back as a conflict.
func (s *GuestStore) CreateGuest(ctx context.Context, guest *model.Guest) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	now := time.Now().UTC()
	guest.CreatedAt = &now

	adultNames, err := json.Marshal(guest.AdultNames)
	if err != nil {
		return uuid.Nil, model.WrapInternal(err, "could not encode adult names")
	}
	childrenDetails, err := json.Marshal(guest.ChildrenDetails)
	if err != nil {
		return uuid.Nil, model.WrapInternal(err, "could not encode child details")
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO guests
		(id, wedding_id, name, adults, children, adults_names, children_details, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		guest.ID.String(), guest.WeddingID.String(), guest.Name,
		guest.Adults, guest.Children, string(adultNames),
		string(childrenDetails), guest.Phone, now,
	)
	if err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return uuid.Nil, model.Conflictf("phone %s already confirmed for this wedding", guest.Phone)
		}
		return uuid.Nil, model.WrapInternal(err, "could not create guest")
	}
	return guest.ID, nil
}

// CheckPhoneExists returns the guest holding phone within the wedding, or
// nil. It is an early exit only, CreateGuest stays the source of truth.
func (s *GuestStore) CheckPhoneExists(ctx context.Context, weddingID uuid.UUID, phone string) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CheckPhoneExists")
	defer span.End()

	row := s.db.QueryRowContext(ctx, `SELECT `+guestColumns+guestFrom+`
		WHERE g.wedding_id = ? AND g.phone = ?`, weddingID.String(), phone)
	guest, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not check phone")
	}
	return guest, nil
}

func (s *GuestStore) ListGuestsByWedding(ctx context.Context, weddingID uuid.UUID) ([]*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListGuestsByWedding")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `SELECT `+guestColumns+guestFrom+`
		WHERE g.wedding_id = ? ORDER BY g.created_at DESC`, weddingID.String())
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not list guests")
	}
	defer rows.Close()

	var guests []*model.Guest
	for rows.Next() {
		guest, err := scanGuest(rows)
		if err != nil {
			span.RecordError(err)
			return nil, model.WrapInternal(err, "could not read guest row")
		}
		guests = append(guests, guest)
	}
	return guests, rows.Err()
}

func (s *GuestStore) GetGuestByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetGuestByID")
	defer span.End()

	row := s.db.QueryRowContext(ctx, `SELECT `+guestColumns+guestFrom+`
		WHERE g.id = ?`, id.String())
	guest, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundf("guest not found")
	}
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not read guest")
	}
	return guest, nil
}

func (s *GuestStore) DeleteGuest(ctx context.Context, id uuid.UUID) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	res, err := s.db.ExecContext(ctx, `DELETE FROM guests WHERE id = ?`, id.String())
	if err != nil {
		span.RecordError(err)
		return model.WrapInternal(err, "could not delete guest")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.NotFoundf("guest not found")
	}
	return nil
}

// GuestStats sums the headline numbers in SQL and unpacks each child
// detail list to split children around the age six threshold.
func (s *GuestStore) GuestStats(ctx context.Context, weddingID uuid.UUID) (*model.GuestStats, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GuestStats")
	defer span.End()

	stats := &model.GuestStats{}
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(adults), 0), COALESCE(SUM(children), 0),
		COALESCE(SUM(adults + children), 0)
		FROM guests WHERE wedding_id = ?`, weddingID.String()).
		Scan(&stats.Confirmations, &stats.Adults, &stats.Children, &stats.People)
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not aggregate guests")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT children_details FROM guests
		WHERE wedding_id = ? AND children > 0`, weddingID.String())
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not read child details")
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			span.RecordError(err)
			return nil, model.WrapInternal(err, "could not read child details")
		}
		var details []model.ChildDetail
		if err := json.Unmarshal([]byte(raw), &details); err != nil {
			span.RecordError(err)
			return nil, model.WrapInternal(err, "could not decode child details")
		}
		for _, child := range details {
			if child.Over6 {
				stats.ChildrenOver6++
			} else {
				stats.ChildrenUnder6++
			}
		}
	}
	return stats, rows.Err()
}

func scanGuest(row rowScanner) (*model.Guest, error) {
	var (
		guest           model.Guest
		id, weddingID   string
		adultNames      string
		childrenDetails string
		createdAt       time.Time
	)
	err := row.Scan(&id, &weddingID, &guest.WeddingSlug, &guest.Name,
		&guest.Adults, &guest.Children, &adultNames, &childrenDetails,
		&guest.Phone, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if guest.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if guest.WeddingID, err = uuid.Parse(weddingID); err != nil {
		return nil, err
	}
	guest.AdultNames = []string{}
	if err := json.Unmarshal([]byte(adultNames), &guest.AdultNames); err != nil {
		return nil, err
	}
	guest.ChildrenDetails = []model.ChildDetail{}
	if err := json.Unmarshal([]byte(childrenDetails), &guest.ChildrenDetails); err != nil {
		return nil, err
	}
	guest.CreatedAt = &createdAt
	return &guest, nil
}
