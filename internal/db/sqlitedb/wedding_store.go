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

const weddingColumns = `id, bride_name, groom_name, wedding_date, wedding_time,
	venue_name, venue_address, additional_info, header_image, header_text,
	color_scheme, background_color, text_color, accent_color, slug, is_active, created_at`

func NewWeddingStore(db *sql.DB) *WeddingStore {
	return &WeddingStore{db: db}
}

type WeddingStore struct {
	db *sql.DB
}

func (s *WeddingStore) CreateWedding(ctx context.Context, wedding *model.Wedding) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateWedding")
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

	_, err := s.db.ExecContext(ctx, `INSERT INTO weddings (`+weddingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		wedding.ID.String(), wedding.BrideName, wedding.GroomName,
		wedding.WeddingDate, wedding.WeddingTime, wedding.VenueName,
		wedding.VenueAddress, wedding.AdditionalInfo, wedding.HeaderImage,
		wedding.HeaderText, wedding.ColorScheme, wedding.BackgroundColor,
		wedding.TextColor, wedding.AccentColor, wedding.Slug,
		boolToInt(wedding.Active), now,
	)
	if err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return uuid.Nil, model.Conflictf("a wedding with slug %q already exists", wedding.Slug)
		}
		return uuid.Nil, model.WrapInternal(err, "could not create wedding")
	}
	return wedding.ID, nil
}

func (s *WeddingStore) ListWeddings(ctx context.Context) ([]*model.Wedding, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ListWeddings")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `SELECT `+weddingColumns+` FROM weddings
		WHERE is_active = 1 ORDER BY created_at DESC`)
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not list weddings")
	}
	defer rows.Close()

	var weddings []*model.Wedding
	for rows.Next() {
		wedding, err := scanWedding(rows)
		if err != nil {
			span.RecordError(err)
			return nil, model.WrapInternal(err, "could not read wedding row")
		}
		weddings = append(weddings, wedding)
	}
	return weddings, rows.Err()
}

func (s *WeddingStore) GetWeddingBySlug(ctx context.Context, slug string) (*model.Wedding, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetWeddingBySlug")
	defer span.End()

	row := s.db.QueryRowContext(ctx, `SELECT `+weddingColumns+` FROM weddings
		WHERE slug = ? AND is_active = 1`, slug)
	wedding, err := scanWedding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundf("wedding %q not found", slug)
	}
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not read wedding")
	}
	return wedding, nil
}

// GetWeddingByID ignores the active flag, deletion needs to reach
// deactivated records to recover metadata such as the header image path.
func (s *WeddingStore) GetWeddingByID(ctx context.Context, id uuid.UUID) (*model.Wedding, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetWeddingByID")
	defer span.End()

	row := s.db.QueryRowContext(ctx, `SELECT `+weddingColumns+` FROM weddings WHERE id = ?`, id.String())
	wedding, err := scanWedding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundf("wedding not found")
	}
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not read wedding")
	}
	return wedding, nil
}

func (s *WeddingStore) UpdateWedding(ctx context.Context, id uuid.UUID, update model.WeddingUpdate) (*model.Wedding, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateWedding")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not begin transaction")
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+weddingColumns+` FROM weddings WHERE id = ?`, id.String())
	wedding, err := scanWedding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundf("wedding not found")
	}
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not read wedding")
	}

	wedding.Merge(update)

	_, err = tx.ExecContext(ctx, `UPDATE weddings SET
		bride_name = ?, groom_name = ?, wedding_date = ?, wedding_time = ?,
		venue_name = ?, venue_address = ?, additional_info = ?,
		header_image = ?, header_text = ?, color_scheme = ?,
		background_color = ?, text_color = ?, accent_color = ?, is_active = ?
		WHERE id = ?`,
		wedding.BrideName, wedding.GroomName, wedding.WeddingDate,
		wedding.WeddingTime, wedding.VenueName, wedding.VenueAddress,
		wedding.AdditionalInfo, wedding.HeaderImage, wedding.HeaderText,
		wedding.ColorScheme, wedding.BackgroundColor, wedding.TextColor,
		wedding.AccentColor, boolToInt(wedding.Active), id.String(),
	)
	if err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not update wedding")
	}
	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		return nil, model.WrapInternal(err, "could not commit update")
	}
	return wedding, nil
}

// DeleteWedding removes the record and all guests referencing it in a
// single transaction and returns the total number of removed rows.
func (s *WeddingStore) DeleteWedding(ctx context.Context, id uuid.UUID) (int, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteWedding")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return 0, model.WrapInternal(err, "could not begin transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM guests WHERE wedding_id = ?`, id.String())
	if err != nil {
		span.RecordError(err)
		return 0, model.WrapInternal(err, "could not delete guests")
	}
	guestRows, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM weddings WHERE id = ?`, id.String())
	if err != nil {
		span.RecordError(err)
		return 0, model.WrapInternal(err, "could not delete wedding")
	}
	weddingRows, _ := res.RowsAffected()
	if weddingRows == 0 {
		return 0, model.NotFoundf("wedding not found")
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		return 0, model.WrapInternal(err, "could not commit delete")
	}
	return int(guestRows + weddingRows), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWedding(row rowScanner) (*model.Wedding, error) {
	var (
		wedding   model.Wedding
		id        string
		active    int
		createdAt time.Time
	)
	err := row.Scan(&id, &wedding.BrideName, &wedding.GroomName,
		&wedding.WeddingDate, &wedding.WeddingTime, &wedding.VenueName,
		&wedding.VenueAddress, &wedding.AdditionalInfo, &wedding.HeaderImage,
		&wedding.HeaderText, &wedding.ColorScheme, &wedding.BackgroundColor,
		&wedding.TextColor, &wedding.AccentColor, &wedding.Slug,
		&active, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	wedding.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	wedding.Active = active != 0
	wedding.CreatedAt = &createdAt
	return &wedding, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
