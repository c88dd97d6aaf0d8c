// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default theme applied to weddings created without explicit colors.
const (
	DefaultColorScheme     = "marsala"
	DefaultBackgroundColor = "#9c2851"
	DefaultTextColor       = "#ffffff"
	DefaultAccentColor     = "#d4af37"
)

type Wedding struct {
	ID              uuid.UUID  `json:"id"`
	CreatedAt       *time.Time `json:"created_at"`
	BrideName       string     `json:"bride_name"`
	GroomName       string     `json:"groom_name"`
	WeddingDate     string     `json:"wedding_date,omitempty"`
	WeddingTime     string     `json:"wedding_time,omitempty"`
	VenueName       string     `json:"venue_name,omitempty"`
	VenueAddress    string     `json:"venue_address,omitempty"`
	AdditionalInfo  string     `json:"additional_info,omitempty"`
	HeaderImage     string     `json:"header_image,omitempty"`
	HeaderText      string     `json:"header_text,omitempty"`
	ColorScheme     string     `json:"color_scheme"`
	BackgroundColor string     `json:"background_color"`
	TextColor       string     `json:"text_color"`
	AccentColor     string     `json:"accent_color"`
	Slug            string     `json:"slug"`
	Active          bool       `json:"is_active"`
}

func (w *Wedding) Validate() error {
	if strings.TrimSpace(w.BrideName) == "" {
		return Validationf("bride name is required")
	}
	if strings.TrimSpace(w.GroomName) == "" {
		return Validationf("groom name is required")
	}
	return nil
}

// ApplyDefaults fills empty theme fields with the default scheme.
func (w *Wedding) ApplyDefaults() {
	if w.ColorScheme == "" {
		w.ColorScheme = DefaultColorScheme
	}
	if w.BackgroundColor == "" {
		w.BackgroundColor = DefaultBackgroundColor
	}
	if w.TextColor == "" {
		w.TextColor = DefaultTextColor
	}
	if w.AccentColor == "" {
		w.AccentColor = DefaultAccentColor
	}
}

// DeriveSlug builds the URL key for a wedding created without one:
// both names lowercased with whitespace folded to hyphens, the compact
// date and the creation timestamp in milliseconds as uniqueness suffix.
func DeriveSlug(brideName, groomName, weddingDate string, now time.Time) string {
	date := strings.ReplaceAll(weddingDate, "-", "")
	return fmt.Sprintf("%s-%s-%s-%d",
		slugify(brideName), slugify(groomName), date, now.UnixMilli())
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WeddingUpdate is a partial wedding. Merge treats empty fields as
// "keep the previous value"; Active uses a pointer so a deactivation is
// distinguishable from an absent field.
type WeddingUpdate struct {
	BrideName       string `json:"bride_name"`
	GroomName       string `json:"groom_name"`
	WeddingDate     string `json:"wedding_date"`
	WeddingTime     string `json:"wedding_time"`
	VenueName       string `json:"venue_name"`
	VenueAddress    string `json:"venue_address"`
	AdditionalInfo  string `json:"additional_info"`
	HeaderImage     string `json:"header_image"`
	HeaderText      string `json:"header_text"`
	ColorScheme     string `json:"color_scheme"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	AccentColor     string `json:"accent_color"`
	Active          *bool  `json:"is_active"`
}

// Merge applies the update on top of w, field by field. The slug, ID and
// creation timestamp never change after creation.
func (w *Wedding) Merge(u WeddingUpdate) {
	override(&w.BrideName, u.BrideName)
	override(&w.GroomName, u.GroomName)
	override(&w.WeddingDate, u.WeddingDate)
	override(&w.WeddingTime, u.WeddingTime)
	override(&w.VenueName, u.VenueName)
	override(&w.VenueAddress, u.VenueAddress)
	override(&w.AdditionalInfo, u.AdditionalInfo)
	override(&w.HeaderImage, u.HeaderImage)
	override(&w.HeaderText, u.HeaderText)
	override(&w.ColorScheme, u.ColorScheme)
	override(&w.BackgroundColor, u.BackgroundColor)
	override(&w.TextColor, u.TextColor)
	override(&w.AccentColor, u.AccentColor)
	if u.Active != nil {
		w.Active = *u.Active
	}
}

func override(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}
