// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChildDetail describes one accompanying child. Over6 feeds the
// per-wedding statistics split.
type ChildDetail struct {
	Name  string `json:"name"`
	Over6 bool   `json:"over6"`
}

// Guest is one RSVP submission: a responsible person plus the adults and
// children attending with them.
type Guest struct {
	ID              uuid.UUID     `json:"id"`
	WeddingID       uuid.UUID     `json:"wedding_id"`
	WeddingSlug     string        `json:"wedding_slug"`
	CreatedAt       *time.Time    `json:"created_at"`
	Name            string        `json:"name"`
	Adults          int           `json:"adults"`
	Children        int           `json:"children"`
	AdultNames      []string      `json:"adults_names"`
	ChildrenDetails []ChildDetail `json:"children_details"`
	Phone           string        `json:"phone"`
}

// GuestStats aggregates the confirmations of one wedding. The over/under
// six split counts individual children, not submissions.
type GuestStats struct {
	Confirmations  int `json:"total_confirmations"`
	Adults         int `json:"total_adults"`
	Children       int `json:"total_children"`
	People         int `json:"total_people"`
	ChildrenOver6  int `json:"total_children_over6"`
	ChildrenUnder6 int `json:"total_children_under6"`
}

// Add merges a single guest into the aggregate.
func (s *GuestStats) Add(g *Guest) {
	s.Confirmations++
	s.Adults += g.Adults
	s.Children += g.Children
	s.People += g.Adults + g.Children
	for _, child := range g.ChildrenDetails {
		if child.Over6 {
			s.ChildrenOver6++
		} else {
			s.ChildrenUnder6++
		}
	}
}

// RSVPRequest is the public submission payload. Validation mirrors the
// structural rules checked before anything is persisted.
type RSVPRequest struct {
	Name            string        `json:"name"`
	Adults          int           `json:"adults"`
	Children        int           `json:"children"`
	AdultNames      []string      `json:"adults_names"`
	ChildrenDetails []ChildDetail `json:"children_details"`
	Phone           string        `json:"phone"`
}

func (r *RSVPRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Phone) == "" {
		return Validationf("name and phone are required")
	}
	if r.Adults < 0 || r.Children < 0 {
		return Validationf("adults and children must not be negative")
	}
	if r.Adults+r.Children == 0 {
		return Validationf("at least one person must be confirmed")
	}
	if r.Adults > 0 {
		if len(r.AdultNames) != r.Adults {
			return Validationf("expected %d adult names, got %d", r.Adults, len(r.AdultNames))
		}
		for _, name := range r.AdultNames {
			if strings.TrimSpace(name) == "" {
				return Validationf("all adult names must be filled in")
			}
		}
	}
	if r.Children > 0 {
		if len(r.ChildrenDetails) != r.Children {
			return Validationf("expected %d child details, got %d", r.Children, len(r.ChildrenDetails))
		}
		for _, child := range r.ChildrenDetails {
			if strings.TrimSpace(child.Name) == "" {
				return Validationf("all child names must be filled in")
			}
		}
	}
	return nil
}

// Guest converts a validated request into the entity to persist, with
// every free-text field trimmed.
func (r *RSVPRequest) Guest(wedding *Wedding) *Guest {
	g := &Guest{
		WeddingID:       wedding.ID,
		WeddingSlug:     wedding.Slug,
		Name:            strings.TrimSpace(r.Name),
		Adults:          r.Adults,
		Children:        r.Children,
		AdultNames:      []string{},
		ChildrenDetails: []ChildDetail{},
		Phone:           strings.TrimSpace(r.Phone),
	}
	for _, name := range r.AdultNames {
		g.AdultNames = append(g.AdultNames, strings.TrimSpace(name))
	}
	for _, child := range r.ChildrenDetails {
		g.ChildrenDetails = append(g.ChildrenDetails, ChildDetail{
			Name:  strings.TrimSpace(child.Name),
			Over6: child.Over6,
		})
	}
	return g
}
