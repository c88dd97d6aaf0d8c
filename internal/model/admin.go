// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AdminUser struct {
	ID           uuid.UUID  `json:"id"`
	CreatedAt    *time.Time `json:"created_at"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
}

// NewAdminUser hashes the plain password with bcrypt.
func NewAdminUser(username, password string) (*AdminUser, error) {
	if username == "" || password == "" {
		return nil, Validationf("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, WrapInternal(err, "could not hash password")
	}
	return &AdminUser{Username: username, PasswordHash: string(hash)}, nil
}

func (a *AdminUser) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
