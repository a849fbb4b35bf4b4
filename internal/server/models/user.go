// Package models defines the dev server's persisted records.
package models

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Bio          string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate lists the profile fields to change; nil fields are left alone.
type UserUpdate struct {
	Name         *string
	Bio          *string
	Avatar       *string
	PasswordHash *string
}

// Apply copies the set fields of upd into u.
func (u *User) Apply(upd UserUpdate) {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
}
