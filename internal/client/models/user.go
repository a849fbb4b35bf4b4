// Package models holds the wire schemas exchanged with the API and the
// values cached in the credential store. Request types carry validate tags
// and are checked before they are sent.
package models

// User is the cached profile. It is passed through unchanged, so timestamps
// stay in whatever text form the server sent.
type User struct {
	ID        string `json:"id" validate:"required"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=30"`
	Bio    *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl" validate:"required"`
}
