package models

import "time"

// User is the identity every follow edge, micropost and message points at.
// Rows are hard-deleted so the cascades below actually run.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"size:50;not null"`
	Username       string    `json:"username" gorm:"size:15;not null;uniqueIndex"`
	Email          string    `json:"email" gorm:"not null;uniqueIndex"` // stored lower-cased
	PasswordDigest string    `json:"-" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser is the input for registering a user
type NewUser struct {
	Name                 string `json:"name" validate:"required,max=50"`
	Username             string `json:"username" validate:"required,max=15,word"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// UserCompact is the public projection of a user used in listings
type UserCompact struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, Username: u.Username}
}
