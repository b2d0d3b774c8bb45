package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents a console user account.
// Users authenticate against the local database and carry exactly one
// Group Company role string (READ/WRITE/ADMIN) which drives every
// permission decision via the policy package.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"userId"`
	// Active indicates whether the user account is active and can log in.
	Active bool `json:"-"`
	// Username is the unique username for login.
	Username string `gorm:"unique;size:100;not null" json:"-"`
	// UserName is the display name shown in the console and matched against
	// the RM field of mapping records for ownership checks.
	UserName string `gorm:"size:100;not null" json:"userName"`
	// Email is the user's email address.
	Email string `gorm:"size:255" json:"-"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255" json:"-"`
	// GroupCompanyRole is the raw role string (READ/WRITE/ADMIN).
	GroupCompanyRole string `gorm:"size:20;not null" json:"groupCompanyRole"`
	// Department the user belongs to, used by the RM dropdown lookup.
	Department string `gorm:"size:100" json:"-"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"-"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
	// DeletedAt is the soft delete timestamp (nil if not deleted, managed by GORM).
	DeletedAt *time.Time `json:"-"`
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored
// hashed password using constant-time comparison.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
