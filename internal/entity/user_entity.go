package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Verified     bool
	VerifiedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmailVerificationToken is an OTP record issued at registration. Several
// records may coexist for one user; verification matches the most recent.
// Stale records are left in place rather than deleted.
type EmailVerificationToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Otp       string
	CreatedAt time.Time
	ExpiresAt time.Time
}
