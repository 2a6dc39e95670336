package specification

import (
	"strings"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByOtp struct {
	Otp string
}

func (s ByOtp) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("otp = ?", s.Otp)
}

// NameMatches performs a case-insensitive partial match on the user name.
// LIKE metacharacters in the query are matched literally.
type NameMatches struct {
	Query string
}

func (s NameMatches) Apply(db *gorm.DB) *gorm.DB {
	escaped := likeEscaper.Replace(s.Query)
	return db.Where("name ILIKE ? ESCAPE '\\'", "%"+escaped+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
