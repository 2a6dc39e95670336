package specification

import (
	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type Limit struct {
	Limit int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit)
}

type Offset struct {
	Offset int
}

func (s Offset) Apply(db *gorm.DB) *gorm.DB {
	return db.Offset(s.Offset)
}

type OrderBy struct {
	Column string
	Desc   bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(s.Column + " " + direction)
}
