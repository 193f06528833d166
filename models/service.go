package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"size:100;not null"`
	Description string          `gorm:"type:text;not null;default:''"`
	Price       decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	Duration    Duration        `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

func (s Service) String() string {
	return s.Name
}
