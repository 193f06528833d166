package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Feedback struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ReservationID uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null"`
	Reservation   *Reservation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Rating        int          `gorm:"type:smallint;not null;check:rating >= 1 AND rating <= 5"`
	Comment       *string      `gorm:"type:text"`
	CreatedAt     time.Time    `gorm:"autoCreateTime"`
}

func (Feedback) TableName() string { return "feedback" }

func (f *Feedback) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

// String needs Reservation with its User and Service loaded.
func (f Feedback) String() string {
	service, username := "", ""
	if f.Reservation != nil {
		if f.Reservation.Service != nil {
			service = f.Reservation.Service.Name
		}
		if f.Reservation.User != nil {
			username = f.Reservation.User.Username
		}
	}
	return fmt.Sprintf("Feedback for %s by %s", service, username)
}
