package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "Pending"
	StatusConfirmed ReservationStatus = "Confirmed"
	StatusCancelled ReservationStatus = "Cancelled"
)

var ReservationStatuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusCancelled}

func ParseReservationStatus(value string) (ReservationStatus, bool) {
	for _, status := range ReservationStatuses {
		if string(status) == value {
			return status, true
		}
	}
	return "", false
}

type Reservation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ServiceID uuid.UUID `gorm:"type:uuid;index;not null"`
	Service   *Service  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	// No uniqueness over (service, date, time): the same slot may be booked twice.
	ReservationDate Date              `gorm:"not null"`
	ReservationTime Clock             `gorm:"not null"`
	Status          ReservationStatus `gorm:"type:varchar(10);not null;default:'Pending'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	return
}

// String needs User and Service loaded.
func (r Reservation) String() string {
	username, service := "", ""
	if r.User != nil {
		username = r.User.Username
	}
	if r.Service != nil {
		service = r.Service.Name
	}
	return fmt.Sprintf("%s - %s on %s", username, service, r.ReservationDate)
}
