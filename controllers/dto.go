package controllers

import (
	"bytes"
	"encoding/json"
	"time"

	"reservation-system/models"

	"github.com/google/uuid"
)

// looseString accepts a JSON string or a bare number and keeps its text.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = looseString(num.String())
	return nil
}

func (s *looseString) value() *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orEmpty(s *string) *string {
	if s == nil {
		empty := ""
		return &empty
	}
	return s
}

type UserResponse struct {
	ID          uuid.UUID    `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	PhoneNumber *string      `json:"phone_number"`
	DateOfBirth *models.Date `json:"date_of_birth"`
	IsActive    bool         `json:"is_active"`
	IsStaff     bool         `json:"is_staff"`
	LastLogin   *time.Time   `json:"last_login"`
	DateJoined  time.Time    `json:"date_joined"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		DateOfBirth: u.DateOfBirth,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		LastLogin:   u.LastLogin,
		DateJoined:  u.CreatedAt,
	}
}

type ServiceResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       string          `json:"price"`
	Duration    models.Duration `json:"duration"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func newServiceResponse(s *models.Service) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price.StringFixed(2),
		Duration:    s.Duration,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type ReservationResponse struct {
	ID              uuid.UUID                `json:"id"`
	User            uuid.UUID                `json:"user"`
	Service         uuid.UUID                `json:"service"`
	ReservationDate models.Date              `json:"reservation_date"`
	ReservationTime models.Clock             `json:"reservation_time"`
	Status          models.ReservationStatus `json:"status"`
}

func newReservationResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		User:            r.UserID,
		Service:         r.ServiceID,
		ReservationDate: r.ReservationDate,
		ReservationTime: r.ReservationTime,
		Status:          r.Status,
	}
}

type FeedbackResponse struct {
	ID          uuid.UUID `json:"id"`
	Reservation uuid.UUID `json:"reservation"`
	Rating      int       `json:"rating"`
	Comment     *string   `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

func newFeedbackResponse(f *models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:          f.ID,
		Reservation: f.ReservationID,
		Rating:      f.Rating,
		Comment:     f.Comment,
		CreatedAt:   f.CreatedAt,
	}
}
