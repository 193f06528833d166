package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reservation-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgBadChoice = "Select a valid choice. That choice is not one of the available choices."
	msgBadTime   = "Enter a valid time."
)

// ReservationInput is what a user submits when booking a service for themselves.
// An empty Date means today.
type ReservationInput struct {
	ServiceID string
	Date      string
	Time      string
}

// ReservationPatch updates only the non-nil fields.
type ReservationPatch struct {
	ServiceID *string
	Date      *string
	Time      *string
}

// ReservationAPIInput lets an API caller name any owner and status.
type ReservationAPIInput struct {
	UserID    string
	ServiceID string
	Date      string
	Time      string
	Status    string
}

type ReservationAPIPatch struct {
	ReservationPatch
	UserID *string
	Status *string
}

// ReservationService books services. The owner-scoped methods back the pages,
// the unscoped ones back the JSON API.
type ReservationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{db: db, now: time.Now}
}

func (s *ReservationService) CreateReservation(ctx context.Context, identity Identity, in ReservationInput) (*models.Reservation, error) {
	if !identity.IsAuthenticated() {
		return nil, NewAuthenticationError("authentication required")
	}

	reservation := &models.Reservation{
		UserID: identity.UserID,
		Status: models.StatusPending,
	}
	fields := FieldErrors{}
	s.applyPatch(ctx, reservation, ReservationPatch{
		ServiceID: &in.ServiceID,
		Date:      &in.Date,
		Time:      &in.Time,
	}, fields)
	if len(fields) > 0 {
		return nil, NewValidationError("invalid reservation", fields)
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(reservation).Error; err != nil {
		return nil, NewInternalError("failed to create reservation", err)
	}
	return reservation, nil
}

// ListMyReservations returns only the caller's reservations with their services loaded.
func (s *ReservationService) ListMyReservations(ctx context.Context, identity Identity) ([]models.Reservation, error) {
	if !identity.IsAuthenticated() {
		return nil, NewAuthenticationError("authentication required")
	}

	var reservations []models.Reservation
	err := s.db.WithContext(ctx).
		Preload("Service").
		Where("user_id = ?", identity.UserID).
		Order("reservation_date, reservation_time, created_at").
		Find(&reservations).Error
	if err != nil {
		return nil, NewInternalError("failed to retrieve reservations", err)
	}
	return reservations, nil
}

// GetMyReservation reports foreign and missing reservations alike as NotFound.
func (s *ReservationService) GetMyReservation(ctx context.Context, identity Identity, id uuid.UUID) (*models.Reservation, error) {
	return s.findOwned(s.db.WithContext(ctx), identity, id)
}

func (s *ReservationService) UpdateReservation(ctx context.Context, identity Identity, id uuid.UUID, patch ReservationPatch) (*models.Reservation, error) {
	reservation, err := s.GetMyReservation(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	fields := FieldErrors{}
	s.applyPatch(ctx, reservation, patch, fields)
	if len(fields) > 0 {
		return nil, NewValidationError("invalid reservation", fields)
	}
	if err := s.save(ctx, reservation, identity.UserID); err != nil {
		return nil, err
	}
	return reservation, nil
}

// DeleteReservation removes the caller's reservation and its feedback.
func (s *ReservationService) DeleteReservation(ctx context.Context, identity Identity, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.findOwned(tx, identity, id)
		if err != nil {
			return err
		}
		return deleteReservation(tx, reservation.ID)
	})
}

// ListAll returns every reservation regardless of owner.
func (s *ReservationService) ListAll(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&reservations).Error; err != nil {
		return nil, NewInternalError("failed to retrieve reservations", err)
	}
	return reservations, nil
}

func (s *ReservationService) Get(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "reservation")
	}
	return &reservation, nil
}

func (s *ReservationService) CreateAny(ctx context.Context, in ReservationAPIInput) (*models.Reservation, error) {
	reservation := &models.Reservation{Status: models.StatusPending}
	fields := FieldErrors{}
	s.applyAPIPatch(ctx, reservation, ReservationAPIPatch{
		ReservationPatch: ReservationPatch{
			ServiceID: &in.ServiceID,
			Date:      &in.Date,
			Time:      &in.Time,
		},
		UserID: &in.UserID,
		Status: optional(in.Status),
	}, fields)
	if len(fields) > 0 {
		return nil, NewValidationError("invalid reservation", fields)
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(reservation).Error; err != nil {
		return nil, NewInternalError("failed to create reservation", err)
	}
	return reservation, nil
}

func (s *ReservationService) Update(ctx context.Context, id uuid.UUID, patch ReservationAPIPatch) (*models.Reservation, error) {
	reservation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := FieldErrors{}
	s.applyAPIPatch(ctx, reservation, patch, fields)
	if len(fields) > 0 {
		return nil, NewValidationError("invalid reservation", fields)
	}
	if err := s.save(ctx, reservation, uuid.Nil); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *ReservationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.Select("id").First(&reservation, "id = ?", id).Error; err != nil {
			return lookupError(err, "reservation")
		}
		return deleteReservation(tx, reservation.ID)
	})
}

func (s *ReservationService) findOwned(db *gorm.DB, identity Identity, id uuid.UUID) (*models.Reservation, error) {
	if !identity.IsAuthenticated() {
		return nil, NewAuthenticationError("authentication required")
	}

	var reservation models.Reservation
	err := db.Preload("Service").
		Where("id = ? AND user_id = ?", id, identity.UserID).
		First(&reservation).Error
	if err != nil {
		return nil, lookupError(err, "reservation")
	}
	return &reservation, nil
}

// save writes the editable columns of an existing row. A row deleted since the
// lookup, or no longer owned by owner when owner is set, yields NotFound.
func (s *ReservationService) save(ctx context.Context, reservation *models.Reservation, owner uuid.UUID) error {
	query := s.db.WithContext(ctx).Model(&models.Reservation{}).Where("id = ?", reservation.ID)
	if owner != uuid.Nil {
		query = query.Where("user_id = ?", owner)
	}

	now := s.now()
	result := query.Updates(map[string]interface{}{
		"user_id":          reservation.UserID,
		"service_id":       reservation.ServiceID,
		"reservation_date": reservation.ReservationDate,
		"reservation_time": reservation.ReservationTime,
		"status":           reservation.Status,
		"updated_at":       now,
	})
	if result.Error != nil {
		return NewInternalError("failed to update reservation", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("reservation not found")
	}
	reservation.UpdatedAt = now
	return nil
}

func (s *ReservationService) applyPatch(ctx context.Context, r *models.Reservation, patch ReservationPatch, fields FieldErrors) {
	if patch.ServiceID != nil {
		if service, msg := s.resolveService(ctx, *patch.ServiceID); msg != "" {
			fields["service"] = msg
		} else {
			r.ServiceID = service.ID
			r.Service = service
		}
	}

	if patch.Date != nil {
		raw := strings.TrimSpace(*patch.Date)
		if raw == "" {
			r.ReservationDate = models.DateOf(s.now())
		} else if date, err := models.ParseDate(raw); err != nil {
			fields["reservation_date"] = msgBadDate
		} else {
			r.ReservationDate = date
		}
	}

	if patch.Time != nil {
		raw := strings.TrimSpace(*patch.Time)
		if raw == "" {
			fields["reservation_time"] = msgRequired
		} else if clock, err := models.ParseClock(raw); err != nil {
			fields["reservation_time"] = msgBadTime
		} else {
			r.ReservationTime = clock
		}
	}
}

func (s *ReservationService) applyAPIPatch(ctx context.Context, r *models.Reservation, patch ReservationAPIPatch, fields FieldErrors) {
	s.applyPatch(ctx, r, patch.ReservationPatch, fields)

	if patch.UserID != nil {
		if user, msg := s.resolveUser(ctx, *patch.UserID); msg != "" {
			fields["user"] = msg
		} else {
			r.UserID = user.ID
			r.User = user
		}
	}

	if patch.Status != nil {
		status, ok := models.ParseReservationStatus(strings.TrimSpace(*patch.Status))
		if !ok {
			fields["status"] = fmt.Sprintf("%q is not a valid choice.", *patch.Status)
		} else {
			r.Status = status
		}
	}
}

// resolveService returns the referenced service, or a field message when there is none.
func (s *ReservationService) resolveService(ctx context.Context, raw string) (*models.Service, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, msgRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, msgBadChoice
	}
	var service models.Service
	if err := s.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, msgBadChoice
	}
	return &service, ""
}

func (s *ReservationService) resolveUser(ctx context.Context, raw string) (*models.User, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, msgRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, msgBadChoice
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, msgBadChoice
	}
	return &user, ""
}

// deleteReservation must run inside a transaction.
func deleteReservation(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("reservation_id = ?", id).Delete(&models.Feedback{}).Error; err != nil {
		return NewInternalError("failed to delete feedback", err)
	}
	if err := tx.Where("id = ?", id).Delete(&models.Reservation{}).Error; err != nil {
		return NewInternalError("failed to delete reservation", err)
	}
	return nil
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
