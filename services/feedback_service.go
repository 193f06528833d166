package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"reservation-system/models"
	"reservation-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgFeedbackExists = "Feedback already exists for this reservation."

type FeedbackInput struct {
	Rating  string
	Comment string
}

// FeedbackAPIInput names the reservation in the body instead of the path.
type FeedbackAPIInput struct {
	ReservationID string
	Rating        string
	Comment       string
}

// FeedbackService accepts at most one review per reservation. Feedback is never
// updated or deleted directly; it goes away with its reservation.
type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

// CheckEligible reports whether the caller may still review the reservation.
func (s *FeedbackService) CheckEligible(ctx context.Context, identity Identity, reservationID uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.ownedReservation(ctx, identity, reservationID)
	if err != nil {
		return nil, err
	}
	exists, err := s.exists(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError(msgFeedbackExists)
	}
	return reservation, nil
}

func (s *FeedbackService) CreateFeedback(ctx context.Context, identity Identity, reservationID uuid.UUID, in FeedbackInput) (*models.Feedback, error) {
	reservation, err := s.CheckEligible(ctx, identity, reservationID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, reservation, in)
}

// ListFeedback returns every feedback entry, newest last.
func (s *FeedbackService) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	var feedback []models.Feedback
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&feedback).Error; err != nil {
		return nil, NewInternalError("failed to retrieve feedback", err)
	}
	return feedback, nil
}

// CreateFeedbackAPI applies the same one-per-reservation rule without owner scoping.
func (s *FeedbackService) CreateFeedbackAPI(ctx context.Context, in FeedbackAPIInput) (*models.Feedback, error) {
	raw := strings.TrimSpace(in.ReservationID)
	if raw == "" {
		return nil, NewValidationError("invalid feedback", FieldErrors{"reservation": msgRequired})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, NewValidationError("invalid feedback", FieldErrors{"reservation": msgBadChoice})
	}

	var reservation models.Reservation
	if err := s.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("invalid feedback", FieldErrors{"reservation": msgBadChoice})
		}
		return nil, NewInternalError("database error", err)
	}

	exists, err := s.exists(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError(msgFeedbackExists)
	}
	return s.create(ctx, &reservation, FeedbackInput{Rating: in.Rating, Comment: in.Comment})
}

func (s *FeedbackService) GetByReservation(ctx context.Context, reservationID uuid.UUID) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := s.db.WithContext(ctx).First(&feedback, "reservation_id = ?", reservationID).Error; err != nil {
		return nil, lookupError(err, "feedback")
	}
	return &feedback, nil
}

func (s *FeedbackService) create(ctx context.Context, reservation *models.Reservation, in FeedbackInput) (*models.Feedback, error) {
	if strings.TrimSpace(in.Rating) == "" {
		return nil, NewValidationError("invalid feedback", FieldErrors{"rating": msgRequired})
	}
	rating, err := utils.ParseRating(in.Rating)
	if err != nil {
		return nil, NewConstraintError("invalid feedback", FieldErrors{
			"rating": "Rating must be a whole number from 1 to 5.",
		})
	}

	feedback := &models.Feedback{
		ReservationID: reservation.ID,
		Reservation:   reservation,
		Rating:        rating,
		CreatedAt:     time.Now().UTC(),
	}
	if comment := strings.TrimSpace(in.Comment); comment != "" {
		feedback.Comment = &comment
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(feedback).Error; err != nil {
		// Lost a race with another submission for the same reservation
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewConflictError(msgFeedbackExists)
		}
		return nil, NewInternalError("failed to save feedback", err)
	}
	return feedback, nil
}

func (s *FeedbackService) ownedReservation(ctx context.Context, identity Identity, id uuid.UUID) (*models.Reservation, error) {
	if !identity.IsAuthenticated() {
		return nil, NewAuthenticationError("authentication required")
	}

	var reservation models.Reservation
	err := s.db.WithContext(ctx).
		Preload("Service").
		Where("id = ? AND user_id = ?", id, identity.UserID).
		First(&reservation).Error
	if err != nil {
		return nil, lookupError(err, "reservation")
	}
	return &reservation, nil
}

func (s *FeedbackService) exists(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("reservation_id = ?", reservationID).
		Count(&count).Error
	if err != nil {
		return false, NewInternalError("database error", err)
	}
	return count > 0, nil
}
