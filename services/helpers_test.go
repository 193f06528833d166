package services

import (
	"context"
	"testing"

	"reservation-system/models"
	"reservation-system/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db           *gorm.DB
	tokens       *MemoryTokenStore
	identity     *IdentityService
	catalog      *CatalogService
	reservations *ReservationService
	feedback     *FeedbackService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	tokens := NewMemoryTokenStore()
	return &fixture{
		db:           db,
		tokens:       tokens,
		identity:     NewIdentityService(db, tokens),
		catalog:      NewCatalogService(db),
		reservations: NewReservationService(db),
		feedback:     NewFeedbackService(db),
	}
}

func (f *fixture) register(t *testing.T, username string) Identity {
	t.Helper()
	user, err := f.identity.Register(context.Background(), RegisterInput{
		Username:  username,
		Email:     username + "@x.com",
		Password1: "s3cret-pass",
		Password2: "s3cret-pass",
	})
	require.NoError(t, err)
	return Identity{UserID: user.ID, Username: user.Username}
}

func (f *fixture) haircut(t *testing.T) *models.Service {
	t.Helper()
	service, err := f.catalog.CreateService(context.Background(), ServiceInput{
		Name:        "Haircut",
		Description: "Wash and cut",
		Price:       "50.00",
		Duration:    "01:00:00",
	})
	require.NoError(t, err)
	return service
}

func (f *fixture) book(t *testing.T, who Identity, service *models.Service) *models.Reservation {
	t.Helper()
	reservation, err := f.reservations.CreateReservation(context.Background(), who, ReservationInput{
		ServiceID: service.ID.String(),
		Date:      "2024-12-20",
		Time:      "15:00:00",
	})
	require.NoError(t, err)
	return reservation
}

// deleteBeforeUpdate removes the row from table just before the next UPDATE on
// that table runs, the way a concurrent delete would.
func (f *fixture) deleteBeforeUpdate(t *testing.T, table string, id uuid.UUID) {
	t.Helper()
	fired := false
	err := f.db.Callback().Update().Before("gorm:update").Register("test:concurrent_delete", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if table == "reservations" {
			tx.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM feedback WHERE reservation_id = ?", id)
		}
		tx.Session(&gorm.Session{NewDB: true}).Exec("DELETE FROM "+table+" WHERE id = ?", id)
	})
	require.NoError(t, err)
}

func (f *fixture) count(t *testing.T, model interface{}, id uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where("id = ?", id).Count(&n).Error)
	return n
}

func requireType(t *testing.T, err error, want ErrorType) *AppError {
	t.Helper()
	require.Error(t, err)
	appErr := AsAppError(err)
	require.Equal(t, want, appErr.Type, "error: %v", err)
	return appErr
}
