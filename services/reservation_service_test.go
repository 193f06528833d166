package services

import (
	"context"
	"testing"
	"time"

	"reservation-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReservationIsPending(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	service := f.haircut(t)

	reservation := f.book(t, alice, service)
	assert.Equal(t, models.StatusPending, reservation.Status)
	assert.Equal(t, alice.UserID, reservation.UserID)

	got, err := f.reservations.GetMyReservation(context.Background(), alice, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-20", got.ReservationDate.String())
	assert.Equal(t, "15:00:00", got.ReservationTime.String())
	assert.Equal(t, models.StatusPending, got.Status)
	require.NotNil(t, got.Service)
	assert.Equal(t, "Haircut", got.Service.Name)
}

func TestCreateReservationDefaultsToToday(t *testing.T) {
	f := newFixture(t)
	f.reservations.now = func() time.Time { return time.Date(2025, 3, 9, 18, 30, 0, 0, time.UTC) }
	alice := f.register(t, "alice")
	service := f.haircut(t)

	reservation, err := f.reservations.CreateReservation(context.Background(), alice, ReservationInput{
		ServiceID: service.ID.String(),
		Time:      "09:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09", reservation.ReservationDate.String())
	assert.Equal(t, "09:30:00", reservation.ReservationTime.String())
}

func TestCreateReservationRejectsUnknownService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	for _, serviceID := range []string{uuid.NewString(), "not-a-uuid", ""} {
		_, err := f.reservations.CreateReservation(ctx, alice, ReservationInput{
			ServiceID: serviceID,
			Date:      "2024-12-20",
			Time:      "15:00",
		})
		appErr := requireType(t, err, ErrorTypeValidation)
		assert.Contains(t, appErr.Fields, "service")
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Reservation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateReservationValidatesDateAndTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	service := f.haircut(t)

	_, err := f.reservations.CreateReservation(ctx, alice, ReservationInput{
		ServiceID: service.ID.String(),
		Date:      "2024-13-45",
		Time:      "25:99",
	})
	appErr := requireType(t, err, ErrorTypeValidation)
	assert.Contains(t, appErr.Fields, "reservation_date")
	assert.Contains(t, appErr.Fields, "reservation_time")

	_, err = f.reservations.CreateReservation(ctx, Identity{}, ReservationInput{ServiceID: service.ID.String(), Time: "10:00"})
	requireType(t, err, ErrorTypeAuthentication)
}

func TestDoubleBookingIsAccepted(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	service := f.haircut(t)

	first := f.book(t, alice, service)
	second := f.book(t, bob, service)
	third := f.book(t, alice, service)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestListMyReservationsIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	service := f.haircut(t)

	f.book(t, alice, service)
	f.book(t, alice, service)
	mine := f.book(t, bob, service)

	aliceList, err := f.reservations.ListMyReservations(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, aliceList, 2)
	for _, r := range aliceList {
		assert.Equal(t, alice.UserID, r.UserID)
	}

	bobList, err := f.reservations.ListMyReservations(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobList, 1)
	assert.Equal(t, mine.ID, bobList[0].ID)

	all, err := f.reservations.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestForeignReservationIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	reservation := f.book(t, alice, f.haircut(t))

	_, err := f.reservations.GetMyReservation(ctx, bob, reservation.ID)
	requireType(t, err, ErrorTypeNotFound)

	newTime := "18:00"
	_, err = f.reservations.UpdateReservation(ctx, bob, reservation.ID, ReservationPatch{Time: &newTime})
	requireType(t, err, ErrorTypeNotFound)

	err = f.reservations.DeleteReservation(ctx, bob, reservation.ID)
	requireType(t, err, ErrorTypeNotFound)

	err = f.reservations.DeleteReservation(ctx, alice, uuid.New())
	requireType(t, err, ErrorTypeNotFound)

	got, err := f.reservations.GetMyReservation(ctx, alice, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, "15:00:00", got.ReservationTime.String())
}

func TestUpdateReservationKeepsOwnerAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	reservation := f.book(t, alice, f.haircut(t))
	other, err := f.catalog.CreateService(ctx, ServiceInput{Name: "Shave", Price: "20.00", Duration: "00:20:00"})
	require.NoError(t, err)

	serviceID := other.ID.String()
	date := "2025-01-02"
	updated, err := f.reservations.UpdateReservation(ctx, alice, reservation.ID, ReservationPatch{
		ServiceID: &serviceID,
		Date:      &date,
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.ServiceID)

	got, err := f.reservations.GetMyReservation(ctx, alice, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ServiceID)
	assert.Equal(t, "2025-01-02", got.ReservationDate.String())
	assert.Equal(t, "15:00:00", got.ReservationTime.String())
	assert.Equal(t, alice.UserID, got.UserID)
	assert.Equal(t, models.StatusPending, got.Status)

	bad := uuid.NewString()
	_, err = f.reservations.UpdateReservation(ctx, alice, reservation.ID, ReservationPatch{ServiceID: &bad})
	requireType(t, err, ErrorTypeValidation)
}

func TestDeleteReservationCascadesFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	reservation := f.book(t, alice, f.haircut(t))

	_, err := f.feedback.CreateFeedback(ctx, alice, reservation.ID, FeedbackInput{Rating: "5", Comment: "Great"})
	require.NoError(t, err)
	_, err = f.feedback.GetByReservation(ctx, reservation.ID)
	require.NoError(t, err)

	require.NoError(t, f.reservations.DeleteReservation(ctx, alice, reservation.ID))

	_, err = f.feedback.GetByReservation(ctx, reservation.ID)
	requireType(t, err, ErrorTypeNotFound)
	_, err = f.reservations.GetMyReservation(ctx, alice, reservation.ID)
	requireType(t, err, ErrorTypeNotFound)
}

func TestAPIReservationsIgnoreOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	service := f.haircut(t)

	created, err := f.reservations.CreateAny(ctx, ReservationAPIInput{
		UserID:    alice.UserID.String(),
		ServiceID: service.ID.String(),
		Date:      "2024-12-20",
		Time:      "10:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)

	status := "Confirmed"
	owner := bob.UserID.String()
	updated, err := f.reservations.Update(ctx, created.ID, ReservationAPIPatch{UserID: &owner, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Equal(t, bob.UserID, updated.UserID)

	status = "Done"
	_, err = f.reservations.Update(ctx, created.ID, ReservationAPIPatch{Status: &status})
	appErr := requireType(t, err, ErrorTypeValidation)
	assert.Contains(t, appErr.Fields, "status")

	_, err = f.reservations.CreateAny(ctx, ReservationAPIInput{ServiceID: service.ID.String(), Time: "10:00"})
	appErr = requireType(t, err, ErrorTypeValidation)
	assert.Contains(t, appErr.Fields, "user")

	require.NoError(t, f.reservations.Delete(ctx, created.ID))
	_, err = f.reservations.Get(ctx, created.ID)
	requireType(t, err, ErrorTypeNotFound)
	requireType(t, f.reservations.Delete(ctx, created.ID), ErrorTypeNotFound)
}

func TestUpdateReservationDeletedMeanwhileIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	reservation := f.book(t, alice, f.haircut(t))

	f.deleteBeforeUpdate(t, "reservations", reservation.ID)
	slot := "16:00"
	_, err := f.reservations.UpdateReservation(ctx, alice, reservation.ID, ReservationPatch{Time: &slot})
	requireType(t, err, ErrorTypeNotFound)
	assert.Zero(t, f.count(t, &models.Reservation{}, reservation.ID))
}

func TestAPIUpdateDeletedMeanwhileIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	reservation := f.book(t, alice, f.haircut(t))

	f.deleteBeforeUpdate(t, "reservations", reservation.ID)
	status := string(models.StatusConfirmed)
	_, err := f.reservations.Update(ctx, reservation.ID, ReservationAPIPatch{Status: &status})
	requireType(t, err, ErrorTypeNotFound)
	assert.Zero(t, f.count(t, &models.Reservation{}, reservation.ID))
}
