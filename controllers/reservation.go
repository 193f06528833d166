// controllers/reservation.go
package controllers

import (
	"net/http"

	"reservation-system/models"
	"reservation-system/services"
	"reservation-system/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// ReservationForm is the page form. The owner always comes from the session.
type ReservationForm struct {
	Service string `form:"service"`
	Date    string `form:"reservation_date" binding:"omitempty,isodate"`
	Time    string `form:"reservation_time" binding:"omitempty,clock"`
}

// ReservationInput defines the expected JSON structure of the API. Unlike the
// pages the API names the owner and may set the status.
type ReservationInput struct {
	User    *string `json:"user" binding:"omitempty,uuid"`
	Service *string `json:"service" binding:"omitempty,uuid"`
	Date    *string `json:"reservation_date" binding:"omitempty,isodate"`
	Time    *string `json:"reservation_time" binding:"omitempty,clock"`
	Status  *string `json:"status" binding:"omitempty,oneof=Pending Confirmed Cancelled"`
}

// ReservationController serves the owner-scoped reservation pages and the
// unscoped /api/reservations resource
type ReservationController struct {
	Reservations *services.ReservationService
	Catalog      *services.CatalogService
	Created      prometheus.Counter
}

func (rc *ReservationController) ListPage(c *gin.Context) {
	list, err := rc.Reservations.ListMyReservations(c.Request.Context(), identityFrom(c))
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "reservations_list.html", gin.H{"Reservations": list})
}

func (rc *ReservationController) CreatePage(c *gin.Context) {
	rc.renderForm(c, http.StatusOK, "/reservations/create/", map[string]string{
		"service": c.Query("service"),
	}, nil)
}

func (rc *ReservationController) Create(c *gin.Context) {
	var form ReservationForm
	if err := c.ShouldBind(&form); err != nil {
		rc.formFailure(c, "/reservations/create/", form, bindError(err))
		return
	}

	_, err := rc.Reservations.CreateReservation(c.Request.Context(), identityFrom(c), services.ReservationInput{
		ServiceID: form.Service,
		Date:      form.Date,
		Time:      form.Time,
	})
	if err != nil {
		rc.formFailure(c, "/reservations/create/", form, err)
		return
	}
	if rc.Created != nil {
		rc.Created.Inc()
	}

	utils.AddFlash(c, utils.FlashSuccess, "Reservation created successfully!")
	c.Redirect(http.StatusFound, "/reservations/")
}

// EditPage serves both /reservations/update/:id/ and /reservations/edit/:id/.
func (rc *ReservationController) EditPage(c *gin.Context) {
	reservation, ok := rc.owned(c)
	if !ok {
		return
	}
	rc.renderForm(c, http.StatusOK, c.Request.URL.Path, map[string]string{
		"service":          reservation.ServiceID.String(),
		"reservation_date": reservation.ReservationDate.String(),
		"reservation_time": reservation.ReservationTime.String(),
	}, nil)
}

func (rc *ReservationController) Update(c *gin.Context) {
	reservation, ok := rc.owned(c)
	if !ok {
		return
	}

	var form ReservationForm
	if err := c.ShouldBind(&form); err != nil {
		rc.formFailure(c, c.Request.URL.Path, form, bindError(err))
		return
	}

	_, err := rc.Reservations.UpdateReservation(c.Request.Context(), identityFrom(c), reservation.ID, services.ReservationPatch{
		ServiceID: &form.Service,
		Date:      &form.Date,
		Time:      &form.Time,
	})
	if err != nil {
		rc.formFailure(c, c.Request.URL.Path, form, err)
		return
	}
	c.Redirect(http.StatusFound, "/reservations/")
}

func (rc *ReservationController) DeleteConfirmPage(c *gin.Context) {
	reservation, ok := rc.owned(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "reservation_confirm_delete.html", gin.H{"Reservation": reservation})
}

func (rc *ReservationController) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		renderPageError(c, err)
		return
	}
	if err := rc.Reservations.DeleteReservation(c.Request.Context(), identityFrom(c), id); err != nil {
		renderPageError(c, err)
		return
	}

	utils.AddFlash(c, utils.FlashSuccess, "The reservation was successfully deleted.")
	c.Redirect(http.StatusFound, "/reservations/")
}

// GetReservations lists reservations of every user
func (rc *ReservationController) GetReservations(c *gin.Context) {
	list, err := rc.Reservations.ListAll(c.Request.Context())
	if err != nil {
		respondWithAppError(c, err)
		return
	}

	out := make([]ReservationResponse, 0, len(list))
	for i := range list {
		out = append(out, newReservationResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	reservation, err := rc.Reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(reservation))
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var input ReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondWithAppError(c, bindError(err))
		return
	}

	reservation, err := rc.Reservations.CreateAny(c.Request.Context(), services.ReservationAPIInput{
		UserID:    deref(input.User),
		ServiceID: deref(input.Service),
		Date:      deref(input.Date),
		Time:      deref(input.Time),
		Status:    deref(input.Status),
	})
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	if rc.Created != nil {
		rc.Created.Inc()
	}
	c.JSON(http.StatusCreated, newReservationResponse(reservation))
}

// ReplaceReservation handles PUT: user, service and time are required.
func (rc *ReservationController) ReplaceReservation(c *gin.Context) {
	rc.updateReservation(c, false)
}

func (rc *ReservationController) PatchReservation(c *gin.Context) {
	rc.updateReservation(c, true)
}

func (rc *ReservationController) updateReservation(c *gin.Context, partial bool) {
	id, err := paramID(c, "id")
	if err != nil {
		respondWithAppError(c, err)
		return
	}

	var input ReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondWithAppError(c, bindError(err))
		return
	}

	patch := services.ReservationAPIPatch{
		ReservationPatch: services.ReservationPatch{
			ServiceID: input.Service,
			Date:      input.Date,
			Time:      input.Time,
		},
		UserID: input.User,
		Status: input.Status,
	}
	if !partial {
		patch.UserID = orEmpty(patch.UserID)
		patch.ServiceID = orEmpty(patch.ServiceID)
		patch.Time = orEmpty(patch.Time)
	}

	reservation, err := rc.Reservations.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(reservation))
}

func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	if err := rc.Reservations.Delete(c.Request.Context(), id); err != nil {
		respondWithAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// owned loads the caller's reservation named by the path, rendering the error page otherwise.
func (rc *ReservationController) owned(c *gin.Context) (*models.Reservation, bool) {
	id, err := paramID(c, "id")
	if err != nil {
		renderPageError(c, err)
		return nil, false
	}
	reservation, err := rc.Reservations.GetMyReservation(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		renderPageError(c, err)
		return nil, false
	}
	return reservation, true
}

func (rc *ReservationController) formFailure(c *gin.Context, action string, form ReservationForm, err error) {
	fields, ok := formErrors(err)
	if !ok {
		renderPageError(c, err)
		return
	}
	rc.renderForm(c, http.StatusBadRequest, action, map[string]string{
		"service":          form.Service,
		"reservation_date": form.Date,
		"reservation_time": form.Time,
	}, fields)
}

func (rc *ReservationController) renderForm(c *gin.Context, status int, action string, values map[string]string, fields services.FieldErrors) {
	list, err := rc.Catalog.ListServices(c.Request.Context())
	if err != nil {
		renderPageError(c, err)
		return
	}
	if fields == nil {
		fields = services.FieldErrors{}
	}
	render(c, status, "reservation_form.html", gin.H{
		"Action":   action,
		"Services": list,
		"Form":     values,
		"Errors":   fields,
	})
}
