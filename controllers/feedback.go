// controllers/feedback.go
package controllers

import (
	"net/http"

	"reservation-system/services"
	"reservation-system/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type FeedbackForm struct {
	Rating  string `form:"rating"`
	Comment string `form:"comment"`
}

// FeedbackInput defines the expected JSON structure for creating feedback
type FeedbackInput struct {
	Reservation *string      `json:"reservation" binding:"required"`
	Rating      *looseString `json:"rating" binding:"required,rating"`
	Comment     *string      `json:"comment"`
}

// FeedbackController serves the review form and the /api/feedback resource
type FeedbackController struct {
	Feedback  *services.FeedbackService
	Submitted prometheus.Counter
}

func (fc *FeedbackController) FormPage(c *gin.Context) {
	id, err := paramID(c, "reservation_id")
	if err != nil {
		renderPageError(c, err)
		return
	}

	reservation, err := fc.Feedback.CheckEligible(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		fc.rejected(c, err)
		return
	}
	render(c, http.StatusOK, "feedback_form.html", gin.H{"Reservation": reservation})
}

func (fc *FeedbackController) Submit(c *gin.Context) {
	id, err := paramID(c, "reservation_id")
	if err != nil {
		renderPageError(c, err)
		return
	}

	var form FeedbackForm
	if err := c.ShouldBind(&form); err != nil {
		renderPageError(c, bindError(err))
		return
	}

	identity := identityFrom(c)
	_, err = fc.Feedback.CreateFeedback(c.Request.Context(), identity, id, services.FeedbackInput{
		Rating:  form.Rating,
		Comment: form.Comment,
	})
	if err != nil {
		fields, ok := formErrors(err)
		if !ok {
			fc.rejected(c, err)
			return
		}
		reservation, lookupErr := fc.Feedback.CheckEligible(c.Request.Context(), identity, id)
		if lookupErr != nil {
			fc.rejected(c, lookupErr)
			return
		}
		render(c, http.StatusBadRequest, "feedback_form.html", gin.H{
			"Reservation": reservation,
			"Errors":      fields,
			"Form":        map[string]string{"rating": form.Rating, "comment": form.Comment},
		})
		return
	}
	if fc.Submitted != nil {
		fc.Submitted.Inc()
	}

	utils.AddFlash(c, utils.FlashSuccess, "Your feedback was submitted successfully!")
	c.Redirect(http.StatusFound, "/reservations/")
}

// rejected turns an existing review into a flash message instead of an error page.
func (fc *FeedbackController) rejected(c *gin.Context, err error) {
	if services.IsType(err, services.ErrorTypeConflict) {
		utils.AddFlash(c, utils.FlashError, services.AsAppError(err).Message)
		c.Redirect(http.StatusFound, "/reservations/")
		return
	}
	renderPageError(c, err)
}

// GetFeedback lists feedback for every reservation
func (fc *FeedbackController) GetFeedback(c *gin.Context) {
	list, err := fc.Feedback.ListFeedback(c.Request.Context())
	if err != nil {
		respondWithAppError(c, err)
		return
	}

	out := make([]FeedbackResponse, 0, len(list))
	for i := range list {
		out = append(out, newFeedbackResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (fc *FeedbackController) CreateFeedback(c *gin.Context) {
	var input FeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondWithAppError(c, bindError(err))
		return
	}

	feedback, err := fc.Feedback.CreateFeedbackAPI(c.Request.Context(), services.FeedbackAPIInput{
		ReservationID: deref(input.Reservation),
		Rating:        deref(input.Rating.value()),
		Comment:       deref(input.Comment),
	})
	if err != nil {
		respondWithAppError(c, err)
		return
	}
	if fc.Submitted != nil {
		fc.Submitted.Inc()
	}
	c.JSON(http.StatusCreated, newFeedbackResponse(feedback))
}
