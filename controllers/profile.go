package controllers

import (
	"net/http"

	"reservation-system/models"
	"reservation-system/services"
	"reservation-system/utils"

	"github.com/gin-gonic/gin"
)

type ProfileForm struct {
	Username    string `form:"username"`
	Email       string `form:"email"`
	PhoneNumber string `form:"phone_number"`
	DateOfBirth string `form:"date_of_birth"`
}

func profileValues(u *models.User) map[string]string {
	values := map[string]string{
		"username": u.Username,
		"email":    u.Email,
	}
	if u.PhoneNumber != nil {
		values["phone_number"] = *u.PhoneNumber
	}
	if u.DateOfBirth != nil {
		values["date_of_birth"] = u.DateOfBirth.String()
	}
	return values
}

// ProfilePage shows the caller's own account.
func (ac *AuthController) ProfilePage(c *gin.Context) {
	user, err := ac.Identity.GetUser(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		renderPageError(c, err)
		return
	}
	render(c, http.StatusOK, "profile_update.html", gin.H{"Form": profileValues(user)})
}

// UpdateProfile saves the caller's account. The session token is reissued so
// it carries the new username.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var form ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		renderPageError(c, bindError(err))
		return
	}

	user, err := ac.Identity.UpdateProfile(c.Request.Context(), identityFrom(c), services.ProfileInput{
		Username:    form.Username,
		Email:       form.Email,
		PhoneNumber: form.PhoneNumber,
		DateOfBirth: form.DateOfBirth,
	})
	if err != nil {
		fields, ok := formErrors(err)
		if !ok {
			renderPageError(c, err)
			return
		}
		render(c, http.StatusBadRequest, "profile_update.html", gin.H{
			"Errors": fields,
			"Form": map[string]string{
				"username":      form.Username,
				"email":         form.Email,
				"phone_number":  form.PhoneNumber,
				"date_of_birth": form.DateOfBirth,
			},
		})
		return
	}

	if user.Username != identityFrom(c).Username {
		token, _, err := ac.Issuer.GenerateToken(user.ID, user.Username)
		if err != nil {
			renderPageError(c, services.NewInternalError("failed to generate token", err))
			return
		}
		if err := ac.revokeCurrent(c); err != nil {
			renderPageError(c, err)
			return
		}
		ac.setSessionCookie(c, token)
	}

	utils.AddFlash(c, utils.FlashSuccess, "Profile updated successfully!")
	c.Redirect(http.StatusFound, "/profile/")
}
