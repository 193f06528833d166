// controllers/auth.go
package controllers

import (
	"net/http"
	"time"

	"reservation-system/services"
	"reservation-system/utils"

	"github.com/gin-gonic/gin"
)

// SessionCookie describes the cookie that carries the page session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthController handles registration, login, logout and the caller's profile
type AuthController struct {
	Identity *services.IdentityService
	Issuer   *utils.TokenIssuer
	Cookie   SessionCookie
}

type RegisterForm struct {
	Username    string `form:"username"`
	Email       string `form:"email"`
	Password1   string `form:"password1"`
	Password2   string `form:"password2"`
	PhoneNumber string `form:"phone_number"`
	DateOfBirth string `form:"date_of_birth"`
}

type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", nil)
}

func (ac *AuthController) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		renderPageError(c, bindError(err))
		return
	}

	_, err := ac.Identity.Register(c.Request.Context(), services.RegisterInput{
		Username:    form.Username,
		Email:       form.Email,
		Password1:   form.Password1,
		Password2:   form.Password2,
		PhoneNumber: form.PhoneNumber,
		DateOfBirth: form.DateOfBirth,
	})
	if err != nil {
		fields, ok := formErrors(err)
		if !ok {
			renderPageError(c, err)
			return
		}
		render(c, http.StatusBadRequest, "register.html", gin.H{
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

	utils.AddFlash(c, utils.FlashSuccess, "Account created successfully!")
	c.Redirect(http.StatusFound, "/login/")
}

func (ac *AuthController) LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{
		"Form": map[string]string{"next": c.Query("next")},
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		renderPageError(c, bindError(err))
		return
	}

	user, err := ac.Identity.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if !services.IsType(err, services.ErrorTypeAuthentication) {
			renderPageError(c, err)
			return
		}
		render(c, http.StatusBadRequest, "login.html", gin.H{
			"Errors": services.FieldErrors{"__all__": services.AsAppError(err).Message},
			"Form":   map[string]string{"username": form.Username, "next": form.Next},
		})
		return
	}

	token, _, err := ac.Issuer.GenerateToken(user.ID, user.Username)
	if err != nil {
		renderPageError(c, services.NewInternalError("failed to generate token", err))
		return
	}
	ac.setSessionCookie(c, token)

	c.Redirect(http.StatusFound, utils.SafeRedirect(form.Next, "/"))
}

// Logout ends the page session. Anonymous callers are simply redirected.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.revokeCurrent(c); err != nil {
		renderPageError(c, err)
		return
	}
	c.SetCookie(ac.Cookie.Name, "", -1, "/", "", ac.Cookie.Secure, true)
	c.Redirect(http.StatusFound, "/")
}

// APILogin issues a bearer token for API clients.
func (ac *AuthController) APILogin(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondWithAppError(c, bindError(err))
		return
	}

	user, err := ac.Identity.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondWithAppError(c, err)
		return
	}

	token, claims, err := ac.Issuer.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondWithAppError(c, services.NewInternalError("failed to generate token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": claims.ExpiresAt.Time,
		"user":       newUserResponse(user),
	})
}

func (ac *AuthController) APILogout(c *gin.Context) {
	if err := ac.revokeCurrent(c); err != nil {
		respondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.Identity.GetUser(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		if services.IsType(err, services.ErrorTypeNotFound) {
			err = services.NewAuthenticationError("User not found")
		}
		respondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

func (ac *AuthController) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(ac.Issuer.Expiry() / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ac.Cookie.Name, token, maxAge, "/", "", ac.Cookie.Secure, true)
}

func (ac *AuthController) revokeCurrent(c *gin.Context) error {
	tokenID := c.GetString(utils.ContextTokenID)
	if tokenID == "" {
		return nil
	}
	expiresAt := c.GetTime(utils.ContextTokenExpiry)
	return ac.Identity.Logout(c.Request.Context(), tokenID, expiresAt)
}
