package controllers

import (
	"net/http"
	"strings"

	"reservation-system/config"
	"reservation-system/services"
	"reservation-system/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// render fills in what every page template expects and writes the page.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Form"]; !ok {
		data["Form"] = map[string]string{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = services.FieldErrors{}
	}
	data["Identity"] = identityFrom(c)
	data["Messages"] = utils.ConsumeFlash(c)
	c.HTML(status, name, data)
}

// renderPageError shows the 404 page for missing or foreign records and a
// generic error page for anything unexpected.
func renderPageError(c *gin.Context, err error) {
	appErr := services.AsAppError(err)
	switch appErr.Type {
	case services.ErrorTypeNotFound:
		render(c, http.StatusNotFound, "404.html", nil)
	case services.ErrorTypeAuthentication:
		c.Redirect(http.StatusFound, "/login/")
	case services.ErrorTypeInternal:
		config.LoggerFrom(c).Error(appErr.Message, zap.Error(err))
		render(c, http.StatusInternalServerError, "error.html", gin.H{"Message": "Something went wrong. Please try again."})
	default:
		render(c, StatusFor(appErr.Type), "error.html", gin.H{"Message": appErr.Message})
	}
}

// formErrors extracts per-field messages from validation and constraint errors.
// ok is false for any other failure.
func formErrors(err error) (services.FieldErrors, bool) {
	appErr := services.AsAppError(err)
	if appErr.Type != services.ErrorTypeValidation && appErr.Type != services.ErrorTypeConstraint {
		return nil, false
	}
	fields := appErr.Fields
	if fields == nil {
		fields = services.FieldErrors{}
	}
	if len(fields) == 0 {
		fields["__all__"] = appErr.Message
	}
	return fields, true
}

// NotFound answers unmatched routes with JSON under /api and the 404 page elsewhere.
func NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		utils.RespondWithError(c, http.StatusNotFound, string(services.ErrorTypeNotFound), "Not found")
		return
	}
	render(c, http.StatusNotFound, "404.html", nil)
}
