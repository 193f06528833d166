package controllers

import (
	"net/http"

	"reservation-system/config"
	"reservation-system/services"
	"reservation-system/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusFor maps an error type to its HTTP status.
func StatusFor(t services.ErrorType) int {
	switch t {
	case services.ErrorTypeValidation, services.ErrorTypeConstraint:
		return http.StatusBadRequest
	case services.ErrorTypeNotFound:
		return http.StatusNotFound
	case services.ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case services.ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithAppError writes the JSON error body for err. Internal errors are
// logged and reported without their cause.
func respondWithAppError(c *gin.Context, err error) {
	appErr := services.AsAppError(err)
	if appErr.Type == services.ErrorTypeInternal {
		config.LoggerFrom(c).Error(appErr.Message, zap.Error(err))
	}
	utils.RespondWithDetails(c, StatusFor(appErr.Type), string(appErr.Type), appErr.Message, appErr.Fields)
}

// bindError turns a failed ShouldBind into a validation or constraint error.
func bindError(err error) *services.AppError {
	fields, constraint := utils.BindingErrors(err)
	if fields == nil {
		return services.NewValidationError("Invalid input: "+err.Error(), nil)
	}
	if constraint {
		return services.NewConstraintError("invalid input", fields)
	}
	return services.NewValidationError("invalid input", fields)
}

// identityFrom builds the acting identity from what the auth middleware stored.
func identityFrom(c *gin.Context) services.Identity {
	var identity services.Identity
	if v, ok := c.Get(utils.ContextUserID); ok {
		identity.UserID, _ = v.(uuid.UUID)
	}
	identity.Username = c.GetString(utils.ContextUsername)
	return identity
}

// paramID parses a UUID path parameter. Malformed ids are reported as not found.
func paramID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, services.NewNotFoundError("not found")
	}
	return id, nil
}
