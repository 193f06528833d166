package utils

import "github.com/gin-gonic/gin"

// RespondWithError writes a JSON error body of the given type and aborts the chain.
func RespondWithError(c *gin.Context, code int, errType, message string) {
	RespondWithDetails(c, code, errType, message, nil)
}

// RespondWithDetails is RespondWithError with per-field messages.
func RespondWithDetails(c *gin.Context, code int, errType, message string, fields map[string]string) {
	body := gin.H{"error": message, "type": errType}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(code, body)
}
