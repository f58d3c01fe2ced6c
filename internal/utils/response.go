package utils

import (
	"github.com/gin-gonic/gin"
)

// SendErrorResponse sends a standardized error response. Failures always
// return structured JSON with an error field, never a raw stack trace.
func SendErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// SendErrorResponseWithDetails sends an error response with extra context
// fields (valid values, received input, an example request)
func SendErrorResponseWithDetails(c *gin.Context, statusCode int, message string, details gin.H) {
	body := gin.H{"error": message}
	for k, v := range details {
		body[k] = v
	}
	c.JSON(statusCode, body)
}
