package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes carried in the error envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidID    = "INVALID_ID"
	CodeFileTooLarge = "FILE_TOO_LARGE"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL"
)

// Message writes {"message": msg} merged with extra fields.
func Message(c *gin.Context, statusCode int, msg string, extra gin.H) {
	body := gin.H{"message": msg}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Internal hides the cause from the client; callers log it.
func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "internal error")
}
