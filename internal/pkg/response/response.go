package response

import "github.com/gin-gonic/gin"

// Error codes returned in the error envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeFileTooLarge = "FILE_TOO_LARGE"
	CodeNotFound     = "NOT_FOUND"
	CodeUploadFailed = "UPLOAD_FAILED"
	CodeInternal     = "INTERNAL_ERROR"
)

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AbortError writes the envelope and stops the handler chain.
func AbortError(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"message": message,
	})
}
