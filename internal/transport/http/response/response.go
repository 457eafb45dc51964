package response

import "github.com/gin-gonic/gin"

// The frontend client distinguishes two envelope shapes: plain payloads
// with a bare "error" on failure, and the success/data envelope used by
// the message and upload endpoints.

func OK(c *gin.Context, payload interface{}) {
	c.JSON(200, payload)
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}

func Failure(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"error":   message,
	})
}
