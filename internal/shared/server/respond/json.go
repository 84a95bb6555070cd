package respond

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Tagged writes payload with a strong ETag, or 304 when the client already
// holds that version.
func Tagged(c *gin.Context, etag string, payload any) {
	if etag != "" {
		quoted := strconv.Quote(etag)
		c.Header("ETag", quoted)
		if match := c.GetHeader("If-None-Match"); match == quoted || match == "*" {
			c.Status(http.StatusNotModified)
			return
		}
	}
	OK(c, payload)
}

// Attachment sends body as a plain-text download named fileName.
func Attachment(c *gin.Context, fileName, body string) {
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(fileName))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}
