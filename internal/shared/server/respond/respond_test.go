package respond

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"legal-backend/internal/shared/telemetry"
)

func serve(t *testing.T, h gin.HandlerFunc, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", h)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestErrorEnvelopeAndLogLevel(t *testing.T) {
	var buf bytes.Buffer
	restore := telemetry.Capture(&buf)
	defer restore()

	resp := serve(t, func(c *gin.Context) {
		Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	}, nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"error":{"code":"not_found","message":"document not found"}}`, resp.Body.String())
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestTaggedHonoursIfNoneMatch(t *testing.T) {
	h := func(c *gin.Context) { Tagged(c, "abc", gin.H{"ok": true}) }

	first := serve(t, h, nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, `"abc"`, first.Header().Get("ETag"))

	second := serve(t, h, map[string]string{"If-None-Match": `"abc"`})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
}

func TestAttachment(t *testing.T) {
	resp := serve(t, func(c *gin.Context) {
		Attachment(c, "risk-1-2026-10-15.txt", "Liability Cap\n\nbody")
	}, nil)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="risk-1-2026-10-15.txt"`, resp.Header().Get("Content-Disposition"))
	assert.Equal(t, "Liability Cap\n\nbody", resp.Body.String())
}
