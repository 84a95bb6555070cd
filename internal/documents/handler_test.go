package documents

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-backend/internal/shared/server/middleware"
	"legal-backend/internal/upstream"
)

func newTestRouter(t *testing.T, up upstream.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1", middleware.Identity(false))
	NewHandler(newTestService(t, up)).RegisterRoutes(api)
	return r
}

func multipartUpload(t *testing.T, fileName, contentType string, body []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func doRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestDocumentsUploadAndCurrent(t *testing.T) {
	up := &fakeUpstream{result: upstream.IngestResult{DocID: "up-7", TextContent: "Payment is due within 30 days."}}
	router := newTestRouter(t, up)

	body, contentType := multipartUpload(t, "hello.txt", "text/plain", []byte("Payment is due within 30 days."))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := doRequest(router, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.Document.DocumentID)
	assert.Equal(t, "up-7", created.Document.UpstreamDocID)
	assert.Empty(t, created.Notice)

	resp = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var current DocumentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&current))
	assert.Equal(t, "hello.txt", current.FileName)
	assert.Equal(t, created.Document.DocumentID, current.DocumentID)

	resp = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents/current/text", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"fileName":"hello.txt","content":"Payment is due within 30 days."}`, resp.Body.String())

	resp = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+current.DocumentID, nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var list []DocumentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestDocumentsUploadErrors(t *testing.T) {
	router := newTestRouter(t, nil)

	body, contentType := multipartUpload(t, "scan.png", "image/png", []byte("\x89PNG\r\n\x1a\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := doRequest(router, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), `"unsupported_type"`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp = doRequest(router, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDocumentsCurrentNotFound(t *testing.T) {
	router := newTestRouter(t, nil)
	resp := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), `"not_found"`)
}

func TestDocumentsRequireIdentity(t *testing.T) {
	router := newTestRouter(t, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
