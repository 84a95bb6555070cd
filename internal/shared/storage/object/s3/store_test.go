package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "documents/u/d/nda.pdf", want: "documents/u/d/nda.pdf"},
		{name: "simple prefix", prefix: "legal", key: "documents/u/d/nda.pdf", want: "legal/documents/u/d/nda.pdf"},
		{name: "prefix and key slashes", prefix: "/legal/", key: "/documents/nda.pdf", want: "legal/documents/nda.pdf"},
		{name: "empty key", prefix: "legal", key: "", want: "legal"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, applyPrefix(tt.prefix, tt.key))
		})
	}
}

type recordedRequest struct {
	method     string
	path       string
	encryption string
	kmsKeyID   string
}

func newFakeBucket(t *testing.T) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
		objects  = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requests = append(requests, recordedRequest{
			method:     r.Method,
			path:       r.URL.Path,
			encryption: r.Header.Get("X-Amz-Server-Side-Encryption"),
			kmsKeyID:   r.Header.Get("X-Amz-Server-Side-Encryption-Aws-Kms-Key-Id"),
		})
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = string(body)
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			body, ok := objects[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
				return
			}
			_, _ = w.Write([]byte(body))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestClient(endpoint string) *s3.Client {
	return s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials:  aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("test", "test", "")),
	})
}

func TestPutAndOpenRoundTrip(t *testing.T) {
	srv, requests := newFakeBucket(t)
	store := NewWithClient(newTestClient(srv.URL), "contracts", "legal/", "kms-key-1")
	ctx := context.Background()

	n, err := store.Put(ctx, "documents/u/d/nda.txt", "text/plain", strings.NewReader("mutual nda"))
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)

	rc, err := store.Open(ctx, "documents/u/d/nda.txt")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "mutual nda", string(body))

	require.GreaterOrEqual(t, len(*requests), 2)
	put := (*requests)[0]
	assert.Equal(t, http.MethodPut, put.method)
	assert.Equal(t, "/contracts/legal/documents/u/d/nda.txt", put.path)
	assert.Equal(t, "aws:kms", put.encryption)
	assert.Equal(t, "kms-key-1", put.kmsKeyID)
}

func TestOpenMissingObject(t *testing.T) {
	srv, _ := newFakeBucket(t)
	store := NewWithClient(newTestClient(srv.URL), "contracts", "", "")
	_, err := store.Open(context.Background(), "documents/missing.txt")
	assert.Error(t, err)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), "us-east-1", "", "", "")
	assert.Error(t, err)
}
