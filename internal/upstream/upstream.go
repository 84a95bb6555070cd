package upstream

import (
	"context"
	"errors"
	"fmt"
)

// Client talks to the remote document-analysis service.
type Client interface {
	Ingest(ctx context.Context, input IngestInput) (IngestResult, error)
	Risk(ctx context.Context, docID string) (Payload, error)
	Summarise(ctx context.Context, input SummariseInput) (Payload, error)
	Simplify(ctx context.Context, clause string) (string, error)
	Query(ctx context.Context, docID, question string) (Payload, error)
}

// IngestInput is a document handed to the analysis service.
type IngestInput struct {
	DocID    string
	FileName string
	Content  []byte
}

// IngestResult is what the analysis service reports after ingesting.
type IngestResult struct {
	DocID       string `json:"doc_id"`
	FileName    string `json:"filename"`
	Message     string `json:"message"`
	TextContent string `json:"text_content"`
}

// SummariseInput carries the document to summarise. Without content the
// service is asked to summarise its copy of DocID.
type SummariseInput struct {
	DocID    string
	FileName string
	Content  []byte
}

// ErrBadResponse is returned when the service answers with something that is
// not JSON.
var ErrBadResponse = errors.New("analysis service returned an invalid response")

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream %s: http status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("upstream %s: http status %d: %s", e.Endpoint, e.Status, e.Body)
}

type refreshKey struct{}

// WithRefresh marks ctx so cached answers are ignored and replaced.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

// RefreshFromContext reports whether WithRefresh was applied to ctx.
func RefreshFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}
