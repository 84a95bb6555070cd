package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"legal-backend/internal/shared/metrics"
)

const (
	endpointIngest    = "/api/legal/ingest"
	endpointRisk      = "/api/legal/risk"
	endpointSummarise = "/api/legal/summarise_document"
	endpointSimplify  = "/api/legal/simplify"
	endpointQuery     = "/api/legal/query"

	riskQuery      = "Analyze all potential risks in the document"
	summariseQuery = "Summarize the uploaded legal document with key sections and important terms"

	maxResponseBytes = 10 << 20
	maxErrorBody     = 300
)

// HTTPClient implements Client over the service's JSON/multipart HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient builds a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL is required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) Ingest(ctx context.Context, input IngestInput) (IngestResult, error) {
	body, contentType, err := multipartBody(input.FileName, input.Content, map[string]string{"doc_id": input.DocID})
	if err != nil {
		return IngestResult{}, err
	}
	raw, err := c.post(ctx, endpointIngest, contentType, body)
	if err != nil {
		return IngestResult{}, err
	}
	parsed := gjson.ParseBytes(raw)
	return IngestResult{
		DocID:       firstNonEmpty(parsed.Get("doc_id").String(), input.DocID),
		FileName:    firstNonEmpty(parsed.Get("filename").String(), input.FileName),
		Message:     parsed.Get("message").String(),
		TextContent: parsed.Get("text_content").String(),
	}, nil
}

type riskRequest struct {
	Query string `json:"query"`
	DocID string `json:"doc_id"`
}

func (c *HTTPClient) Risk(ctx context.Context, docID string) (Payload, error) {
	raw, err := c.postJSON(ctx, endpointRisk, riskRequest{Query: riskQuery, DocID: docID})
	if err != nil {
		return Payload{}, err
	}
	return DecodePayload(raw, "risks", "result", "answer")
}

func (c *HTTPClient) Summarise(ctx context.Context, input SummariseInput) (Payload, error) {
	var (
		body        *bytes.Buffer
		contentType string
		err         error
	)
	if len(input.Content) > 0 {
		body, contentType, err = multipartBody(input.FileName, input.Content, map[string]string{"doc_id": input.DocID})
	} else {
		body, contentType, err = multipartBody("", nil, map[string]string{"text": summariseQuery, "doc_id": input.DocID})
	}
	if err != nil {
		return Payload{}, err
	}
	raw, err := c.post(ctx, endpointSummarise, contentType, body)
	if err != nil {
		return Payload{}, err
	}
	return DecodePayload(raw, "Summary", "result", "message")
}

type simplifyRequest struct {
	Clause string `json:"clause"`
}

func (c *HTTPClient) Simplify(ctx context.Context, clause string) (string, error) {
	raw, err := c.postJSON(ctx, endpointSimplify, simplifyRequest{Clause: clause})
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(raw, "simplified").String(), nil
}

type queryRequest struct {
	Question string `json:"question"`
	DocID    string `json:"doc_id"`
}

func (c *HTTPClient) Query(ctx context.Context, docID, question string) (Payload, error) {
	raw, err := c.postJSON(ctx, endpointQuery, queryRequest{Question: question, DocID: docID})
	if err != nil {
		return Payload{}, err
	}
	return DecodePayload(raw, "answer", "result", "message")
}

func (c *HTTPClient) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("upstream %s: encode request: %w", endpoint, err)
	}
	return c.post(ctx, endpoint, "application/json", bytes.NewBuffer(body))
}

func (c *HTTPClient) post(ctx context.Context, endpoint, contentType string, body *bytes.Buffer) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("upstream %s: build request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("upstream %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(endpoint, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("upstream %s: read response: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{Endpoint: endpoint, Status: resp.StatusCode, Body: snippet}
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("upstream %s: %w", endpoint, ErrBadResponse)
	}
	return raw, nil
}

func multipartBody(fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if content != nil {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			return nil, "", fmt.Errorf("build multipart body: %w", err)
		}
		if _, err := part.Write(content); err != nil {
			return nil, "", fmt.Errorf("build multipart body: %w", err)
		}
	}
	for _, key := range []string{"doc_id", "text"} {
		value, ok := fields[key]
		if !ok || value == "" {
			continue
		}
		if err := w.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("build multipart body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
