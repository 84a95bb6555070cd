package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"legal-backend/internal/extract"
	"legal-backend/internal/shared/metrics"
	"legal-backend/internal/shared/storage/object"
	"legal-backend/internal/shared/telemetry"
	"legal-backend/internal/shared/util"
	"legal-backend/internal/upstream"
)

// MaxUploadSize is the largest accepted upload.
const MaxUploadSize = 10 << 20

// Service stores uploads, extracts their text and hands them to the
// analysis service.
type Service struct {
	Store    object.Store
	Repo     Repo
	Upstream upstream.Client
	Now      func() time.Time
}

// UploadResult is a stored document plus a notice when ingestion degraded.
type UploadResult struct {
	Document Document
	Notice   string
}

// Text is the readable content of a document.
type Text struct {
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

// Upload validates, stores and ingests a document. Ingestion failures keep
// the upload and report a notice.
func (s *Service) Upload(ctx context.Context, userID, fileName, declaredType string, r io.Reader) (UploadResult, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(fileName) == "" {
		return UploadResult{}, ErrInvalidInput
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return UploadResult{}, ErrTooLarge
	}
	if len(data) == 0 {
		return UploadResult{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	mimeType, err := acceptedType(declaredType, fileName, data)
	if err != nil {
		return UploadResult{}, err
	}

	doc := Document{
		ID:        uuid.NewString(),
		UserID:    userID,
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		CreatedAt: s.now(),
	}
	key, err := object.DocumentKey(userID, doc.ID, fileName)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.Store.Put(ctx, key, mimeType, bytes.NewReader(data)); err != nil {
		return UploadResult{}, fmt.Errorf("store document: %w", err)
	}
	doc.StorageKey = key

	text, extractErr := extract.Text(ctx, data, mimeType, fileName)
	if extractErr != nil && !errors.Is(extractErr, extract.ErrUnsupported) {
		telemetry.Warn("documents.extract_failed", map[string]any{
			"document_id": doc.ID,
			"mime_type":   mimeType,
			"error":       util.SanitizeError(extractErr),
		})
	}

	var notice string
	ingested, ingestErr := s.ingest(ctx, doc, data)
	switch {
	case ingestErr != nil:
		notice = fmt.Sprintf("Processing failed: %s. Document upload completed but text extraction may have failed.", util.SanitizeError(ingestErr))
		telemetry.Warn("documents.ingest_failed", map[string]any{
			"document_id": doc.ID,
			"error":       util.SanitizeError(ingestErr),
		})
	default:
		doc.UpstreamDocID = ingested.DocID
		if strings.TrimSpace(ingested.TextContent) != "" {
			text = ingested.TextContent
		}
	}
	metrics.ObserveUpload(ingestErr == nil)

	if strings.TrimSpace(text) != "" {
		textKey := object.TextKey(key)
		if _, err := s.Store.Put(ctx, textKey, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
			return UploadResult{}, fmt.Errorf("store document text: %w", err)
		}
		doc.TextKey = textKey
		doc.TextChars = utf8.RuneCountInString(text)
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return UploadResult{}, err
	}
	telemetry.Info("documents.uploaded", map[string]any{
		"document_id": doc.ID,
		"user_id":     userID,
		"mime_type":   mimeType,
		"size_bytes":  doc.SizeBytes,
		"ingested":    doc.Ingested(),
		"text_chars":  doc.TextChars,
	})
	return UploadResult{Document: doc, Notice: notice}, nil
}

func (s *Service) ingest(ctx context.Context, doc Document, data []byte) (upstream.IngestResult, error) {
	if s.Upstream == nil {
		return upstream.IngestResult{}, errors.New("analysis service is not configured")
	}
	res, err := s.Upstream.Ingest(ctx, upstream.IngestInput{
		DocID:    doc.ID,
		FileName: doc.FileName,
		Content:  data,
	})
	if err != nil {
		return upstream.IngestResult{}, err
	}
	if res.DocID == "" {
		res.DocID = doc.ID
	}
	return res, nil
}

// Current returns the latest document of a user.
func (s *Service) Current(ctx context.Context, userID string) (Document, error) {
	if userID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetCurrentByUser(ctx, userID)
}

// Get returns one document of a user.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if userID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// List returns documents of a user, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// CurrentText returns the text of the latest document of a user.
func (s *Service) CurrentText(ctx context.Context, userID string) (Text, error) {
	doc, err := s.Current(ctx, userID)
	if err != nil {
		return Text{}, err
	}
	content, err := s.ReadText(ctx, doc)
	if err != nil {
		return Text{}, err
	}
	return Text{FileName: doc.FileName, Content: content}, nil
}

// ReadText loads the stored text of doc. Documents without text yield "".
func (s *Service) ReadText(ctx context.Context, doc Document) (string, error) {
	if doc.TextKey == "" {
		return "", nil
	}
	raw, err := s.read(ctx, doc.TextKey)
	if err != nil {
		return "", fmt.Errorf("read document text: %w", err)
	}
	return string(raw), nil
}

// ReadContent loads the uploaded bytes of doc.
func (s *Service) ReadContent(ctx context.Context, doc Document) ([]byte, error) {
	raw, err := s.read(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return raw, nil
}

func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	body, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(io.LimitReader(body, MaxUploadSize*4))
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// acceptedType resolves the document type and rejects anything other than
// PDF, plain text, DOC and DOCX.
func acceptedType(declared, fileName string, data []byte) (string, error) {
	if strings.TrimSpace(declared) == "" || declared == "application/octet-stream" {
		declared = http.DetectContentType(data)
	}
	mimeType := extract.NormalizeMimeType(declared, fileName, data)
	switch mimeType {
	case extract.MimePDF, extract.MimeDOCX, extract.MimeDOC, extract.MimeText:
		return mimeType, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
}
