package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"legal-backend/internal/documents"
	"legal-backend/internal/shared/metrics"
	"legal-backend/internal/shared/telemetry"
	"legal-backend/internal/shared/util"
	"legal-backend/internal/upstream"
)

const (
	defaultCallTimeout = 60 * time.Second
	maxInputRunes      = 20000

	fallbackSuffix   = " (Note: API connection failed, showing example)"
	emptySimplified  = "Unable to simplify this clause."
	emptyAnswer      = "Response received successfully"
	outcomeAnswered  = "answered"
	outcomeFallback  = "fallback"
	complexityHigh   = "high"
	complexityMedium = "medium"
	complexityLow    = "low"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	errNoDocument            = errors.New("no document has been uploaded")
	errUpstreamNotConfigured = errors.New("analysis service is not configured")
)

// DocumentLookup resolves the document a question is about.
type DocumentLookup interface {
	Get(ctx context.Context, userID, documentID string) (documents.Document, error)
	Current(ctx context.Context, userID string) (documents.Document, error)
}

// Service simplifies clauses and answers questions about documents.
type Service struct {
	Documents DocumentLookup
	Upstream  upstream.Client
	Timeout   time.Duration
	Now       func() time.Time
}

// Note is a clause and its plain-language rewrite.
type Note struct {
	ID             string    `json:"id"`
	SelectedText   string    `json:"selectedText"`
	SimplifiedText string    `json:"simplifiedText"`
	Complexity     string    `json:"complexity"`
	IsError        bool      `json:"isError,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Answer is the reply to one question.
type Answer struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Content    string    `json:"content"`
	DocumentID string    `json:"documentId,omitempty"`
	IsError    bool      `json:"isError,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Simplify rewrites a clause in plain language. When the analysis service
// fails the note carries a canned example and IsError.
func (s *Service) Simplify(ctx context.Context, clause string) (Note, error) {
	clause = strings.TrimSpace(clause)
	if err := checkInput("clause", clause); err != nil {
		return Note{}, err
	}
	started := time.Now()
	note := Note{
		ID:           uuid.NewString(),
		SelectedText: clause,
		Complexity:   Complexity(clause),
		Timestamp:    s.now(),
	}

	simplified, err := s.simplify(ctx, clause)
	if err != nil {
		telemetry.Warn("assistant.simplify_degraded", map[string]any{
			"error":        util.SanitizeError(err),
			"clause_chars": utf8.RuneCountInString(clause),
		})
		note.SimplifiedText = pick(canned.Simplifications, clause) + fallbackSuffix
		note.IsError = true
		metrics.ObserveAnalysis("simplify", outcomeFallback, time.Since(started))
		return note, nil
	}
	if strings.TrimSpace(simplified) == "" {
		simplified = emptySimplified
	}
	note.SimplifiedText = simplified
	metrics.ObserveAnalysis("simplify", outcomeAnswered, time.Since(started))
	return note, nil
}

func (s *Service) simplify(ctx context.Context, clause string) (string, error) {
	if s.Upstream == nil {
		return "", errUpstreamNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()
	return s.Upstream.Simplify(ctx, clause)
}

// Ask answers a question about documentID, or about the latest document of
// the user when documentID is empty. Failures yield a canned answer with
// IsError set.
func (s *Service) Ask(ctx context.Context, userID, question, documentID string) (Answer, error) {
	question = strings.TrimSpace(question)
	if userID == "" {
		return Answer{}, ErrInvalidInput
	}
	if err := checkInput("question", question); err != nil {
		return Answer{}, err
	}
	started := time.Now()

	doc, err := s.resolve(ctx, userID, strings.TrimSpace(documentID))
	if err != nil && !errors.Is(err, errNoDocument) {
		return Answer{}, err
	}
	answer := Answer{
		ID:         uuid.NewString(),
		Question:   question,
		DocumentID: doc.ID,
		Timestamp:  s.now(),
	}

	if err == nil {
		err = s.query(ctx, doc, question, &answer)
	}
	if err != nil {
		telemetry.Warn("assistant.query_degraded", map[string]any{
			"document_id": doc.ID,
			"error":       util.SanitizeError(err),
		})
		answer.Content = pick(canned.Answers, question)
		answer.IsError = true
		metrics.ObserveAnalysis("query", outcomeFallback, time.Since(started))
		return answer, nil
	}
	metrics.ObserveAnalysis("query", outcomeAnswered, time.Since(started))
	return answer, nil
}

func (s *Service) resolve(ctx context.Context, userID, documentID string) (documents.Document, error) {
	if s.Documents == nil {
		return documents.Document{}, errNoDocument
	}
	if documentID != "" {
		return s.Documents.Get(ctx, userID, documentID)
	}
	doc, err := s.Documents.Current(ctx, userID)
	if errors.Is(err, documents.ErrNotFound) {
		return documents.Document{}, errNoDocument
	}
	return doc, err
}

func (s *Service) query(ctx context.Context, doc documents.Document, question string, answer *Answer) error {
	if s.Upstream == nil {
		return errUpstreamNotConfigured
	}
	docID := doc.UpstreamDocID
	if docID == "" {
		docID = doc.ID
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()
	payload, err := s.Upstream.Query(ctx, docID, question)
	if err != nil {
		return err
	}
	answer.Content = payload.String()
	if strings.TrimSpace(answer.Content) == "" {
		answer.Content = emptyAnswer
	}
	return nil
}

// Suggestions returns the questions offered before the first query.
func Suggestions() []string {
	return append([]string(nil), canned.Suggestions...)
}

// Welcome returns the greeting shown at the start of a conversation.
func Welcome() string {
	return canned.Welcome
}

// Complexity grades a clause by length in characters.
func Complexity(clause string) string {
	switch n := utf8.RuneCountInString(clause); {
	case n > 200:
		return complexityHigh
	case n > 100:
		return complexityMedium
	default:
		return complexityLow
	}
}

func checkInput(field, text string) error {
	if text == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(text) > maxInputRunes {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, maxInputRunes)
	}
	return nil
}

func (s *Service) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return defaultCallTimeout
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
