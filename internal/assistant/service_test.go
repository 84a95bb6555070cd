package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-backend/internal/documents"
	"legal-backend/internal/upstream"
)

var fixedNow = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

type fakeDocs struct {
	docs map[string]documents.Document
}

func (f *fakeDocs) Get(ctx context.Context, userID, documentID string) (documents.Document, error) {
	doc, ok := f.docs[documentID]
	if !ok || doc.UserID != userID {
		return documents.Document{}, documents.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocs) Current(ctx context.Context, userID string) (documents.Document, error) {
	var latest documents.Document
	for _, doc := range f.docs {
		if doc.UserID == userID && doc.CreatedAt.After(latest.CreatedAt) {
			latest = doc
		}
	}
	if latest.ID == "" {
		return documents.Document{}, documents.ErrNotFound
	}
	return latest, nil
}

type fakeUpstream struct {
	upstream.Client
	simplified  string
	simplifyErr error
	answer      upstream.Payload
	queryErr    error
	queried     []string
}

func (f *fakeUpstream) Simplify(ctx context.Context, clause string) (string, error) {
	return f.simplified, f.simplifyErr
}

func (f *fakeUpstream) Query(ctx context.Context, docID, question string) (upstream.Payload, error) {
	f.queried = append(f.queried, docID)
	return f.answer, f.queryErr
}

func newTestService(up upstream.Client) *Service {
	return &Service{
		Documents: &fakeDocs{docs: map[string]documents.Document{
			"doc-old": {ID: "doc-old", UserID: "guest:a", UpstreamDocID: "up-old", CreatedAt: fixedNow.Add(-time.Hour)},
			"doc-new": {ID: "doc-new", UserID: "guest:a", UpstreamDocID: "up-new", CreatedAt: fixedNow},
			"doc-raw": {ID: "doc-raw", UserID: "guest:a", CreatedAt: fixedNow.Add(-2 * time.Hour)},
		}},
		Upstream: up,
		Timeout:  time.Second,
		Now:      func() time.Time { return fixedNow },
	}
}

func TestComplexity(t *testing.T) {
	cases := []struct {
		clause string
		want   string
	}{
		{strings.Repeat("a", 100), "low"},
		{strings.Repeat("a", 101), "medium"},
		{strings.Repeat("a", 200), "medium"},
		{strings.Repeat("a", 201), "high"},
		{strings.Repeat("é", 150), "medium"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Complexity(tc.clause), "length %d", len([]rune(tc.clause)))
	}
}

func TestSimplifyUsesUpstream(t *testing.T) {
	svc := newTestService(&fakeUpstream{simplified: "You pay within 30 days."})

	note, err := svc.Simplify(context.Background(), "  Payment shall be remitted within thirty (30) days.  ")
	require.NoError(t, err)
	assert.Equal(t, "Payment shall be remitted within thirty (30) days.", note.SelectedText)
	assert.Equal(t, "You pay within 30 days.", note.SimplifiedText)
	assert.Equal(t, "low", note.Complexity)
	assert.False(t, note.IsError)
	assert.Equal(t, fixedNow, note.Timestamp)
	assert.NotEmpty(t, note.ID)
}

func TestSimplifyEmptyResult(t *testing.T) {
	svc := newTestService(&fakeUpstream{simplified: "  "})

	note, err := svc.Simplify(context.Background(), "Payment shall be remitted within thirty (30) days.")
	require.NoError(t, err)
	assert.Equal(t, "Unable to simplify this clause.", note.SimplifiedText)
	assert.False(t, note.IsError)
}

func TestSimplifyFallbackIsDeterministic(t *testing.T) {
	svc := newTestService(&fakeUpstream{simplifyErr: errors.New("connection refused")})
	clause := "The Client shall indemnify the Provider against all third-party claims."

	first, err := svc.Simplify(context.Background(), clause)
	require.NoError(t, err)
	second, err := svc.Simplify(context.Background(), clause)
	require.NoError(t, err)

	assert.True(t, first.IsError)
	assert.True(t, strings.HasSuffix(first.SimplifiedText, " (Note: API connection failed, showing example)"))
	assert.Contains(t, canned.Simplifications, strings.TrimSuffix(first.SimplifiedText, fallbackSuffix))
	assert.Equal(t, first.SimplifiedText, second.SimplifiedText)
}

func TestSimplifyWithoutUpstreamFallsBack(t *testing.T) {
	svc := newTestService(nil)

	note, err := svc.Simplify(context.Background(), "Either party may terminate on notice.")
	require.NoError(t, err)
	assert.True(t, note.IsError)
}

func TestSimplifyRejectsBlankAndOversized(t *testing.T) {
	svc := newTestService(&fakeUpstream{})

	_, err := svc.Simplify(context.Background(), " \n ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Simplify(context.Background(), strings.Repeat("a", maxInputRunes+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAskUsesCurrentDocument(t *testing.T) {
	up := &fakeUpstream{answer: upstream.Payload{Kind: upstream.KindText, Text: "Net 30."}}
	svc := newTestService(up)

	answer, err := svc.Ask(context.Background(), "guest:a", "What are the payment terms?", "")
	require.NoError(t, err)
	assert.Equal(t, "Net 30.", answer.Content)
	assert.Equal(t, "doc-new", answer.DocumentID)
	assert.False(t, answer.IsError)
	assert.Equal(t, []string{"up-new"}, up.queried)
}

func TestAskUsesGivenDocument(t *testing.T) {
	up := &fakeUpstream{answer: upstream.Payload{Kind: upstream.KindText, Text: "Delaware."}}
	svc := newTestService(up)

	_, err := svc.Ask(context.Background(), "guest:a", "Which law governs?", "doc-old")
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), "guest:a", "Which law governs?", "doc-raw")
	require.NoError(t, err)
	assert.Equal(t, []string{"up-old", "doc-raw"}, up.queried)

	_, err = svc.Ask(context.Background(), "guest:b", "Which law governs?", "doc-old")
	assert.ErrorIs(t, err, documents.ErrNotFound)
}

func TestAskEmptyAnswer(t *testing.T) {
	svc := newTestService(&fakeUpstream{answer: upstream.Payload{Kind: upstream.KindEmpty}})

	answer, err := svc.Ask(context.Background(), "guest:a", "Anything unusual?", "")
	require.NoError(t, err)
	assert.Equal(t, "Response received successfully", answer.Content)
	assert.False(t, answer.IsError)
}

func TestAskFallsBackToCannedAnswer(t *testing.T) {
	svc := newTestService(&fakeUpstream{queryErr: &upstream.StatusError{Endpoint: "/api/legal/query", Status: 503}})

	first, err := svc.Ask(context.Background(), "guest:a", "Explain the termination clauses", "")
	require.NoError(t, err)
	again, err := svc.Ask(context.Background(), "guest:a", "Explain the termination clauses", "")
	require.NoError(t, err)

	assert.True(t, first.IsError)
	assert.Contains(t, canned.Answers, first.Content)
	assert.Equal(t, first.Content, again.Content)
}

func TestAskWithoutDocumentsFallsBack(t *testing.T) {
	up := &fakeUpstream{}
	svc := newTestService(up)

	answer, err := svc.Ask(context.Background(), "guest:nobody", "What are the payment terms?", "")
	require.NoError(t, err)
	assert.True(t, answer.IsError)
	assert.Empty(t, answer.DocumentID)
	assert.Empty(t, up.queried)
}

func TestSuggestions(t *testing.T) {
	got := Suggestions()
	require.Len(t, got, 5)
	assert.Equal(t, "What are the key liability limitations in this contract?", got[0])
	got[0] = "changed"
	assert.NotEqual(t, "changed", Suggestions()[0])
	assert.True(t, strings.HasPrefix(Welcome(), "Hello! I'm your AI legal assistant."))
}

func TestCannedSetsLoaded(t *testing.T) {
	assert.Len(t, canned.Simplifications, 9)
	assert.Len(t, canned.Answers, 5)
}
