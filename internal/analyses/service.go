package analyses

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"legal-backend/internal/classify"
	"legal-backend/internal/documents"
	"legal-backend/internal/shared/canonical"
	"legal-backend/internal/shared/metrics"
	"legal-backend/internal/shared/telemetry"
	"legal-backend/internal/shared/util"
	"legal-backend/internal/upstream"
)

const (
	defaultCallTimeout = 90 * time.Second
	historyLimit       = 20

	noticeNotIngested = "Document has not been processed by the analysis service yet. Using demo data."
	noticeInvalidList = "Analysis service returned risks in an unexpected format. Using demo data."
)

var errUpstreamNotConfigured = errors.New("analysis service is not configured")

// DocumentSource resolves the documents analyses run over.
type DocumentSource interface {
	Get(ctx context.Context, userID, documentID string) (documents.Document, error)
	ReadContent(ctx context.Context, doc documents.Document) ([]byte, error)
}

// Service runs risk and summary analyses and keeps their history.
type Service struct {
	Repo      Repo
	Documents DocumentSource
	Upstream  upstream.Client
	// Timeout bounds one call to the analysis service.
	Timeout time.Duration
	Now     func() time.Time

	inflight singleflight.Group
}

// Insights is a risk run and a summary run over the same document.
type Insights struct {
	Risks   Analysis `json:"risks"`
	Summary Analysis `json:"summary"`
}

// Export is a plain-text download.
type Export struct {
	FileName string
	Body     string
}

// RunRisks assesses the risks of a document and stores the run.
func (s *Service) RunRisks(ctx context.Context, userID, documentID string, regenerate bool) (Analysis, error) {
	return s.run(ctx, KindRisks, userID, documentID, regenerate)
}

// RunSummary summarises a document and stores the run.
func (s *Service) RunSummary(ctx context.Context, userID, documentID string, regenerate bool) (Analysis, error) {
	return s.run(ctx, KindSummary, userID, documentID, regenerate)
}

// RunInsights runs both analyses of a document concurrently.
func (s *Service) RunInsights(ctx context.Context, userID, documentID string, regenerate bool) (Insights, error) {
	var out Insights
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.RunRisks(gctx, userID, documentID, regenerate)
		out.Risks = a
		return err
	})
	g.Go(func() error {
		a, err := s.RunSummary(gctx, userID, documentID, regenerate)
		out.Summary = a
		return err
	})
	if err := g.Wait(); err != nil {
		return Insights{}, err
	}
	return out, nil
}

// run collapses identical concurrent requests into one analysis.
func (s *Service) run(ctx context.Context, kind Kind, userID, documentID string, regenerate bool) (Analysis, error) {
	if userID == "" || documentID == "" {
		return Analysis{}, ErrInvalidInput
	}
	doc, err := s.Documents.Get(ctx, userID, documentID)
	if err != nil {
		return Analysis{}, err
	}

	key := strings.Join([]string{string(kind), userID, documentID, strconv.FormatBool(regenerate)}, "|")
	v, err, shared := s.inflight.Do(key, func() (any, error) {
		return s.execute(ctx, kind, doc, regenerate)
	})
	if err != nil {
		return Analysis{}, err
	}
	if shared {
		telemetry.Info("analyses.shared", map[string]any{
			"kind":        string(kind),
			"document_id": documentID,
		})
	}
	return v.(Analysis), nil
}

func (s *Service) execute(ctx context.Context, kind Kind, doc documents.Document, regenerate bool) (Analysis, error) {
	started := time.Now()
	callCtx := ctx
	if regenerate {
		callCtx = upstream.WithRefresh(callCtx)
	}
	callCtx, cancel := context.WithTimeout(callCtx, s.timeout())
	defer cancel()

	a := Analysis{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		UserID:     doc.UserID,
		Kind:       kind,
	}
	switch kind {
	case KindRisks:
		a.Risks, a.Outcome, a.Notice = s.assessRisks(callCtx, doc)
	case KindSummary:
		a.Sections, a.Outcome, a.Notice = s.summarise(callCtx, doc)
	default:
		return Analysis{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, kind)
	}

	fingerprint, err := canonical.Digest(a.Records())
	if err != nil {
		return Analysis{}, fmt.Errorf("fingerprint records: %w", err)
	}
	a.Fingerprint = fingerprint
	a.CreatedAt = s.now()

	if err := s.Repo.Create(ctx, a); err != nil {
		return Analysis{}, err
	}

	elapsed := time.Since(started)
	metrics.ObserveAnalysis(string(kind), string(a.Outcome), elapsed)
	telemetry.Info("analyses.completed", map[string]any{
		"analysis_id": a.ID,
		"document_id": doc.ID,
		"kind":        string(kind),
		"outcome":     string(a.Outcome),
		"degraded":    a.Notice != "",
		"duration_ms": elapsed.Milliseconds(),
		"regenerate":  regenerate,
	})
	return a, nil
}

func (s *Service) assessRisks(ctx context.Context, doc documents.Document) ([]classify.Risk, classify.Outcome, string) {
	if doc.UpstreamDocID == "" {
		return classify.FallbackRisks(), classify.OutcomeFallback, noticeNotIngested
	}
	if s.Upstream == nil {
		return classify.FallbackRisks(), classify.OutcomeFallback, connectionNotice(errUpstreamNotConfigured)
	}

	payload, err := s.Upstream.Risk(ctx, doc.UpstreamDocID)
	if err != nil {
		logDegraded(KindRisks, doc.ID, err)
		return classify.FallbackRisks(), classify.OutcomeFallback, connectionNotice(err)
	}

	switch payload.Kind {
	case upstream.KindList:
		risks, err := risksFromList(payload.List)
		if err != nil {
			logDegraded(KindRisks, doc.ID, err)
			return classify.FallbackRisks(), classify.OutcomeFallback, noticeInvalidList
		}
		return risks, classify.OutcomeStructured, ""
	case upstream.KindText:
		if strings.TrimSpace(payload.Text) != "" {
			risks, outcome := classify.ParseRisks(payload.Text)
			return risks, outcome, ""
		}
	}
	return classify.FallbackRisks(), classify.OutcomeFallback, ""
}

func (s *Service) summarise(ctx context.Context, doc documents.Document) ([]classify.Section, classify.Outcome, string) {
	if s.Upstream == nil {
		return classify.FallbackSections(), classify.OutcomeFallback, connectionNotice(errUpstreamNotConfigured)
	}

	// Without the bytes the service summarises its own copy.
	content, err := s.Documents.ReadContent(ctx, doc)
	if err != nil {
		telemetry.Warn("analyses.read_document_failed", map[string]any{
			"document_id": doc.ID,
			"error":       util.SanitizeError(err),
		})
	}
	docID := doc.UpstreamDocID
	if docID == "" {
		docID = doc.ID
	}

	payload, err := s.Upstream.Summarise(ctx, upstream.SummariseInput{
		DocID:    docID,
		FileName: doc.FileName,
		Content:  content,
	})
	if err != nil {
		logDegraded(KindSummary, doc.ID, err)
		return classify.FallbackSections(), classify.OutcomeFallback, connectionNotice(err)
	}

	switch payload.Kind {
	case upstream.KindObject:
		sections, outcome := classify.ClassifySections(sectionInputs(payload.Entries))
		return sections, outcome, ""
	case upstream.KindText:
		sections, outcome := classify.SectionsFromNarrative(payload.Text)
		return sections, outcome, ""
	}
	return classify.FallbackSections(), classify.OutcomeFallback, ""
}

// Get returns one run of a user.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if userID == "" || analysisID == "" {
		return Analysis{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, analysisID)
}

// ListByDocument returns the recent runs over a document, newest first.
func (s *Service) ListByDocument(ctx context.Context, userID, documentID string) ([]Analysis, error) {
	if userID == "" || documentID == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.Documents.Get(ctx, userID, documentID); err != nil {
		return nil, err
	}
	return s.Repo.ListByDocument(ctx, userID, documentID, historyLimit)
}

// Report renders a whole run as a text download.
func (s *Service) Report(ctx context.Context, userID, analysisID string) (Export, error) {
	a, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return Export{}, err
	}
	if a.Kind == KindSummary {
		return Export{FileName: classify.SummaryFileName(s.now()), Body: summaryText(a.Sections)}, nil
	}
	return Export{FileName: classify.AssessmentFileName(s.now()), Body: assessmentText(a.Risks)}, nil
}

// RecordReport renders one record of a run as a text download.
func (s *Service) RecordReport(ctx context.Context, userID, analysisID, recordID string) (Export, error) {
	a, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return Export{}, err
	}
	switch a.Kind {
	case KindRisks:
		for _, r := range a.Risks {
			if r.ID == recordID {
				return Export{FileName: classify.ReportFileName(r.ID, s.now()), Body: r.Report()}, nil
			}
		}
	case KindSummary:
		for _, sec := range a.Sections {
			if sec.ID == recordID {
				return Export{FileName: classify.SectionFileName(sec.Title, s.now()), Body: sec.Report()}, nil
			}
		}
	}
	return Export{}, ErrRecordNotFound
}

// summaryText is the text the summary was built from, or the digest of the
// sections when the run fell back.
func summaryText(sections []classify.Section) string {
	if len(sections) > 0 && sections[0].OriginalResponse != "" {
		return sections[0].OriginalResponse
	}
	inputs := make([]classify.SectionInput, 0, len(sections))
	for _, sec := range sections {
		inputs = append(inputs, classify.SectionInput{Heading: sec.Title, Body: sec.Description})
	}
	return classify.SectionDigest(inputs)
}

// assessmentText joins the risk reports, with the shared original analysis
// written once at the end.
func assessmentText(risks []classify.Risk) string {
	var original string
	parts := make([]string, 0, len(risks))
	for _, r := range risks {
		if original == "" {
			original = r.OriginalResponse
		}
		r.OriginalResponse = ""
		parts = append(parts, r.Report())
	}
	body := strings.Join(parts, "\n\n"+strings.Repeat("-", 40)+"\n\n")
	if original != "" {
		body += "\n\n" + strings.Repeat("=", 40) + "\n\nOriginal Analysis:\n" + original
	}
	return body
}

func connectionNotice(err error) string {
	return fmt.Sprintf("API connection failed: %s. Using demo data.", util.SanitizeError(err))
}

func logDegraded(kind Kind, documentID string, err error) {
	telemetry.Warn("analyses.degraded", map[string]any{
		"kind":        string(kind),
		"document_id": documentID,
		"error":       util.SanitizeError(err),
	})
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
