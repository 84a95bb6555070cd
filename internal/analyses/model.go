package analyses

import (
	"time"

	"legal-backend/internal/classify"
)

// Kind is the analysis a run performed.
type Kind string

const (
	KindRisks   Kind = "risks"
	KindSummary Kind = "summary"
)

// Valid reports whether k is a known analysis kind.
func (k Kind) Valid() bool {
	return k == KindRisks || k == KindSummary
}

// Analysis is one stored run over a document. Risks is set for risk runs
// and Sections for summary runs.
type Analysis struct {
	ID          string             `json:"id"`
	DocumentID  string             `json:"documentId"`
	UserID      string             `json:"userId"`
	Kind        Kind               `json:"kind"`
	Outcome     classify.Outcome   `json:"outcome"`
	Notice      string             `json:"notice,omitempty"`
	Risks       []classify.Risk    `json:"risks,omitempty"`
	Sections    []classify.Section `json:"sections,omitempty"`
	Fingerprint string             `json:"fingerprint"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Records returns the records of the run as a value that marshals to a
// JSON array.
func (a Analysis) Records() any {
	if a.Kind == KindSummary {
		if a.Sections == nil {
			return []classify.Section{}
		}
		return a.Sections
	}
	if a.Risks == nil {
		return []classify.Risk{}
	}
	return a.Risks
}

// Stats tallies a risk run. Summary runs have no stats.
func (a Analysis) Stats() *classify.RiskStats {
	if a.Kind != KindRisks {
		return nil
	}
	stats := classify.Tally(a.Risks)
	return &stats
}
