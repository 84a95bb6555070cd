package analyses

import "legal-backend/internal/classify"

// AnalysisResponse is a run plus its severity tally.
type AnalysisResponse struct {
	Analysis Analysis            `json:"analysis"`
	Stats    *classify.RiskStats `json:"stats,omitempty"`
}

// InsightsResponse pairs the risk and summary runs of one document.
type InsightsResponse struct {
	Risks   AnalysisResponse `json:"risks"`
	Summary AnalysisResponse `json:"summary"`
}

func toResponse(a Analysis) AnalysisResponse {
	return AnalysisResponse{Analysis: a, Stats: a.Stats()}
}
