package classify

// RiskCategory is the subject area a risk falls under.
type RiskCategory string

const (
	CategoryFinancial   RiskCategory = "financial"
	CategoryLegal       RiskCategory = "legal"
	CategoryCompliance  RiskCategory = "compliance"
	CategoryOperational RiskCategory = "operational"
	CategoryContractual RiskCategory = "contractual"
	// CategoryAssessment is only used by the no-findings record.
	CategoryAssessment RiskCategory = "assessment"
)

// Valid reports whether c belongs to the risk category vocabulary.
func (c RiskCategory) Valid() bool {
	switch c {
	case CategoryFinancial, CategoryLegal, CategoryCompliance, CategoryOperational, CategoryContractual, CategoryAssessment:
		return true
	}
	return false
}

// Severity is ordered critical > high > medium > low.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Valid reports whether s belongs to the severity vocabulary.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Rank orders severities; higher is worse. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Likelihood is ordered very-likely > likely > possible > unlikely.
type Likelihood string

const (
	LikelihoodVeryLikely Likelihood = "very-likely"
	LikelihoodLikely     Likelihood = "likely"
	LikelihoodPossible   Likelihood = "possible"
	LikelihoodUnlikely   Likelihood = "unlikely"
)

// Valid reports whether l belongs to the likelihood vocabulary.
func (l Likelihood) Valid() bool {
	switch l {
	case LikelihoodVeryLikely, LikelihoodLikely, LikelihoodPossible, LikelihoodUnlikely:
		return true
	}
	return false
}

// SectionCategory groups summary sections.
type SectionCategory string

const (
	SectionOverview    SectionCategory = "overview"
	SectionKeyTerms    SectionCategory = "key-terms"
	SectionObligations SectionCategory = "obligations"
	SectionRisks       SectionCategory = "risks"
	SectionDates       SectionCategory = "dates"
)

// Valid reports whether c belongs to the section category vocabulary.
func (c SectionCategory) Valid() bool {
	switch c {
	case SectionOverview, SectionKeyTerms, SectionObligations, SectionRisks, SectionDates:
		return true
	}
	return false
}

// Priority is ordered high > medium > low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p belongs to the priority vocabulary.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Record is the part shared by every classified item.
type Record struct {
	ID               string `json:"id" yaml:"id"`
	Title            string `json:"title" yaml:"title"`
	Description      string `json:"description" yaml:"description"`
	OriginalResponse string `json:"originalResponse,omitempty" yaml:"-"`
}

// Risk is one item of a risk assessment.
type Risk struct {
	Record     `yaml:",inline"`
	Category   RiskCategory `json:"category" yaml:"category"`
	Severity   Severity     `json:"severity" yaml:"severity"`
	Likelihood Likelihood   `json:"likelihood" yaml:"likelihood"`
	Impact     string       `json:"impact" yaml:"impact"`
	Mitigation string       `json:"mitigation" yaml:"mitigation"`
}

// Section is one heading of a document summary. Description holds the body.
type Section struct {
	Record   `yaml:",inline"`
	Category SectionCategory `json:"category" yaml:"category"`
	Priority Priority        `json:"priority" yaml:"priority"`
}

// SectionInput is one heading/body pair as returned by the analysis service.
type SectionInput struct {
	Heading string
	Body    string
}

// Outcome reports which path produced a record set.
type Outcome string

const (
	// OutcomeStructured marks records the analysis service already structured.
	OutcomeStructured Outcome = "structured"
	// OutcomeExtracted marks records segmented out of a narrative.
	OutcomeExtracted Outcome = "extracted"
	// OutcomeNarrative marks a summary that arrived as one block of text.
	OutcomeNarrative Outcome = "narrative"
	// OutcomeNoFindings marks the single record for a narrative that
	// reports no significant risks.
	OutcomeNoFindings Outcome = "no_findings"
	// OutcomeFallback marks the canned demo set.
	OutcomeFallback Outcome = "fallback"
)
