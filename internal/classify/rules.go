package classify

import "strings"

type rule[L ~string] struct {
	label    L
	keywords []string
}

// ruleTable is evaluated top to bottom; the first rule with any keyword
// contained in the text wins.
type ruleTable[L ~string] struct {
	rules    []rule[L]
	fallback L
}

// match expects text to be lowercased already.
func (t ruleTable[L]) match(text string) L {
	for _, r := range t.rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.label
			}
		}
	}
	return t.fallback
}

var riskCategoryRules = ruleTable[RiskCategory]{
	rules: []rule[RiskCategory]{
		{label: CategoryFinancial, keywords: []string{"deposit", "cost", "rent", "payment", "fee"}},
		{label: CategoryLegal, keywords: []string{"legal", "law", "liability"}},
		{label: CategoryCompliance, keywords: []string{"registration", "compliance", "regulation"}},
		{label: CategoryOperational, keywords: []string{"eviction", "termination"}},
	},
	fallback: CategoryContractual,
}

var severityRules = ruleTable[Severity]{
	rules: []rule[Severity]{
		{label: SeverityHigh, keywords: []string{"excessive", "significant", "major", "critical", "disputes", "penalty"}},
		{label: SeverityMedium, keywords: []string{"minor", "consider"}},
		{label: SeverityMedium, keywords: []string{"vague", "unclear", "ambiguous"}},
	},
	fallback: SeverityMedium,
}

var likelihoodRules = ruleTable[Likelihood]{
	rules: []rule[Likelihood]{
		{label: LikelihoodLikely, keywords: []string{"could lead to", "may result in"}},
		{label: LikelihoodVeryLikely, keywords: []string{"significant", "disputes"}},
	},
	fallback: LikelihoodPossible,
}

var sectionCategoryRules = ruleTable[SectionCategory]{
	rules: []rule[SectionCategory]{
		{label: SectionOverview, keywords: []string{"overview", "introduction", "preamble"}},
		{label: SectionKeyTerms, keywords: []string{"payment", "fee", "termination", "term"}},
		{label: SectionObligations, keywords: []string{"obligation", "duty", "responsibility"}},
		{label: SectionRisks, keywords: []string{"risk", "liability", "penalty"}},
		{label: SectionDates, keywords: []string{"date", "deadline", "time", "schedule"}},
	},
	fallback: SectionOverview,
}

var priorityRules = ruleTable[Priority]{
	rules: []rule[Priority]{
		{label: PriorityHigh, keywords: []string{"penalty", "liability", "termination", "payment"}},
		{label: PriorityMedium, keywords: []string{"obligation", "requirement", "must"}},
	},
	fallback: PriorityLow,
}

// RiskLabels is the classification of one risk block. Each axis is decided
// by its own table.
type RiskLabels struct {
	Category   RiskCategory
	Severity   Severity
	Likelihood Likelihood
}

// ClassifyRisk labels a block of narrative text.
func ClassifyRisk(text string) RiskLabels {
	lower := strings.ToLower(text)
	return RiskLabels{
		Category:   riskCategoryRules.match(lower),
		Severity:   severityRules.match(lower),
		Likelihood: likelihoodRules.match(lower),
	}
}

// SectionLabels is the classification of one summary section.
type SectionLabels struct {
	Category SectionCategory
	Priority Priority
}

// ClassifySection derives the category from the heading and the priority
// from the body.
func ClassifySection(heading, body string) SectionLabels {
	return SectionLabels{
		Category: sectionCategoryRules.match(strings.ToLower(heading)),
		Priority: priorityRules.match(strings.ToLower(body)),
	}
}
