package classify

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	impactSnippetLength = 100
	defaultMitigation   = "Review the specific clause terms and consider legal consultation for clarification and potential negotiation."
)

type draft struct {
	title       string
	description string
	// text is what the classifier reads; for risks the whole block.
	text string
}

// assemble drops degenerate drafts and numbers the survivors "1".."N".
func assemble[T any](drafts []draft, build func(id string, d draft) T) []T {
	out := make([]T, 0, len(drafts))
	for _, d := range drafts {
		if d.title == "" || d.description == "" {
			continue
		}
		if utf8.RuneCountInString(d.description) <= minDescriptionLength {
			continue
		}
		out = append(out, build(strconv.Itoa(len(out)+1), d))
	}
	return out
}

// ParseRisks turns a risk narrative into records. It never returns an empty
// slice: a narrative without usable blocks yields the fallback set.
func ParseRisks(narrative string) ([]Risk, Outcome) {
	if noFindings(narrative) {
		rec := noFindingsRisk()
		rec.OriginalResponse = narrative
		return []Risk{rec}, OutcomeNoFindings
	}

	blocks := Segment(narrative)
	drafts := make([]draft, 0, len(blocks))
	for i, block := range blocks {
		title, description := extractFields(block, i+1)
		drafts = append(drafts, draft{title: title, description: description, text: block})
	}

	risks := assemble(drafts, func(id string, d draft) Risk {
		labels := ClassifyRisk(d.text)
		return Risk{
			Record: Record{
				ID:               id,
				Title:            d.title,
				Description:      d.description,
				OriginalResponse: narrative,
			},
			Category:   labels.Category,
			Severity:   labels.Severity,
			Likelihood: labels.Likelihood,
			Impact:     impactFor(d.title, d.description),
			Mitigation: defaultMitigation,
		}
	})
	if len(risks) == 0 {
		return FallbackRisks(), OutcomeFallback
	}
	return risks, OutcomeExtracted
}

// ClassifySections labels heading/body pairs in the order given.
func ClassifySections(inputs []SectionInput) ([]Section, Outcome) {
	digest := SectionDigest(inputs)
	drafts := make([]draft, 0, len(inputs))
	for _, in := range inputs {
		drafts = append(drafts, draft{
			title:       strings.TrimSpace(in.Heading),
			description: strings.TrimSpace(in.Body),
		})
	}

	sections := assemble(drafts, func(id string, d draft) Section {
		labels := ClassifySection(d.title, d.description)
		return Section{
			Record: Record{
				ID:               id,
				Title:            d.title,
				Description:      d.description,
				OriginalResponse: digest,
			},
			Category: labels.Category,
			Priority: labels.Priority,
		}
	})
	if len(sections) == 0 {
		return FallbackSections(), OutcomeFallback
	}
	return sections, OutcomeExtracted
}

// SectionsFromNarrative handles a summary that arrived as one block of text:
// it becomes the body of the overview section of the fallback set.
func SectionsFromNarrative(text string) ([]Section, Outcome) {
	sections := FallbackSections()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return sections, OutcomeFallback
	}
	sections[0].Description = trimmed
	sections[0].OriginalResponse = trimmed
	return sections, OutcomeNarrative
}

// SectionDigest renders heading/body pairs as "heading:\nbody" blocks.
func SectionDigest(inputs []SectionInput) string {
	parts := make([]string, 0, len(inputs))
	for _, in := range inputs {
		parts = append(parts, strings.TrimSpace(in.Heading)+":\n"+strings.TrimSpace(in.Body))
	}
	return strings.Join(parts, "\n\n")
}

// impactFor keeps the snippet on one line so the impact never holds a
// report marker.
func impactFor(title, description string) string {
	snippet := whitespaceRun.ReplaceAllString(description, " ")
	if utf8.RuneCountInString(snippet) > impactSnippetLength {
		snippet = string([]rune(snippet)[:impactSnippetLength])
	}
	return "Risk related to " + strings.ToLower(title) + ". " + snippet + "..."
}

// CompleteRisk fills the fields a structured record arrived without. A
// missing id becomes the 1-based ordinal, missing labels are classified
// from the title and description, and impact and mitigation are derived.
func CompleteRisk(r Risk, ordinal int) Risk {
	r.Title = strings.TrimSpace(whitespaceRun.ReplaceAllString(r.Title, " "))
	r.Description = strings.TrimSpace(r.Description)
	if strings.TrimSpace(r.ID) == "" {
		r.ID = strconv.Itoa(ordinal)
	}
	labels := ClassifyRisk(r.Title + " " + r.Description)
	if !r.Category.Valid() {
		r.Category = labels.Category
	}
	if !r.Severity.Valid() {
		r.Severity = labels.Severity
	}
	if !r.Likelihood.Valid() {
		r.Likelihood = labels.Likelihood
	}
	if strings.TrimSpace(r.Impact) == "" {
		r.Impact = impactFor(r.Title, r.Description)
	}
	if strings.TrimSpace(r.Mitigation) == "" {
		r.Mitigation = defaultMitigation
	}
	return r
}
