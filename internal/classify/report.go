package classify

import (
	"regexp"
	"strings"
	"time"
)

const (
	impactMarker     = "\n\nImpact: "
	mitigationMarker = "\n\nMitigation: "
	originalMarker   = "\n\nOriginal Analysis:\n"
	reportDateLayout = "2006-01-02"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Report renders the plain-text export of a risk.
func (r Risk) Report() string {
	var b strings.Builder
	b.WriteString(r.Title)
	b.WriteString("\n\n")
	b.WriteString(r.Description)
	if r.Impact != "" {
		b.WriteString(impactMarker)
		b.WriteString(r.Impact)
	}
	if r.Mitigation != "" {
		b.WriteString(mitigationMarker)
		b.WriteString(r.Mitigation)
	}
	if r.OriginalResponse != "" {
		b.WriteString(originalMarker)
		b.WriteString(r.OriginalResponse)
	}
	return b.String()
}

// Report renders the plain-text export of a section.
func (s Section) Report() string {
	return s.Title + "\n\n" + s.Description
}

// ParseReport reads title and description back out of an export produced
// by Risk.Report or Section.Report. Trailing parts are located from the
// right, so a description may itself contain a marker.
func ParseReport(report string) (title, description string, ok bool) {
	title, body, found := strings.Cut(report, "\n\n")
	if !found || title == "" {
		return "", "", false
	}
	end := len(body)
	if i := strings.Index(body, originalMarker); i >= 0 {
		end = i
	}
	if i := strings.LastIndex(body[:end], mitigationMarker); i >= 0 {
		end = i
	}
	if i := strings.LastIndex(body[:end], impactMarker); i >= 0 {
		end = i
	}
	return title, body[:end], true
}

// ReportFileName names the export of risk id on day t.
func ReportFileName(id string, t time.Time) string {
	return "risk-" + id + "-" + t.UTC().Format(reportDateLayout) + ".txt"
}

// SectionFileName names the export of a section on day t.
func SectionFileName(title string, t time.Time) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
	return slug + "-" + t.UTC().Format(reportDateLayout) + ".txt"
}

// SummaryFileName names the export of a whole summary on day t.
func SummaryFileName(t time.Time) string {
	return "document-summary-" + t.UTC().Format(reportDateLayout) + ".txt"
}

// AssessmentFileName names the export of a whole risk assessment on day t.
func AssessmentFileName(t time.Time) string {
	return "risk-assessment-" + t.UTC().Format(reportDateLayout) + ".txt"
}

// RiskStats counts risks per severity.
type RiskStats struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Tally counts risks per severity.
func Tally(risks []Risk) RiskStats {
	stats := RiskStats{Total: len(risks)}
	for _, r := range risks {
		switch r.Severity {
		case SeverityCritical:
			stats.Critical++
		case SeverityHigh:
			stats.High++
		case SeverityMedium:
			stats.Medium++
		case SeverityLow:
			stats.Low++
		}
	}
	return stats
}
