package analyses

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"legal-backend/internal/classify"
	"legal-backend/internal/upstream"
)

// risksFromList turns a structured risk list into records. The list is
// validated against the risk list schema first; fields it leaves out are
// filled the way narrative records are. Records keep the raw list as their
// original response.
func risksFromList(raw json.RawMessage) ([]classify.Risk, error) {
	if err := upstream.ValidateRiskList(raw); err != nil {
		return nil, err
	}
	original := strings.TrimSpace(string(raw))

	var risks []classify.Risk
	gjson.ParseBytes(raw).ForEach(func(_, item gjson.Result) bool {
		r := classify.Risk{
			Record: classify.Record{
				ID:               item.Get("id").String(),
				Title:            item.Get("title").String(),
				Description:      item.Get("description").String(),
				OriginalResponse: original,
			},
			Category:   classify.RiskCategory(item.Get("category").String()),
			Severity:   classify.Severity(item.Get("severity").String()),
			Likelihood: classify.Likelihood(item.Get("likelihood").String()),
			Impact:     item.Get("impact").String(),
			Mitigation: item.Get("mitigation").String(),
		}
		risks = append(risks, classify.CompleteRisk(r, len(risks)+1))
		return true
	})
	return risks, nil
}

// sectionInputs keeps the order the service listed its headings in.
func sectionInputs(entries []upstream.Entry) []classify.SectionInput {
	out := make([]classify.SectionInput, 0, len(entries))
	for _, e := range entries {
		out = append(out, classify.SectionInput{Heading: e.Key, Body: e.Value})
	}
	return out
}
