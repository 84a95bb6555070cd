package upstream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRiskList(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		valid bool
	}{
		{name: "full record", raw: `[{"id":"1","title":"Cap","description":"Liability is capped.","category":"legal","severity":"high","likelihood":"likely","impact":"x","mitigation":"y"}]`, valid: true},
		{name: "numeric id and no labels", raw: `[{"id":3,"title":"Cap","description":"Liability is capped."}]`, valid: true},
		{name: "unknown severity", raw: `[{"title":"Cap","description":"d","severity":"extreme"}]`},
		{name: "missing description", raw: `[{"title":"Cap"}]`},
		{name: "empty list", raw: `[]`},
		{name: "not a list", raw: `{"title":"Cap","description":"d"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRiskList(json.RawMessage(tc.raw))
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidRiskList)
		})
	}
}
