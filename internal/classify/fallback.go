package classify

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackSet struct {
	NoFindings Risk      `yaml:"no_findings"`
	Risks      []Risk    `yaml:"risks"`
	Sections   []Section `yaml:"sections"`
}

var fallback = mustLoadFallback(fallbackYAML)

func mustLoadFallback(data []byte) fallbackSet {
	var set fallbackSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		panic(fmt.Sprintf("classify: decode fallback records: %v", err))
	}
	if len(set.Risks) == 0 || len(set.Sections) == 0 {
		panic("classify: fallback records are empty")
	}
	return set
}

// FallbackRisks returns the canned risk set. Each call returns a new slice.
func FallbackRisks() []Risk {
	return append([]Risk(nil), fallback.Risks...)
}

// FallbackSections returns the canned summary set. Each call returns a new slice.
func FallbackSections() []Section {
	return append([]Section(nil), fallback.Sections...)
}

func noFindingsRisk() Risk {
	return fallback.NoFindings
}
