package assistant

import (
	_ "embed"
	"fmt"
	"hash/fnv"

	"gopkg.in/yaml.v3"
)

//go:embed canned.yaml
var cannedYAML []byte

type cannedSet struct {
	Simplifications []string `yaml:"simplifications"`
	Answers         []string `yaml:"answers"`
	Suggestions     []string `yaml:"suggestions"`
	Welcome         string   `yaml:"welcome"`
}

var canned = mustLoadCanned(cannedYAML)

func mustLoadCanned(data []byte) cannedSet {
	var set cannedSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		panic(fmt.Sprintf("assistant: decode canned texts: %v", err))
	}
	if len(set.Simplifications) == 0 || len(set.Answers) == 0 {
		panic("assistant: canned texts are empty")
	}
	return set
}

// pick chooses one of options by hashing key, so a repeated input always
// gets the same canned text.
func pick(options []string, key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return options[h.Sum32()%uint32(len(options))]
}
