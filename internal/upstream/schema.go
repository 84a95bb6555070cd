package upstream

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed risk_list.schema.json
var riskListSchemaJSON []byte

// ErrInvalidRiskList is returned when a structured risk list does not match
// the risk record shape or vocabularies.
var ErrInvalidRiskList = errors.New("structured risk list is invalid")

var (
	riskListSchemaOnce sync.Once
	riskListSchema     *jsonschema.Schema
	riskListSchemaErr  error
)

func loadRiskListSchema() (*jsonschema.Schema, error) {
	riskListSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		schema, err := compiler.Compile(riskListSchemaJSON)
		if err != nil {
			riskListSchemaErr = fmt.Errorf("compile risk list schema: %w", err)
			return
		}
		riskListSchema = schema
	})
	return riskListSchema, riskListSchemaErr
}

// ValidateRiskList checks raw against the risk list schema.
func ValidateRiskList(raw json.RawMessage) error {
	schema, err := loadRiskListSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(raw)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidRiskList, result.Errors)
}
