// Package deduction turns questionnaire answers into signed price adjustments.
package deduction

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

//go:embed pricing.yaml
var defaultPricing []byte

// Table maps question key -> answer -> signed amount
type Table map[string]map[string]int

// ParseTable decodes a YAML pricing table
func ParseTable(b []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("failed to parse pricing table: %w", err)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("pricing table is empty")
	}
	return t, nil
}

// LoadTable reads a YAML pricing table from path. An empty path returns the built-in table.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return ParseTable(defaultPricing)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing table: %w", err)
	}
	return ParseTable(b)
}

// Engine applies a pricing table. It holds no other state and is safe for concurrent use.
type Engine struct {
	table Table
}

// New returns an engine over t
func New(t Table) *Engine {
	return &Engine{table: t}
}

// Default returns an engine over the built-in table
func Default() *Engine {
	t, err := ParseTable(defaultPricing)
	if err != nil {
		panic(err)
	}
	return New(t)
}

// Compute returns one entry per question. A multi-select question contributes the sum of
// its selected options. Answers missing from the table contribute zero.
func (e *Engine) Compute(questions []models.ConditionQuestion) models.DeductionResult {
	result := make(models.DeductionResult, len(questions))
	for _, q := range questions {
		amounts := e.table[q.Key]
		total := 0
		for _, answer := range q.Answer {
			total += amounts[answer]
		}
		result[q.Key] = total
	}
	return result
}

// Unmapped lists "key=answer" for every answer the table has no entry for
func (e *Engine) Unmapped(questions []models.ConditionQuestion) []string {
	var missing []string
	for _, q := range questions {
		amounts, ok := e.table[q.Key]
		for _, answer := range q.Answer {
			if _, found := amounts[answer]; !ok || !found {
				missing = append(missing, q.Key+"="+answer)
			}
		}
	}
	sort.Strings(missing)
	return missing
}
