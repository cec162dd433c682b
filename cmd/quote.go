package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/linesmerrill/vehicle-intake-api/deduction"
	"github.com/linesmerrill/vehicle-intake-api/models"
	"github.com/linesmerrill/vehicle-intake-api/questionnaire"
)

var pricingPath string

var quoteCmd = &cobra.Command{
	Use:   "quote <answers.yaml>",
	Short: "Print the deductions for a set of condition answers",
	Long: `quote reads condition answers keyed by question, for example

  cosmetic_condition: Good
  notable_features: [Leather, Sunroof]

and prints the deduction of every question and their total. Questions left out keep
their default answer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		table, err := deduction.LoadTable(pricingPath)
		if err != nil {
			return err
		}
		return quote(cmd.OutOrStdout(), deduction.New(table), b)
	},
}

func init() {
	quoteCmd.Flags().StringVar(&pricingPath, "pricing", os.Getenv("PRICING_TABLE_PATH"), "pricing table YAML, the built-in table when empty")
}

// answers is a single answer or a list of them
type answers []string

func (a *answers) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*a = answers{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*a = list
		return nil
	}
	return fmt.Errorf("line %d: answer must be a string or a list", value.Line)
}

func quote(w io.Writer, engine *deduction.Engine, raw []byte) error {
	var input map[string]answers
	if err := yaml.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("failed to parse answers: %w", err)
	}

	questions := questionnaire.Defaults()
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		var err error
		if questions, err = answer(questions, key, input[key]); err != nil {
			return err
		}
	}

	result := engine.Compute(questions)
	fields := make([]string, 0, len(result))
	for field := range result {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "%-24s %6d\n", field, result[field])
	}
	fmt.Fprintf(w, "%-24s %6d\n", "total", result.Total())

	if unmapped := engine.Unmapped(questions); len(unmapped) > 0 {
		fmt.Fprintf(w, "unpriced answers: %v\n", unmapped)
	}
	return nil
}

// answer replaces the answer of key. Multi-select options are toggled on one by one.
func answer(questions []models.ConditionQuestion, key string, values answers) ([]models.ConditionQuestion, error) {
	for _, q := range questions {
		if q.Key != key || q.IsMultiSelect {
			continue
		}
		if len(values) != 1 {
			return nil, fmt.Errorf("%s takes a single answer, got %d", key, len(values))
		}
	}
	var err error
	for _, v := range values {
		if questions, err = questionnaire.UpdateAnswer(questions, key, v); err != nil {
			return nil, err
		}
	}
	return questions, nil
}
