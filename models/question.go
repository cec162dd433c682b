package models

// ConditionQuestion is one item of the condition questionnaire. Single-select questions keep
// at most one entry in Answer.
type ConditionQuestion struct {
	Key           string   `json:"key" bson:"key" yaml:"key"`
	Label         string   `json:"label" bson:"label" yaml:"label"`
	Options       []string `json:"options" bson:"options" yaml:"options"`
	IsMultiSelect bool     `json:"isMultiSelect" bson:"isMultiSelect" yaml:"isMultiSelect"`
	Answer        []string `json:"answer" bson:"answer" yaml:"answer"`
	NeedsDetails  []string `json:"needsDetails" bson:"needsDetails" yaml:"needsDetails"`
	Details       string   `json:"details" bson:"details" yaml:"details"`
}

// Value returns the single-select answer, or the empty string
func (q ConditionQuestion) Value() string {
	if len(q.Answer) == 0 {
		return ""
	}
	return q.Answer[0]
}

// DeductionResult maps a business field name to a signed currency amount. Positive amounts
// reduce the offer, negative amounts add to it.
type DeductionResult map[string]int

// Total returns the sum of every entry
func (d DeductionResult) Total() int {
	total := 0
	for _, amount := range d {
		total += amount
	}
	return total
}
