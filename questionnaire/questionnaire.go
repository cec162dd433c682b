// Package questionnaire holds the fixed condition questionnaire and the rules for changing
// its answers. Every function returns a new slice and leaves its input untouched.
package questionnaire

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

// Question keys
const (
	CosmeticCondition = "cosmetic_condition"
	SmokedWindows     = "smoked_windows"
	TitleStatus       = "title_status"
	AccidentHistory   = "accident_history"
	NotableFeatures   = "notable_features"
	Modifications     = "modifications"
	WarningLights     = "warning_lights"
	TireCondition     = "tire_condition"
)

// NoneOfTheAbove is the multi-select option that excludes every other option
const NoneOfTheAbove = "None of the above"

var (
	// ErrUnknownQuestion is returned for a key that is not in the questionnaire
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrUnknownOption is returned for an answer that is not one of the question's options
	ErrUnknownOption = errors.New("answer is not an option of this question")
)

var catalog = []models.ConditionQuestion{
	{
		Key:          CosmeticCondition,
		Label:        "Cosmetic condition",
		Options:      []string{"Excellent", "Good", "Fair", "Poor"},
		Answer:       []string{"Excellent"},
		NeedsDetails: []string{"Fair", "Poor"},
	},
	{
		Key:     SmokedWindows,
		Label:   "Has the vehicle been smoked in?",
		Options: []string{"No", "Yes"},
		Answer:  []string{"No"},
	},
	{
		Key:          TitleStatus,
		Label:        "Title status",
		Options:      []string{"Clean", "Rebuilt", "Salvage", "Lemon"},
		Answer:       []string{"Clean"},
		NeedsDetails: []string{"Rebuilt", "Salvage", "Lemon"},
	},
	{
		Key:          AccidentHistory,
		Label:        "Accident history",
		Options:      []string{"None", "Minor", "Major"},
		Answer:       []string{"None"},
		NeedsDetails: []string{"Minor", "Major"},
	},
	{
		Key:           NotableFeatures,
		Label:         "Notable features",
		Options:       []string{"Leather", "Sunroof", "Navigation", "Premium Sound", "Third Row Seating", NoneOfTheAbove},
		IsMultiSelect: true,
	},
	{
		Key:          Modifications,
		Label:        "Aftermarket modifications",
		Options:      []string{"No", "Yes"},
		Answer:       []string{"No"},
		NeedsDetails: []string{"Yes"},
	},
	{
		Key:          WarningLights,
		Label:        "Dashboard warning lights",
		Options:      []string{"No", "Yes"},
		Answer:       []string{"No"},
		NeedsDetails: []string{"Yes"},
	},
	{
		Key:          TireCondition,
		Label:        "Tire tread",
		Options:      []string{"New", "Good", "Fair", "Poor", "Replace"},
		Answer:       []string{"New"},
		NeedsDetails: []string{"Poor", "Replace"},
	},
}

// Defaults returns the questionnaire with every question at its default answer
func Defaults() []models.ConditionQuestion {
	return clone(catalog)
}

// Reset is Defaults; it is what a new VIN intake or a logout starts from
func Reset() []models.ConditionQuestion {
	return Defaults()
}

// UpdateAnswer sets the answer of a single-select question, or toggles the option of a
// multi-select question.
func UpdateAnswer(questions []models.ConditionQuestion, key, answer string) ([]models.ConditionQuestion, error) {
	out := clone(questions)
	q, err := find(out, key)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(q.Options, answer) {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownOption, answer, key)
	}

	if !q.IsMultiSelect {
		q.Answer = []string{answer}
		if !slices.Contains(q.NeedsDetails, answer) {
			q.Details = ""
		}
		return out, nil
	}

	switch {
	case slices.Contains(q.Answer, answer):
		q.Answer = slices.DeleteFunc(q.Answer, func(a string) bool { return a == answer })
	case answer == NoneOfTheAbove:
		q.Answer = []string{NoneOfTheAbove}
	default:
		q.Answer = slices.DeleteFunc(q.Answer, func(a string) bool { return a == NoneOfTheAbove })
		q.Answer = append(q.Answer, answer)
	}
	if len(q.Answer) == 0 || (len(q.NeedsDetails) > 0 && !needsDetails(*q)) {
		q.Details = ""
	}
	return out, nil
}

// UpdateDetails sets the free text elaboration of a question
func UpdateDetails(questions []models.ConditionQuestion, key, text string) ([]models.ConditionQuestion, error) {
	out := clone(questions)
	q, err := find(out, key)
	if err != nil {
		return nil, err
	}
	q.Details = text
	return out, nil
}

// Missing returns the keys of questions that still block the assessment step: a
// single-select question without an answer, or an answer that needs details without them.
func Missing(questions []models.ConditionQuestion) []string {
	var keys []string
	for _, q := range questions {
		if !q.IsMultiSelect && q.Value() == "" {
			keys = append(keys, q.Key)
			continue
		}
		if needsDetails(q) && strings.TrimSpace(q.Details) == "" {
			keys = append(keys, q.Key)
		}
	}
	return keys
}

// AllAnswered reports whether Missing is empty
func AllAnswered(questions []models.ConditionQuestion) bool {
	return len(Missing(questions)) == 0
}

// AnswerText renders an answer for display and payloads
func AnswerText(q models.ConditionQuestion) string {
	return strings.Join(q.Answer, ", ")
}

func needsDetails(q models.ConditionQuestion) bool {
	for _, a := range q.Answer {
		if slices.Contains(q.NeedsDetails, a) {
			return true
		}
	}
	return false
}

func find(questions []models.ConditionQuestion, key string) (*models.ConditionQuestion, error) {
	for i := range questions {
		if questions[i].Key == key {
			return &questions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, key)
}

func clone(questions []models.ConditionQuestion) []models.ConditionQuestion {
	out := make([]models.ConditionQuestion, len(questions))
	for i, q := range questions {
		q.Options = slices.Clone(q.Options)
		q.Answer = slices.Clone(q.Answer)
		q.NeedsDetails = slices.Clone(q.NeedsDetails)
		if q.Answer == nil {
			q.Answer = []string{}
		}
		out[i] = q
	}
	return out
}
