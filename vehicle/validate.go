package vehicle

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

// TrackedFields is the number of detail form fields counted by Completion
const TrackedFields = 8

var mileagePattern = regexp.MustCompile(`^\d{1,7}$`)

type field struct {
	name  string
	value func(models.VehicleRecord) string
	check func(string) string
}

var trackedFields = []field{
	{"mileage", func(v models.VehicleRecord) string { return v.Mileage }, checkMileage},
	{"exteriorColor", func(v models.VehicleRecord) string { return v.ExteriorColor }, checkSelected},
	{"interiorColor", func(v models.VehicleRecord) string { return v.InteriorColor }, checkSelected},
	{"bodyType", func(v models.VehicleRecord) string { return v.BodyType }, checkSelected},
	{"transmission", func(v models.VehicleRecord) string { return v.Transmission }, checkSelected},
	{"fuelType", func(v models.VehicleRecord) string { return v.FuelType }, checkSelected},
	{"engineType", func(v models.VehicleRecord) string { return v.EngineType }, checkFreeText},
	{"bodyEngineType", func(v models.VehicleRecord) string { return v.BodyEngineType }, checkFreeText},
}

// Validate returns one FieldError per tracked field that does not pass
func Validate(v models.VehicleRecord) []models.FieldError {
	var errs []models.FieldError
	for _, f := range trackedFields {
		if msg := f.check(f.value(v)); msg != "" {
			errs = append(errs, models.FieldError{Field: f.name, Message: msg})
		}
	}
	return errs
}

// Completion counts the valid tracked fields of v
func Completion(v models.VehicleRecord) models.Completion {
	errs := Validate(v)
	completed := TrackedFields - len(errs)
	return models.Completion{
		CompletedCount: completed,
		TotalFields:    TrackedFields,
		AllValid:       completed == TrackedFields,
		Errors:         errs,
	}
}

func checkMileage(v string) string {
	if !mileagePattern.MatchString(v) {
		return "mileage must be 1 to 7 digits"
	}
	return ""
}

func checkSelected(v string) string {
	if IsEmptyValue(v) {
		return "required"
	}
	return ""
}

func checkFreeText(v string) string {
	v = strings.TrimSpace(v)
	if len([]rune(v)) < 2 {
		return "must be at least 2 characters"
	}
	for _, r := range v {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return ""
		}
	}
	return "must contain a letter or digit"
}
