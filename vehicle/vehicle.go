// Package vehicle merges VIN decode responses and user edits into one VehicleRecord and
// validates the detail form.
package vehicle

import (
	"errors"
	"regexp"
	"strings"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

var (
	// ErrInvalidVIN is returned for anything other than 17 VIN characters
	ErrInvalidVIN = errors.New("vin must be 17 letters or digits, excluding I, O and Q")
	// ErrInvalidZip is returned for anything other than 5 digits
	ErrInvalidZip = errors.New("zip code must be 5 digits")
	// ErrVINChanged is returned when an edit tries to replace a VIN that is already set
	ErrVINChanged = errors.New("vin cannot change once set")
)

var (
	vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	zipPattern = regexp.MustCompile(`^\d{5}$`)
)

// NormalizeVIN trims and upper-cases a VIN
func NormalizeVIN(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}

// ValidateVIN returns ErrInvalidVIN unless vin is a normalized 17 character VIN
func ValidateVIN(vin string) error {
	if !vinPattern.MatchString(vin) {
		return ErrInvalidVIN
	}
	return nil
}

// ValidZip reports whether zip is exactly 5 digits
func ValidZip(zip string) bool {
	return zipPattern.MatchString(zip)
}

// ValidateZip returns ErrInvalidZip unless zip is exactly 5 digits
func ValidateZip(zip string) error {
	if !ValidZip(zip) {
		return ErrInvalidZip
	}
	return nil
}

// CheckVIN returns ErrVINChanged when incoming carries a VIN different from the one
// already recorded
func CheckVIN(current, incoming models.VehicleRecord) error {
	if current.VIN == "" || incoming.VIN == "" {
		return nil
	}
	if NormalizeVIN(incoming.VIN) != current.VIN {
		return ErrVINChanged
	}
	return nil
}

// Merge fills current with the non-empty values of incoming. An empty incoming value
// never erases a stored one, and a VIN that is already set is kept.
//
// The derived EngineType and BodyEngineType are taken from incoming when it carries them.
// Otherwise they are recomputed when incoming carries any of their inputs, and kept as
// they were when it does not.
func Merge(current, incoming models.VehicleRecord) models.VehicleRecord {
	current = normalize(current)
	incoming = normalize(incoming)

	out := models.VehicleRecord{
		VIN:                 current.VIN,
		ZipCode:             pick(incoming.ZipCode, current.ZipCode),
		City:                pick(incoming.City, current.City),
		State:               pick(incoming.State, current.State),
		Make:                pick(incoming.Make, current.Make),
		Model:               pick(incoming.Model, current.Model),
		Year:                pick(incoming.Year, current.Year),
		EngineLiters:        pick(incoming.EngineLiters, current.EngineLiters),
		EngineCylinders:     pick(incoming.EngineCylinders, current.EngineCylinders),
		EngineConfiguration: pick(incoming.EngineConfiguration, current.EngineConfiguration),
		AverageMileage:      pick(incoming.AverageMileage, current.AverageMileage),
		ImageURL:            pick(incoming.ImageURL, current.ImageURL),
		Mileage:             pick(incoming.Mileage, current.Mileage),
		ExteriorColor:       pick(incoming.ExteriorColor, current.ExteriorColor),
		InteriorColor:       pick(incoming.InteriorColor, current.InteriorColor),
		BodyType:            pick(incoming.BodyType, current.BodyType),
		Transmission:        pick(incoming.Transmission, current.Transmission),
		FuelType:            pick(incoming.FuelType, current.FuelType),
		EngineType:          current.EngineType,
		BodyEngineType:      current.BodyEngineType,
	}
	if out.VIN == "" {
		out.VIN = NormalizeVIN(incoming.VIN)
	}

	switch {
	case incoming.EngineType != "":
		out.EngineType = incoming.EngineType
	case incoming.EngineLiters != "" || incoming.EngineCylinders != "" || incoming.EngineConfiguration != "":
		out.EngineType = pick(EngineType(out.EngineLiters, out.EngineCylinders, out.EngineConfiguration), out.EngineType)
	}

	switch {
	case incoming.BodyEngineType != "":
		out.BodyEngineType = incoming.BodyEngineType
	case incoming.EngineCylinders != "" || incoming.EngineConfiguration != "" || incoming.FuelType != "":
		out.BodyEngineType = pick(BodyEngineType(out.EngineConfiguration, out.EngineCylinders, out.FuelType), out.BodyEngineType)
	}
	return out
}

// IsEmptyValue reports whether an enum-like free text value means "unknown"
func IsEmptyValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "n/a", "n / a", "na", "null":
		return true
	}
	return false
}

func normalize(v models.VehicleRecord) models.VehicleRecord {
	if IsEmptyValue(v.Transmission) {
		v.Transmission = ""
	}
	if IsEmptyValue(v.FuelType) {
		v.FuelType = ""
	}
	return v
}

func pick(preferred, fallback string) string {
	if strings.TrimSpace(preferred) != "" {
		return preferred
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return ""
}
