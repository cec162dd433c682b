package vehicle

import (
	"fmt"
	"strconv"
	"strings"
)

var configurationCodes = map[string]string{
	"in-line":              "I",
	"inline":               "I",
	"straight":             "I",
	"i":                    "I",
	"v-shaped":             "V",
	"v":                    "V",
	"flat":                 "H",
	"boxer":                "H",
	"horizontally opposed": "H",
	"h":                    "H",
	"w":                    "W",
	"rotary":               "R",
}

// EngineType renders the engine display string, e.g. "2.0L I4". Missing parts are left out.
func EngineType(liters, cylinders, configuration string) string {
	var parts []string
	if l := formatLiters(liters); l != "" {
		parts = append(parts, l)
	}
	if layout := layout(configuration, cylinders); layout != "" {
		parts = append(parts, layout)
	}
	return strings.Join(parts, " ")
}

// BodyEngineType renders the engine layout with the fuel type, e.g. "V6 Gasoline"
func BodyEngineType(configuration, cylinders, fuel string) string {
	var parts []string
	if layout := layout(configuration, cylinders); layout != "" {
		parts = append(parts, layout)
	}
	if !IsEmptyValue(fuel) {
		parts = append(parts, strings.TrimSpace(fuel))
	}
	return strings.Join(parts, " ")
}

func formatLiters(liters string) string {
	liters = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(liters), "L"))
	if liters == "" {
		return ""
	}
	f, err := strconv.ParseFloat(liters, 64)
	if err != nil || f <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1fL", f)
}

func layout(configuration, cylinders string) string {
	cyl := formatCylinders(cylinders)
	code, ok := configurationCodes[strings.ToLower(strings.TrimSpace(configuration))]
	if !ok {
		code = strings.TrimSpace(configuration)
	}
	switch {
	case code != "" && cyl != "" && ok:
		return code + cyl
	case code != "" && cyl != "":
		return code + " " + cyl
	case cyl != "":
		return cyl + " Cyl"
	}
	return code
}

func formatCylinders(cylinders string) string {
	cylinders = strings.TrimSpace(cylinders)
	if cylinders == "" {
		return ""
	}
	f, err := strconv.ParseFloat(cylinders, 64)
	if err != nil || f <= 0 {
		return ""
	}
	return strconv.Itoa(int(f))
}
