package validation

import (
	"regexp"
	"strconv"
	"strings"
)

// Input gates for the three field kinds. A false return means the edit is
// dropped and prior state stays as it was; nothing here ever raises an
// error at the caller.

var (
	quantityPattern = regexp.MustCompile(`^\d*$`)
	pricePattern    = regexp.MustCompile(`^\d*\.?\d*$`)
)

// Quantity accepts sequences of ASCII digits, including the empty string
// ("not yet typed", value zero). Anything containing a non-digit is
// rejected.
func Quantity(raw string) (int, bool) {
	if !quantityPattern.MatchString(raw) {
		return 0, false
	}
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Price accepts digit sequences with at most one decimal point. Empty input
// is accepted as zero; input that matches the pattern but has no digits at
// all ("." alone) is rejected.
func Price(raw string) (float64, bool) {
	if !pricePattern.MatchString(raw) {
		return 0, false
	}
	if raw == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Name accepts any non-empty text.
func Name(raw string) bool {
	return strings.TrimSpace(raw) != ""
}

// Violations collects per-field problems for form-style submissions, where
// the client needs to know which required field was missing.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}
