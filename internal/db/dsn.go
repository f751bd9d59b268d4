package db

import (
	"regexp"
	"strings"
)

var kvPairRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// NormalizeDSN accepts a URL style DSN (postgres://...), a lib/pq key=value
// list, or a sqlite path. It trims quotes and whitespace; key=value form is
// cleaned up and gets sslmode=disable when missing.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	if !kvPairRegex.MatchString(s) {
		// sqlite path or something the driver will reject on its own
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}
