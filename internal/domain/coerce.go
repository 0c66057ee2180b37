package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Forgiving numeric coercion for interactive edits: a bad keystroke in a
// numeric field must not reject the edit, so unparseable input collapses to
// zero. Import validation uses the stricter parse helpers below instead.

// IntOrZero parses s as an integer, returning 0 on any failure.
func IntOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	return v
}

// DecimalOrZero parses s as a decimal, returning 0 on any failure.
func DecimalOrZero(s string) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}

	return v
}

// ParseInt parses s as an integer and reports whether it parsed.
func ParseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))

	return v, err == nil
}

// ParseDecimal parses s as a decimal and reports whether it parsed.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}

	return v, true
}
