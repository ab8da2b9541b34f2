package steam

import (
	"log/slog"
	"strconv"
	"strings"
)

// ParsePrice normalizes a localized price string ("24,50 €", "$12.34",
// "1.234,56", "5,--€") to a float. Unparseable input yields 0 with a
// warning, never an error.
func ParsePrice(raw string) float64 {
	if raw == "" {
		return 0
	}

	cleaned := stripPriceRunes(raw)

	switch {
	case strings.HasSuffix(cleaned, ",--"):
		// "5,--" is the whole-number shorthand: exactly 5, no cents.
		cleaned = wholeNumberPart(strings.TrimSuffix(cleaned, ",--"))
	case strings.HasSuffix(cleaned, ".-"):
		cleaned = wholeNumberPart(strings.TrimSuffix(cleaned, ".-"))
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		// The last separator is the decimal point, the other one groups
		// thousands.
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Contains(cleaned, ","):
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		slog.Warn("unparseable price string", "raw", raw, "cleaned", cleaned)
		return 0
	}
	return value
}

// ParseVolume strips everything but digits and parses the rest as an
// integer. Empty or unparseable input yields 0.
func ParseVolume(raw string) int64 {
	if raw == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		slog.Warn("unparseable volume string", "raw", raw)
		return 0
	}

	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		slog.Warn("unparseable volume string", "raw", raw, "cleaned", cleaned)
		return 0
	}
	return value
}

func stripPriceRunes(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func wholeNumberPart(s string) string {
	if isDigits(s) {
		return s
	}
	s = strings.ReplaceAll(s, ".", "")
	return strings.ReplaceAll(s, ",", "")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
