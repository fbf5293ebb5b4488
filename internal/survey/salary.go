// Package survey loads and cleans salary survey exports.
package survey

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseSalary coerces a free-text monthly salary to a number.
// Spaces are dropped and a euro sign or "eur" suffix is stripped. When both
// "," and "." occur, the last one is the decimal separator and the other
// groups thousands. A lone comma groups thousands when it is followed by
// exactly three digits, otherwise it is a decimal comma. ok is false for
// anything that does not parse.
func ParseSalary(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, "eur")
	s = strings.Trim(s, "€ ")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" || strings.Trim(s, "0123456789.,-+e") != "" {
		return 0, false
	}

	if strings.Contains(s, ",") {
		switch {
		case strings.LastIndex(s, ".") > strings.LastIndex(s, ","):
			s = strings.ReplaceAll(s, ",", "")
		case strings.Contains(s, "."):
			if strings.Count(s, ",") != 1 {
				return 0, false
			}
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		case thousandsGrouped(s):
			s = strings.ReplaceAll(s, ",", "")
		case strings.Count(s, ",") == 1:
			s = strings.Replace(s, ",", ".", 1)
		default:
			return 0, false
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// thousandsGrouped reports whether every comma separates groups of three digits.
func thousandsGrouped(s string) bool {
	parts := strings.Split(strings.TrimLeft(s, "+-"), ",")
	if len(parts) < 2 {
		return false
	}
	if n := len(parts[0]); n == 0 || n > 3 || !allDigits(parts[0]) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 || !allDigits(p) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
