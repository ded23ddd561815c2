package core

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a won amount as entered in forms or bank exports.
//
// Thousands separators, a leading ₩ and a trailing 원 are accepted.
// A leading minus is kept, so callers that only want magnitudes should
// take the absolute value themselves.
//
// Examples:
//
//	ParseAmount("50,000")  -> 50000, nil
//	ParseAmount("₩1,200")  -> 1200, nil
//	ParseAmount("-3000원") -> -3000, nil
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₩")
	s = strings.TrimSuffix(s, "원")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if neg {
		v = -v
	}
	return v, nil
}

// Abs returns the magnitude of a signed amount.
func Abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// FormatWon renders an amount with thousands separators, e.g. "-12,000원".
func FormatWon(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "원"
}
