package registration

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	MinAge = 3
	MaxAge = 100
)

var (
	// Latin letters including Latin-1 accented ones, plus apostrophe variants
	// used in Uzbek Latin (o‘, g‘) and the hyphen.
	nameToken = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ'` + "`" + `‘’ʻʼ-]+$`)
	phoneRe   = regexp.MustCompile(`^\+998[0-9]{9}$`)
)

// IsValidFullName reports whether s is 2 to 5 whitespace-separated name tokens.
func IsValidFullName(s string) bool {
	fields := strings.Fields(s)
	if len(fields) < 2 || len(fields) > 5 {
		return false
	}
	for _, f := range fields {
		if !nameToken.MatchString(f) {
			return false
		}
	}
	return true
}

// NormalizeFullName trims s and collapses inner whitespace.
func NormalizeFullName(s string) (string, error) {
	if !IsValidFullName(s) {
		return "", ErrInvalidName
	}
	return strings.Join(strings.Fields(s), " "), nil
}

// ParseAge accepts a plain decimal literal in [MinAge, MaxAge]. Leading
// zeros are allowed.
func ParseAge(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAge
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidAge
		}
	}
	if s = strings.TrimLeft(s, "0"); s == "" || len(s) > 3 {
		return 0, ErrInvalidAge
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < MinAge || n > MaxAge {
		return 0, ErrInvalidAge
	}
	return n, nil
}

// IsValidAge reports whether s parses as an age in range.
func IsValidAge(s string) bool {
	_, err := ParseAge(s)
	return err == nil
}

// NormalizePhone strips whitespace, prefixes "+" to a bare 12-digit "998..." number
// and accepts only +998 followed by nine digits.
func NormalizePhone(s string) (string, error) {
	t := strings.Join(strings.Fields(s), "")
	if strings.HasPrefix(t, "998") && len(t) == 12 {
		t = "+" + t
	}
	if !phoneRe.MatchString(t) {
		return "", ErrInvalidPhone
	}
	return t, nil
}

// normalizeContactPhone cleans a phone shared via the Telegram contact button.
// Telegram has already verified it, so only the leading "+" is enforced.
func normalizeContactPhone(s string) (string, error) {
	t := strings.Join(strings.Fields(s), "")
	if t == "" {
		return "", ErrInvalidPhone
	}
	if !strings.HasPrefix(t, "+") {
		t = "+" + t
	}
	for _, r := range t[1:] {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	if len(t) < 8 {
		return "", ErrInvalidPhone
	}
	return t, nil
}
