package validation

import (
	"strings"
	"unicode"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MaxLen(field, value string, maxLen int, v Violations) {
	if len(value) > maxLen {
		v[field] = "too_long"
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_choice"
}

// Email is a shape check, not an RFC parser; delivery failures are the mail layer's problem.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 || !strings.Contains(value[at+1:], ".") {
		v[field] = "invalid_email"
	}
}

// NoAllCaps rejects titles written entirely in upper case.
func NoAllCaps(field, value string, v Violations) {
	hasLetter := false
	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return
			}
		}
	}
	if hasLetter {
		v[field] = "no_all_caps"
	}
}

// ISBN13 validates a 13-digit ISBN with its weighted checksum.
func ISBN13(field, value string, v Violations) {
	if len(value) != 13 {
		v[field] = "invalid_isbn"
		return
	}
	sum := 0
	for i, r := range value {
		if r < '0' || r > '9' {
			v[field] = "invalid_isbn"
			return
		}
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	if sum%10 != 0 {
		v[field] = "invalid_isbn"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}
