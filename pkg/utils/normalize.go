package utils

import (
	"strings"
	"unicode"
)

// NormalizeName canonicalizes a location / checklist name for comparison:
// lowercase, every run of non-alphanumeric runes collapsed to one space, trimmed.
// Two names match iff their normalized forms are identical.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}

	return b.String()
}

// PhoneCandidates returns the representations of a phone number to try against
// the inspector directory, in order: the number as received, then the variant
// with the leading "+" stripped (or prepended when absent).
func PhoneCandidates(phone string) []string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}

	var alt string
	if strings.HasPrefix(phone, "+") {
		alt = strings.TrimPrefix(phone, "+")
	} else {
		alt = "+" + phone
	}

	if alt == "" || alt == "+" {
		return []string{phone}
	}
	return []string{phone, alt}
}
