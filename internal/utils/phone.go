package utils

import "strings"

// PhoneKey concatenates country code and subscriber number and keeps digits
// only. The result is the canonical lookup key for a phone number (no `+`).
func PhoneKey(countryCode, number string) string {
	return digits(countryCode) + digits(number)
}

// DisplayPhone renders a raw phone key as an E.164-style number.
func DisplayPhone(rawKey string) string {
	if rawKey == "" {
		return ""
	}
	return "+" + rawKey
}

// NormalizePhone brings a stored phone value to display form, tolerating a
// missing leading `+`.
func NormalizePhone(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	return "+" + strings.TrimPrefix(v, "+")
}

// StripPlus removes a leading `+` from a phone value.
func StripPlus(value string) string {
	return strings.TrimPrefix(strings.TrimSpace(value), "+")
}

func digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
