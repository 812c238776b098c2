package msisdn

import "strings"

// Canonical form: 254 + 9 subscriber digits, no symbols.
const (
	countryPrefix   = "254"
	canonicalLength = 12
)

// Normalize strips non-digits and rewrites the three accepted Kenyan
// shapes (2547XXXXXXXX, 07XXXXXXXX, 7XXXXXXXX) to the canonical form.
// Anything else comes back digit-stripped only; callers must check
// IsCanonical before trusting the result.
func Normalize(raw string) string {
	s := digits(raw)
	switch {
	case len(s) == canonicalLength && strings.HasPrefix(s, countryPrefix):
		return s
	case len(s) == 10 && strings.HasPrefix(s, "0"):
		return countryPrefix + s[1:]
	case len(s) == 9:
		return countryPrefix + s
	}
	return s
}

func IsCanonical(s string) bool {
	if len(s) != canonicalLength || !strings.HasPrefix(s, countryPrefix) {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
