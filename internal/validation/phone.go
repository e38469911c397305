package validation

import "strings"

// NormalizePhone canonicalizes a phone number to digits only for
// uniqueness checks:
//   - strips every non-digit character
//   - a leading 0 (local mobile form, e.g. 017...) gets the country
//     code 88 prefixed
//   - a bare 10-digit number with no leading 0 is assumed local and
//     gets 88 prefixed as well
//
// Empty input means "no phone provided" and stays empty. The function
// is pure and idempotent.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, "0") {
		digits = "88" + digits
	}
	if len(digits) == 10 {
		digits = "88" + digits
	}

	return digits
}
