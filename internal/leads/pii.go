package leads

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

// Free-text answers sometimes repeat contact details; these find them.
var (
	freeTextEmail = regexp.MustCompile(`[^\s@<>(),;:"]+@[^\s@<>(),;:"]+\.[A-Za-z]{2,}`)
	freeTextPhone = regexp.MustCompile(`\+?\(?\d[\d\s().-]{5,}\d`)
)

// MaskEmail keeps the first character of the local part and the domain:
// "jane@acme.com" becomes "j***@acme.com".
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// MaskPhone keeps only the last four digits.
func MaskPhone(phone string) string {
	var digits []byte
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + string(digits[len(digits)-4:])
}

// HashEmail returns the hex-encoded SHA-256 of the normalized address.
func HashEmail(email string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("%x", h)
}

// ScrubPII redacts email addresses and phone-like runs of digits and
// separators so free-text answers can be logged.
func ScrubPII(text string) string {
	text = freeTextEmail.ReplaceAllString(strings.TrimSpace(text), "[EMAIL]")
	return freeTextPhone.ReplaceAllString(text, "[PHONE]")
}
