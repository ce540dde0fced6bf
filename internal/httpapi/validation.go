package httpapi

import "strings"

func normalizeEmail(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domainPart := s[at+1:]
	if !strings.Contains(domainPart, ".") || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	return len(s) <= 254
}

const minPasswordLength = 8
