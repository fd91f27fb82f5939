package logger

import "strings"

// RedactEmail masks an email address for logging. The first two
// characters of the local part survive when it is long enough:
// "john.doe@example.com" becomes "jo***@example.com", while
// "ab@example.com" becomes "***@example.com".
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "***@***"
	}
	local, domain := email[:at], email[at:]
	if len(local) > 2 {
		return local[:2] + "***" + domain
	}
	return "***" + domain
}
