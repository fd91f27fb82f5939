// Package emailaddr validates recipient address syntax. It deliberately
// performs no DNS or MX lookups: suppressing an unreachable address may
// be exactly what the operator wants, and network checks would make a
// multi-million-line file unusably slow.
package emailaddr

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxLocalLength  = 64
	maxDomainLength = 255
	maxLabelLength  = 63
)

// atext per RFC 5322, excluding dot which has its own placement rules.
const localSpecials = "!#$%&'*+-/=?^_`{|}~"

// Validate checks that addr is a syntactically well-formed email
// address. It returns nil for a valid address, or an error whose
// message is a human-readable reason suitable for a per-line report.
func Validate(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}

	switch n := strings.Count(addr, "@"); {
	case n == 0:
		return fmt.Errorf("missing @-sign")
	case n > 1:
		return fmt.Errorf("more than one @-sign")
	}

	at := strings.IndexByte(addr, '@')
	local, domain := addr[:at], addr[at+1:]

	if err := validateLocal(local); err != nil {
		return err
	}
	return validateDomain(domain)
}

func validateLocal(local string) error {
	if local == "" {
		return fmt.Errorf("empty part before the @-sign")
	}
	if len(local) > maxLocalLength {
		return fmt.Errorf("part before the @-sign longer than %d characters", maxLocalLength)
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return fmt.Errorf("part before the @-sign must not start or end with a dot")
	}
	if strings.Contains(local, "..") {
		return fmt.Errorf("consecutive dots before the @-sign")
	}
	for _, r := range local {
		switch {
		case r == '.':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(localSpecials, r):
		case r > unicode.MaxASCII && unicode.IsLetter(r) || r > unicode.MaxASCII && unicode.IsDigit(r):
			// Internationalized local parts are accepted as-is.
		default:
			return fmt.Errorf("disallowed character %q before the @-sign", r)
		}
	}
	return nil
}

func validateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("empty domain after the @-sign")
	}
	if len(domain) > maxDomainLength {
		return fmt.Errorf("domain longer than %d characters", maxDomainLength)
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("domain must not start or end with a dot")
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return fmt.Errorf("domain %q has no top-level domain", domain)
	}
	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("consecutive dots in domain")
		}
		if len(label) > maxLabelLength {
			return fmt.Errorf("domain label %q longer than %d characters", label, maxLabelLength)
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return fmt.Errorf("domain label %q must not start or end with a hyphen", label)
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			case r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
				// IDN labels pass through without punycode conversion.
			default:
				return fmt.Errorf("disallowed character %q in domain", r)
			}
		}
	}

	// A TLD consisting only of digits is never delegated.
	tld := labels[len(labels)-1]
	if allDigits(tld) {
		return fmt.Errorf("numeric top-level domain %q", tld)
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
