package domain

import (
	"errors"
	"strings"
	"time"
)

// GrantDuration is the calendar extension applied per successful payment.
// AddDate keeps the anniversary date rather than adding a fixed number of
// hours.
const grantYears = 1

var (
	// ErrInvalidIdentity signals the identity is not a usable email address.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrMissingReference signals a grant without a transaction reference.
	ErrMissingReference = errors.New("transaction reference is required")
)

// AccessGrant is a time-boxed access window for one normalized identity. At
// most one live grant exists per identity.
type AccessGrant struct {
	Identity          string
	ValidUntil        time.Time
	SourceReference   string
	CustomerReference string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive reports whether the grant still covers the given instant.
func (g AccessGrant) IsActive(now time.Time) bool {
	return g.ValidUntil.After(now)
}

// NextExpiry computes the expiry a new payment produces. A fresh or lapsed
// grant starts a year from now; a live grant stacks a further calendar year
// on top of its existing expiry, so renewals never shorten the window.
func NextExpiry(existing *AccessGrant, now time.Time) time.Time {
	if existing != nil && existing.ValidUntil.After(now) {
		return existing.ValidUntil.AddDate(grantYears, 0, 0)
	}
	return now.AddDate(grantYears, 0, 0)
}

// NormalizeIdentity lower-cases and trims a raw identity and validates it as
// an email address: a non-empty local part of at most 64 characters, a domain
// of at most 255 characters containing a dot, no label starting or ending
// with a dot or hyphen, and at most 320 characters overall.
func NormalizeIdentity(raw string) (string, error) {
	identity := strings.ToLower(strings.TrimSpace(raw))
	if identity == "" || len(identity) > 320 {
		return "", ErrInvalidIdentity
	}
	at := strings.LastIndex(identity, "@")
	if at <= 0 || at == len(identity)-1 {
		return "", ErrInvalidIdentity
	}
	local, domain := identity[:at], identity[at+1:]
	if len(local) > 64 || len(domain) > 255 {
		return "", ErrInvalidIdentity
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return "", ErrInvalidIdentity
	}
	if !strings.Contains(domain, ".") {
		return "", ErrInvalidIdentity
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return "", ErrInvalidIdentity
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "", ErrInvalidIdentity
		}
	}
	if strings.ContainsAny(identity, " \t\r\n") {
		return "", ErrInvalidIdentity
	}
	return identity, nil
}
