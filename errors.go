package verifier

import "errors"

var (
	// ErrInvalidSMTPOptions is returned when WithSMTP is called
	// without a HeloHostname, or with a negative timeout. The returned
	// error wraps it with the offending field.
	ErrInvalidSMTPOptions = errors.New("verifier: invalid SMTPOptions")

	// ErrInvalidDNSOptions is returned when WithDNS is called with a
	// negative timeout or retry count.
	ErrInvalidDNSOptions = errors.New("verifier: invalid DNSOptions")

	// ErrInvalidRateLimit is returned when WithRateLimit is given a
	// negative interval.
	ErrInvalidRateLimit = errors.New("verifier: rate limit interval must not be negative")
)
