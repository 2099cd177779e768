// Package verifier probes whether an email address is likely deliverable
// without sending a message: syntax check, MX resolution and a partial SMTP
// dialogue (HELO, MAIL FROM, RCPT TO) with the domain's mail exchangers.
//
// Basic usage:
//
//	result, err := verifier.New().Verify(ctx, "user@example.com")
//
// Custom identity and pacing:
//
//	v := verifier.New().
//	    WithDNS(verifier.DNSOptions{Nameservers: []string{"1.1.1.1"}}).
//	    WithSMTP(verifier.SMTPOptions{HeloHostname: "probe.example.org"}).
//	    WithRateLimit(10 * time.Second)
//	result, err := v.Verify(ctx, "user@example.com")
//
// A Verifier paces its probes: two calls that reach the SMTP stage start
// their probes at least the rate-limit interval apart, even when called
// from different goroutines.
package verifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/unlimitedverifier/free-email-verifier/check"
	"github.com/unlimitedverifier/free-email-verifier/internal/dnsquery"
	"github.com/unlimitedverifier/free-email-verifier/internal/parse"
	"github.com/unlimitedverifier/free-email-verifier/internal/ratelimit"
)

// Verifier is the fluent builder and the verification pipeline.
// Instantiate with the New() function. A Verifier is safe for concurrent
// use once configured.
type Verifier struct {
	mx      *check.MXResolver
	prober  *check.SMTPProber
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	err     error // configuration error, returned on Verify()
}

// New creates a Verifier using the system resolver, the default HELO
// identity and a 5 second rate limit.
func New() *Verifier {
	v := &Verifier{
		logger:  slog.New(slog.DiscardHandler),
		limiter: ratelimit.New(DefaultRateLimit),
	}
	v.WithDNS()
	v.WithSMTP(defaultSMTPOptions())
	return v
}

// WithDNS replaces the MX resolution settings.
// With Nameservers set, those servers are queried directly.
func (v *Verifier) WithDNS(opts ...DNSOptions) *Verifier {
	return v.withDNS(nil, opts...)
}

// WithResolver makes MX resolution go through r, keeping the timeout
// from opts.
func (v *Verifier) WithResolver(r check.Resolver, opts ...DNSOptions) *Verifier {
	return v.withDNS(r, opts...)
}

func (v *Verifier) withDNS(r check.Resolver, opts ...DNSOptions) *Verifier {
	o := defaultDNSOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Timeout < 0 || o.Retries < 0 {
		v.err = ErrInvalidDNSOptions
		return v
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultDNSTimeout
	}

	cfg := check.MXConfig{Timeout: o.Timeout}
	switch {
	case r != nil:
		v.mx = check.NewMXResolverWith(cfg, r)
	case len(o.Nameservers) > 0:
		v.mx = check.NewMXResolverWith(cfg, dnsquery.New(dnsquery.Config{
			Nameservers: o.Nameservers,
			Timeout:     o.Timeout,
			Retries:     o.Retries,
		}))
	default:
		v.mx = check.NewMXResolver(cfg)
	}
	return v
}

// WithSMTP replaces the SMTP probe settings.
// SMTPOptions.HeloHostname is required.
func (v *Verifier) WithSMTP(opts SMTPOptions) *Verifier {
	if opts.HeloHostname == "" {
		v.err = fmt.Errorf("%w: HeloHostname is required", ErrInvalidSMTPOptions)
		return v
	}
	if opts.Timeout < 0 {
		v.err = fmt.Errorf("%w: negative Timeout %s", ErrInvalidSMTPOptions, opts.Timeout)
		return v
	}
	// Apply defaults for unset values
	def := defaultSMTPOptions()
	if opts.MailFrom == "" {
		opts.MailFrom = "verify@" + opts.HeloHostname
	}
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Port == "" {
		opts.Port = def.Port
	}

	v.prober = check.NewSMTPProber(check.SMTPConfig{
		HeloHostname: opts.HeloHostname,
		MailFrom:     opts.MailFrom,
		Port:         opts.Port,
		Timeout:      opts.Timeout,
		Dial:         opts.Dial,
	})
	return v
}

// WithRateLimit sets the minimum interval between the SMTP stages of two
// verifications. Zero disables pacing.
func (v *Verifier) WithRateLimit(interval time.Duration) *Verifier {
	if interval < 0 {
		v.err = ErrInvalidRateLimit
		return v
	}
	v.limiter = ratelimit.New(interval)
	return v
}

// WithLogger sets the logger for rate-limit waits and probe attempts.
// A nil logger discards.
func (v *Verifier) WithLogger(l *slog.Logger) *Verifier {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	v.logger = l
	return v
}

// RateLimit returns the configured minimum interval between probes.
func (v *Verifier) RateLimit() time.Duration {
	return v.limiter.Interval()
}

// Verify runs the pipeline for one address.
// The pipeline short-circuits: an invalid address is not resolved and a
// domain without MX records is not probed. Mail exchangers are probed in
// preference order until one accepts the recipient, one reachable server
// refuses it, or the list is exhausted.
// The returned error is non-nil only for a misconfigured Verifier; a
// Result is returned in every case.
func (v *Verifier) Verify(ctx context.Context, email string) (Result, error) {
	result := Result{Email: email, MXRecords: []string{}}
	if v.err != nil {
		return result, v.err
	}

	if !check.ValidSyntax(email) {
		return result, nil
	}
	result.ValidSyntax = true

	parsed := parse.NewEmail(email)
	result.Domain = parsed.Domain
	if parsed.DomainErr != nil {
		v.logger.DebugContext(ctx, "domain is not a valid DNS name", "domain", parsed.Domain, "error", parsed.DomainErr)
		return result, nil
	}

	hosts, err := v.mx.ResolveErr(ctx, parsed.LookupDomain)
	if err != nil {
		v.logger.DebugContext(ctx, "MX lookup failed", "domain", parsed.LookupDomain, "error", err)
	}
	result.MXRecords = hosts
	if len(hosts) == 0 {
		return result, nil
	}

	if wait := v.limiter.Delay(); wait > 0 {
		v.logger.InfoContext(ctx, "rate limit: waiting", "wait", wait.Round(100*time.Millisecond))
	}
	if _, err := v.limiter.Acquire(ctx); err != nil {
		v.logger.WarnContext(ctx, "verification cancelled before probing", "email", email, "error", err)
		return result, nil
	}

	for _, host := range hosts {
		probe := v.prober.Probe(ctx, email, host)
		result.SMTPCheck = &probe

		outcome := probe.Outcome()
		v.logger.DebugContext(ctx, "SMTP probe finished",
			"mx", host, "outcome", outcome.String(), "error", probe.Error)

		if outcome == OutcomeDeliverable {
			result.Deliverable = true
		}
		if stopAfter(outcome) || ctx.Err() != nil {
			break
		}
	}

	return result, nil
}
