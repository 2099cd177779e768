package verifier

import (
	"context"
	"net"
	"time"
)

// Defaults identifying the probing service and its pacing.
const (
	DefaultHeloHostname = "verify.unlimitedverifier.com"
	DefaultRateLimit    = 5 * time.Second
	DefaultSMTPTimeout  = 10 * time.Second
	DefaultDNSTimeout   = 5 * time.Second
	DefaultSMTPPort     = "25"
)

// DNSOptions configures MX resolution.
type DNSOptions struct {
	// Timeout is the maximum time for the MX lookup. Default: 5s
	Timeout time.Duration
	// Nameservers, when set, are queried directly instead of the system
	// resolver, e.g. "1.1.1.1:53". A missing port means 53.
	Nameservers []string
	// Retries is the number of extra passes over Nameservers. Default: 0
	Retries int
}

func defaultDNSOptions() DNSOptions {
	return DNSOptions{
		Timeout: DefaultDNSTimeout,
	}
}

// SMTPOptions configures the SMTP probe.
type SMTPOptions struct {
	// HeloHostname is the identity sent with HELO. Required.
	HeloHostname string
	// MailFrom is the address sent in MAIL FROM. Default: verify@HeloHostname
	MailFrom string
	// Timeout bounds the TCP connect and every reply. Default: 10s
	Timeout time.Duration
	// Port is the SMTP port. Default: 25
	Port string
	// Dial is injectable for testing. Defaults to net.Dialer.DialContext.
	Dial func(ctx context.Context, network, address string) (net.Conn, error)
}

func defaultSMTPOptions() SMTPOptions {
	return SMTPOptions{
		HeloHostname: DefaultHeloHostname,
		MailFrom:     "verify@" + DefaultHeloHostname,
		Timeout:      DefaultSMTPTimeout,
		Port:         DefaultSMTPPort,
	}
}
