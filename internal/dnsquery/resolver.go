// Package dnsquery resolves MX records against explicitly configured
// nameservers using github.com/miekg/dns, bypassing the system resolver.
package dnsquery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

var (
	// ErrNotFound is returned for NXDOMAIN and for answers without MX records.
	ErrNotFound = errors.New("dnsquery: no such record")
	// ErrServFail is returned when every nameserver failed or refused.
	ErrServFail = errors.New("dnsquery: server failure")
)

// Config contains configuration for the resolver.
type Config struct {
	// Nameservers is a list of DNS servers to query (e.g. "8.8.8.8:53").
	// A server without a port gets :53. If empty, servers from
	// /etc/resolv.conf are used, falling back to public DNS.
	Nameservers []string

	// Timeout bounds each individual exchange. Default is 5 seconds.
	Timeout time.Duration

	// Retries is the number of extra passes over the nameserver list.
	Retries int
}

// Resolver queries the configured nameservers in order.
type Resolver struct {
	config    Config
	udpClient *mdns.Client
	tcpClient *mdns.Client
}

// New creates a resolver.
func New(config Config) *Resolver {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Retries < 0 {
		config.Retries = 0
	}
	servers := make([]string, 0, len(config.Nameservers))
	for _, s := range config.Nameservers {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, withPort(s))
		}
	}
	if len(servers) == 0 {
		servers = systemNameservers()
	}
	config.Nameservers = servers

	return &Resolver{
		config:    config,
		udpClient: &mdns.Client{Net: "udp", Timeout: config.Timeout},
		tcpClient: &mdns.Client{Net: "tcp", Timeout: config.Timeout},
	}
}

// Nameservers returns the servers queried, in order.
func (r *Resolver) Nameservers() []string {
	return append([]string(nil), r.config.Nameservers...)
}

// systemNameservers reads /etc/resolv.conf.
func systemNameservers() []string {
	config, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(config.Servers) == 0 {
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}

	servers := make([]string, 0, len(config.Servers))
	for _, s := range config.Servers {
		servers = append(servers, net.JoinHostPort(s, config.Port))
	}
	return servers
}

// withPort appends :53 when s carries no port. Bare IPv6 addresses are
// bracketed.
func withPort(s string) string {
	if _, _, err := net.SplitHostPort(s); err == nil {
		return s
	}
	return net.JoinHostPort(strings.Trim(s, "[]"), "53")
}

// LookupMX retrieves MX records for the given domain.
func (r *Resolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	resp, err := r.query(ctx, name, mdns.TypeMX)
	if err != nil {
		return nil, err
	}

	var records []*net.MX
	for _, rr := range resp.Answer {
		if mx, ok := rr.(*mdns.MX); ok {
			records = append(records, &net.MX{
				Host: mx.Mx,
				Pref: mx.Preference,
			})
		}
	}

	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// query sends the question to each nameserver until one answers
// authoritatively for the name (success or NXDOMAIN).
func (r *Resolver) query(ctx context.Context, name string, qtype uint16) (*mdns.Msg, error) {
	m := new(mdns.Msg)
	m.SetQuestion(mdns.Fqdn(name), qtype)
	m.RecursionDesired = true

	var lastErr error
	for i := 0; i <= r.config.Retries; i++ {
		for _, server := range r.config.Nameservers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			resp, err := r.exchange(ctx, m, server)
			if err != nil {
				lastErr = fmt.Errorf("dnsquery: query %s: %w", server, err)
				continue
			}

			switch resp.Rcode {
			case mdns.RcodeSuccess:
				return resp, nil
			case mdns.RcodeNameError: // NXDOMAIN
				return nil, ErrNotFound
			default:
				lastErr = fmt.Errorf("%w: %s answered %s", ErrServFail, server, mdns.RcodeToString[resp.Rcode])
			}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrServFail
}

// exchange queries over UDP and repeats over TCP when the answer was
// truncated.
func (r *Resolver) exchange(ctx context.Context, m *mdns.Msg, server string) (*mdns.Msg, error) {
	resp, _, err := r.udpClient.ExchangeContext(ctx, m, server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		resp, _, err = r.tcpClient.ExchangeContext(ctx, m, server)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}
