package check

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"
)

// Resolver is the MX lookup used by MXResolver.
// *net.Resolver and *dnsquery.Resolver both satisfy it.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// MXConfig is the MX resolver configuration.
type MXConfig struct {
	Timeout time.Duration
}

// MXResolver turns a domain into its mail exchangers, best preference first.
type MXResolver struct {
	cfg    MXConfig
	lookup func(ctx context.Context, domain string) ([]*net.MX, error) // injectable for testability
}

// NewMXResolver creates a resolver backed by the system DNS resolver.
func NewMXResolver(cfg MXConfig) *MXResolver {
	return NewMXResolverWith(cfg, &net.Resolver{})
}

// NewMXResolverWith creates a resolver backed by r.
func NewMXResolverWith(cfg MXConfig, r Resolver) *MXResolver {
	return NewMXResolverWithLookup(cfg, r.LookupMX)
}

// NewMXResolverWithLookup is a test-oriented constructor that overrides the MX lookup function.
func NewMXResolverWithLookup(cfg MXConfig, fn func(ctx context.Context, domain string) ([]*net.MX, error)) *MXResolver {
	return &MXResolver{cfg: cfg, lookup: fn}
}

// Resolve returns the exchange hostnames for domain, without trailing
// dots, ordered by ascending preference and then by hostname.
// Any lookup failure yields an empty slice: a domain without mail
// exchangers is an ordinary negative answer.
func (r *MXResolver) Resolve(ctx context.Context, domain string) []string {
	hosts, _ := r.ResolveErr(ctx, domain)
	return hosts
}

// ResolveErr is Resolve that also hands back the lookup error, for logging.
// The host slice is never nil.
func (r *MXResolver) ResolveErr(ctx context.Context, domain string) ([]string, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	records, err := r.lookup(ctx, domain)
	if err != nil {
		// net.Resolver may return partial records alongside an error; they are
		// not trusted.
		return []string{}, err
	}

	type mx struct {
		host string
		pref uint16
	}
	sorted := make([]mx, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		host := strings.TrimSuffix(rec.Host, ".")
		if host == "" {
			// null MX (RFC 7505): the domain accepts no mail
			continue
		}
		sorted = append(sorted, mx{host: host, pref: rec.Pref})
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].pref != sorted[j].pref {
			return sorted[i].pref < sorted[j].pref
		}
		return sorted[i].host < sorted[j].host
	})

	hosts := make([]string, len(sorted))
	for i, m := range sorted {
		hosts[i] = m.host
	}
	return hosts, nil
}
