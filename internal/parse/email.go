package parse

import (
	"strings"

	"golang.org/x/net/idna"
)

// lookupProfile is the IDNA lookup profile with DNS length checks: empty
// labels, labels over 63 octets and names over 253 octets are rejected.
var lookupProfile = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
	idna.VerifyDNSLength(true),
)

// Email is the internal representation of a split email address.
type Email struct {
	Raw          string // the input, untouched
	Local        string // the part before the first @
	Domain       string // the part after the first @, as written
	LookupDomain string // Domain in IDNA lookup form (for DNS/SMTP)
	DomainErr    error  // non-nil if Domain is not a valid DNS name
	Valid        bool   // false if Raw has no @ or an empty side
}

// NewEmail splits raw at its first @.
// The domain keeps everything after that @, so a second @ stays in Domain
// and is left for the syntax check to reject.
func NewEmail(raw string) Email {
	local, domain, ok := strings.Cut(raw, "@")
	if !ok || local == "" || domain == "" {
		return Email{Raw: raw, Valid: false}
	}

	lookup, err := lookupForm(domain)
	return Email{
		Raw:          raw,
		Local:        local,
		Domain:       domain,
		LookupDomain: lookup,
		DomainErr:    err,
		Valid:        true,
	}
}

// lookupForm maps the domain to the form used on the wire: lowercased,
// Punycode for internationalized labels. On error the lowercased domain
// is returned with it.
func lookupForm(domain string) (string, error) {
	a, err := lookupProfile.ToASCII(domain)
	if err != nil {
		return strings.ToLower(domain), err
	}
	return a, nil
}

// DisplayDomain returns the Unicode form of domain for display, e.g.
// "xn--mnchen-3ya.de" becomes "münchen.de". Domains that do not decode
// are returned as given.
func DisplayDomain(domain string) string {
	u, err := idna.Display.ToUnicode(domain)
	if err != nil {
		return domain
	}
	return u
}
