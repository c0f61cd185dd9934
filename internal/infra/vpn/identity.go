package vpn

import (
	"regexp"
	"strings"

	"github.com/vietddude/rotor/internal/core/domain"
)

// Resolver extracts a canonical node hostname from free-form CLI output.
// Strategies are tried in order until one yields a result:
//
//  1. a labeled hostname field in status output,
//  2. the provider's hostname shape (alphabetic prefix, digits, suffix)
//     anywhere in the text,
//  3. any token ending in the provider's domain suffix.
//
// All three failing is not an error; the identity comes back unresolved.
type Resolver struct {
	suffix    string
	labeled   *regexp.Regexp
	shaped    *regexp.Regexp
	anySuffix *regexp.Regexp
}

// NewResolver builds a resolver for the given provider domain suffix,
// e.g. "nordvpn.com".
func NewResolver(suffix string) *Resolver {
	quoted := regexp.QuoteMeta(suffix)
	return &Resolver{
		suffix:    suffix,
		labeled:   regexp.MustCompile(`(?im)^\s*(?:current server|server|hostname)\s*:\s*(\S+)`),
		shaped:    regexp.MustCompile(`(?i)\b[a-z]+[0-9]+\.` + quoted + `\b`),
		anySuffix: regexp.MustCompile(`(?i)\b[a-z0-9][a-z0-9.-]*\.` + quoted + `\b`),
	}
}

// Resolve parses confirmation or status text into an EgressIdentity.
func (r *Resolver) Resolve(text string) domain.EgressIdentity {
	id := domain.EgressIdentity{Raw: text}

	if m := r.labeled.FindStringSubmatch(text); m != nil {
		id.Hostname = canonHostname(m[1])
		return id
	}
	if m := r.shaped.FindString(text); m != "" {
		id.Hostname = canonHostname(m)
		return id
	}
	if m := r.anySuffix.FindString(text); m != "" {
		id.Hostname = canonHostname(m)
		return id
	}
	return id
}

func canonHostname(raw string) string {
	return strings.ToLower(strings.Trim(raw, ".,;:!()"))
}
