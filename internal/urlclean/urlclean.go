// Package urlclean strips tracking parameters from bookmark URLs.
//
// Cleaning is conservative: the input is user data, so anything that cannot
// be parsed is reported unchanged rather than erroring. Cleaning a cleaned
// URL is always a no-op.
package urlclean

import (
	"net/url"
	"strings"
)

// Result reports the cleaned URL and whether anything was removed.
type Result struct {
	Cleaned string
	Changed bool
}

// denyParams are dropped on every host.
var denyParams = map[string]bool{
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true, "utm_id": true,
	"gclid": true, "gclsrc": true, "dclid": true, "fbclid": true,
	"msclkid": true, "twclid": true, "yclid": true, "igshid": true,
	"mc_cid": true, "mc_eid": true, "ref_src": true, "ref_url": true,
	"spm": true,
}

// denyPrefixes drop whole families of vendor parameters.
var denyPrefixes = []string{"utm_", "pk_", "mtm_", "hsa_", "vero_", "oly_", "_hs"}

// allowOnly lists hosts where only the named parameters carry meaning;
// everything else on these hosts is tracking and is dropped.
var allowOnly = map[string][]string{
	"youtube.com":     {"v", "t", "list"},
	"youtu.be":        {"t"},
	"amazon.com":      {"k", "node"},
	"google.com":      {"q", "tbm"},
	"open.spotify.com": nil,
}

// Clean removes tracking parameters from raw. Unparseable URLs and URLs
// without a host come back unchanged.
func Clean(raw string) Result {
	unchanged := Result{Cleaned: raw}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || parsed.RawQuery == "" {
		return unchanged
	}

	host := strings.ToLower(strings.TrimPrefix(parsed.Host, "www."))
	allowed, strict := allowOnlyFor(host)

	// Filter pairs by hand to keep the surviving parameters in their
	// original order; url.Values would reorder them and break idempotency.
	pairs := strings.Split(parsed.RawQuery, "&")
	kept := pairs[:0]
	dropped := false
	for _, pair := range pairs {
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if dropParam(strings.ToLower(key), allowed, strict) {
			dropped = true
			continue
		}
		kept = append(kept, pair)
	}

	if !dropped {
		return unchanged
	}

	parsed.RawQuery = strings.Join(kept, "&")
	return Result{Cleaned: parsed.String(), Changed: true}
}

func allowOnlyFor(host string) (map[string]bool, bool) {
	for domain, params := range allowOnly {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			allowed := make(map[string]bool, len(params))
			for _, p := range params {
				allowed[p] = true
			}
			return allowed, true
		}
	}
	return nil, false
}

func dropParam(key string, allowed map[string]bool, strict bool) bool {
	if strict {
		return !allowed[key]
	}
	if denyParams[key] {
		return true
	}
	for _, prefix := range denyPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
