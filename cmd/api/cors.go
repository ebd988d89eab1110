package main

import (
	"net/url"
	"strings"
)

// matchCORSOrigin reports whether origin is allowed by any pattern. Patterns are
// "*", an exact origin, or a scheme plus wildcard subdomain such as "https://*.example.com".
func matchCORSOrigin(origin string, patterns []string) bool {
	o, err := url.Parse(origin)
	if err != nil || o.Scheme == "" || o.Host == "" {
		return false
	}
	host := strings.ToLower(o.Host)
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "*" {
			return true
		}
		if strings.EqualFold(strings.TrimSuffix(p, "/"), origin) {
			return true
		}
		if !strings.Contains(p, "*.") {
			continue
		}
		pu, err := url.Parse(p)
		if err != nil || !strings.EqualFold(pu.Scheme, o.Scheme) || !strings.HasPrefix(pu.Host, "*.") {
			continue
		}
		suffix := strings.ToLower(pu.Host[1:])
		if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}
