package auth

import (
	"net"
	"net/url"
	"strings"
)

// DefaultRedirect is where a login lands when no safe target was requested.
const DefaultRedirect = "/?modal=guestbook"

// RedirectSanitizer guards the state and redirect parameters against open
// redirects. A target is accepted when it is
//
//   - a path on this site: starts with exactly one "/" (not "//" or "/\"),
//   - or an absolute http(s) URL whose hostname equals the request's host or
//     one of the allow-listed hosts.
//
// Hostnames are compared after parsing, so "evil-rejaka.me.attacker.com" is
// not mistaken for "rejaka.me".
type RedirectSanitizer struct {
	allowed map[string]struct{}
}

// NewRedirectSanitizer allows allowedHosts in addition to the request host.
// Entries may carry a port, which is ignored.
func NewRedirectSanitizer(allowedHosts []string) *RedirectSanitizer {
	s := &RedirectSanitizer{allowed: make(map[string]struct{})}
	for _, h := range allowedHosts {
		if h = normalizeHost(h); h != "" {
			s.allowed[h] = struct{}{}
		}
	}
	return s
}

// Sanitize returns target if it is safe, DefaultRedirect otherwise.
// requestHost is the Host header of the current request.
func (s *RedirectSanitizer) Sanitize(target, requestHost string) string {
	return s.SanitizeOr(target, requestHost, DefaultRedirect)
}

// SanitizeOr is Sanitize with a caller-chosen fallback.
func (s *RedirectSanitizer) SanitizeOr(target, requestHost, fallback string) string {
	if s.safe(target, requestHost) {
		return target
	}
	return fallback
}

func (s *RedirectSanitizer) safe(target, requestHost string) bool {
	if target == "" || strings.ContainsAny(target, "\r\n\t") {
		return false
	}

	if strings.HasPrefix(target, "/") {
		// "//evil.com" and "/\evil.com" are protocol-relative in browsers.
		if strings.HasPrefix(target, "//") || strings.HasPrefix(target, `/\`) {
			return false
		}
		u, err := url.Parse(target)
		return err == nil && u.Scheme == "" && u.Host == ""
	}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.User != nil {
		return false
	}

	host := normalizeHost(u.Host)
	if host == "" {
		return false
	}
	if host == normalizeHost(requestHost) {
		return true
	}
	_, ok := s.allowed[host]
	return ok
}

// normalizeHost lowercases h and strips any port and trailing dot.
func normalizeHost(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	h = strings.Trim(h, "[]")
	return strings.TrimSuffix(h, ".")
}
