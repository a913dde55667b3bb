// SPDX-License-Identifier: MIT

// Package net validates outbound targets before the daemon dials them.
// The catalog base URL is operator-supplied, so it gets the same scrutiny
// an untrusted input would: IDNA host normalization, a scheme allow-list,
// and a refusal of addresses that can never be a legitimate upstream.
package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	// ErrSchemeNotAllowed indicates the URL scheme is not http or https.
	ErrSchemeNotAllowed = errors.New("outbound scheme not allowed")
	// ErrHostBlocked indicates the URL points at an address class that is
	// never a valid catalog upstream (multicast, link-local, unspecified).
	ErrHostBlocked = errors.New("outbound host blocked")
)

// NormalizeHost validates and normalizes a host for comparison.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if strings.Contains(host, "://") {
		return "", fmt.Errorf("host must not include scheme: %s", raw)
	}
	if strings.Contains(host, "/") {
		return "", fmt.Errorf("host must not include path: %s", raw)
	}
	if strings.Contains(host, "@") {
		return "", fmt.Errorf("host must not include userinfo: %s", raw)
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}
	if strings.Contains(host, ":") && net.ParseIP(host) == nil {
		return "", fmt.Errorf("host must not include port: %s", raw)
	}
	if strings.Contains(host, "%") {
		return "", fmt.Errorf("host must not include zone: %s", raw)
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if ip := net.ParseIP(host); ip != nil {
		return strings.ToLower(ip.String()), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", raw, err)
	}
	return strings.ToLower(ascii), nil
}

// ValidateBaseURL checks an operator-configured upstream base URL and
// returns it in normalized form (lowercased IDNA host, no trailing slash).
// Loopback and private addresses stay allowed: a self-hosted catalog next
// to the daemon is the common deployment. DNS is deliberately not resolved
// here; an unreachable upstream is a health concern, not a config error.
func ValidateBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("base url empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("missing url scheme")
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing url host")
	}
	if u.Fragment != "" {
		return "", fmt.Errorf("fragments not allowed")
	}
	if u.User != nil {
		return "", fmt.Errorf("userinfo not allowed")
	}
	if u.RawQuery != "" {
		return "", fmt.Errorf("query not allowed in base url")
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrSchemeNotAllowed, u.Scheme)
	}

	host, err := NormalizeHost(u.Hostname())
	if err != nil {
		return "", err
	}
	if ip := net.ParseIP(host); ip != nil && isBlockedIP(ip) {
		return "", fmt.Errorf("%w: %s", ErrHostBlocked, ip.String())
	}

	u.Scheme = scheme
	u.Host = joinHostPort(host, u.Port())
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// isBlockedIP reports addresses that cannot host an upstream service.
func isBlockedIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	return ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast()
}

func joinHostPort(host, port string) string {
	if port == "" {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, port)
}
