// Package dapp derives per-site scoping keys from page URLs and decides
// whether a page gets the injected provider.
package dapp

import (
	"net/url"
	"strings"
)

// schemes that require a non-empty host to be a valid URL.
var specialSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
}

// defaultPorts are dropped from the host, as browsers do.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

func parseURL(raw string) (*url.URL, bool) {
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	if specialSchemes[strings.ToLower(u.Scheme)] && u.Host == "" {
		return nil, false
	}
	return u, true
}

// IsValidURL reports whether raw parses as an absolute URL.
func IsValidURL(raw string) bool {
	_, ok := parseURL(raw)
	return ok
}

// GetDappHost returns the host (with port, unless it is the scheme default)
// of raw without a leading "www.". Unparsable input yields "".
func GetDappHost(raw string) string {
	u, ok := parseURL(raw)
	if !ok {
		return ""
	}
	host := strings.ToLower(u.Host)
	if port := u.Port(); port != "" && port == defaultPorts[strings.ToLower(u.Scheme)] {
		host = strings.TrimSuffix(host, ":"+port)
	}
	return strings.TrimPrefix(host, "www.")
}

// SameHost reports whether two URLs share a scoping key. Two unparsable URLs
// never match.
func SameHost(a, b string) bool {
	host := GetDappHost(a)
	return host != "" && host == GetDappHost(b)
}
