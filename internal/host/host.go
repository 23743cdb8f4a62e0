// Package host resolves which tool a request targets from its Host header.
package host

import (
	"net"
	"regexp"
	"strings"
)

const localSuffix = ".localhost"

// labelPattern matches a lower-case DNS label.
var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// ExtractToolID returns the tool identifier encoded in the leftmost label of
// hostHeader. rootDomain is the configured registrable domain (e.g.
// "foxholm.com"); when empty a generic "more than two labels" rule applies.
//
// The second return value is false for the apex domain, "www", bare
// localhost, IP literals and malformed input.
func ExtractToolID(hostHeader, rootDomain string) (string, bool) {
	name := hostname(hostHeader)
	if name == "" {
		return "", false
	}

	if strings.HasSuffix(name, localSuffix) {
		label := strings.TrimSuffix(name, localSuffix)
		if i := strings.IndexByte(label, '.'); i >= 0 {
			label = label[:i]
		}
		return validLabel(label)
	}

	if name == "localhost" || isIP(name) {
		return "", false
	}

	labels := strings.Split(name, ".")
	for _, l := range labels {
		if l == "" {
			return "", false
		}
	}

	root := normalizeDomain(rootDomain)
	if root != "" {
		rootLabels := strings.Count(root, ".") + 1
		if len(labels) <= rootLabels {
			return "", false
		}
		return validLabel(labels[0])
	}

	if len(labels) > 2 {
		return validLabel(labels[0])
	}
	return "", false
}

// IsRoot reports whether hostHeader addresses the root site rather than a
// tool subdomain.
func IsRoot(hostHeader, rootDomain string) bool {
	_, ok := ExtractToolID(hostHeader, rootDomain)
	return !ok
}

// hostname strips any port and brackets and lower-cases the result.
func hostname(hostHeader string) string {
	h := strings.ToLower(strings.TrimSpace(hostHeader))
	if h == "" {
		return ""
	}
	if strings.HasPrefix(h, "[") {
		end := strings.IndexByte(h, ']')
		if end < 0 {
			return ""
		}
		return h[1:end]
	}
	if strings.Count(h, ":") == 1 {
		h = h[:strings.IndexByte(h, ':')]
	}
	return strings.TrimSuffix(h, ".")
}

func isIP(name string) bool {
	return net.ParseIP(name) != nil
}

func normalizeDomain(domain string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(domain)), ".")
}

func validLabel(label string) (string, bool) {
	if label == "www" || label == "localhost" || !labelPattern.MatchString(label) {
		return "", false
	}
	return label, true
}
