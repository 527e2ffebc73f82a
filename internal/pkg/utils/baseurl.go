package utils

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// BaseURLResolver derives the public scheme://host that links handed to
// clients are built from.
type BaseURLResolver struct {
	override string
	trusted  []*net.IPNet
}

// NewBaseURLResolver accepts IPs or CIDRs in trustedProxies. Forwarded
// headers are only honoured when the direct peer is one of them.
func NewBaseURLResolver(override string, trustedProxies []string) (*BaseURLResolver, error) {
	b := &BaseURLResolver{override: strings.TrimRight(strings.TrimSpace(override), "/")}
	for _, p := range trustedProxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", p)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			p = fmt.Sprintf("%s/%d", ip.String(), bits)
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		b.trusted = append(b.trusted, n)
	}
	return b, nil
}

// Resolve returns the override when set, otherwise scheme://host of the
// request as seen by the client.
func (b *BaseURLResolver) Resolve(r *http.Request) string {
	if b.override != "" {
		return b.override
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host

	if b.fromTrustedProxy(r) {
		if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto == "http" || proto == "https" {
			scheme = proto
		}
		if fwd := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); fwd != "" {
			host = fwd
		}
	}
	return scheme + "://" + host
}

func (b *BaseURLResolver) fromTrustedProxy(r *http.Request) bool {
	if len(b.trusted) == 0 {
		return false
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range b.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}
