package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealIP rewrites RemoteAddr from X-Forwarded-For or X-Real-IP, but only for
// requests whose socket peer is one of the trusted proxies. Everyone else is
// identified by the connection address, whatever headers they send.
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	isTrusted := func(a netip.Addr) bool {
		for _, p := range trusted {
			if p.Contains(a) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer, ok := parseAddr(r.RemoteAddr)
			if !ok || !isTrusted(peer) {
				next.ServeHTTP(w, r)
				return
			}

			// The rightmost untrusted hop is the last one a proxy of ours saw.
			hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
			for i := len(hops) - 1; i >= 0; i-- {
				a, ok := parseAddr(hops[i])
				if !ok {
					break
				}
				if !isTrusted(a) {
					r.RemoteAddr = a.String()
					next.ServeHTTP(w, r)
					return
				}
			}
			if a, ok := parseAddr(r.Header.Get("X-Real-IP")); ok {
				r.RemoteAddr = a.String()
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseAddr accepts "ip" and "ip:port".
func parseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}
