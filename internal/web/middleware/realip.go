package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/JonMunkholm/colsplit/internal/core"
)

// TrustedRealIP resolves the client address and stores it on the request
// context for session logs and rate limiting.
//
// X-Real-IP and X-Forwarded-For are honoured only when the connection comes
// from one of trustedCIDRs. Otherwise the connection address is used as is.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parsePrefixes(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trusted)
			if ip != "" {
				r.RemoteAddr = ip
			}
			ctx := core.ContextWithClientIP(r.Context(), remoteHost(r.RemoteAddr))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parsePrefixes accepts CIDRs and bare addresses. Invalid entries are logged and skipped.
func parsePrefixes(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			slog.Warn("realip: invalid trusted proxy, skipping", "entry", e, "error", err)
			continue
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

// clientIP returns the forwarded client address, or "" when the headers
// must not be trusted or carry no valid address.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	remote, err := netip.ParseAddr(remoteHost(r.RemoteAddr))
	if err != nil || !contains(trusted, remote.Unmap()) {
		return ""
	}

	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		if addr, err := netip.ParseAddr(rip); err == nil {
			return addr.String()
		}
		return ""
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	return ""
}

func contains(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteHost strips the port from a host:port address.
func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
