package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// ipSet matches addresses against single IPs and CIDR ranges.
type ipSet struct {
	nets []*net.IPNet
}

// newIPSet parses IP and CIDR entries. Invalid entries are logged and skipped.
func newIPSet(entries []string, logger zerolog.Logger, what string) ipSet {
	var s ipSet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				logger.Warn().Str("entry", entry).Msgf("invalid IP in %s list", what)
				continue
			}
			bits := 8 * net.IPv6len
			if v4 := ip.To4(); v4 != nil {
				ip, bits = v4, 8*net.IPv4len
			}
			s.nets = append(s.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			logger.Warn().Str("entry", entry).Err(err).Msgf("invalid CIDR in %s list", what)
			continue
		}
		s.nets = append(s.nets, ipNet)
	}
	return s
}

func (s ipSet) contains(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, n := range s.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (s ipSet) len() int { return len(s.nets) }

// ClientIP returns the host part of r.RemoteAddr. Behind a trusted proxy,
// ProxyHeaders has already replaced RemoteAddr with the forwarded client.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ProxyHeaders sets r.RemoteAddr from X-Forwarded-For or X-Real-IP, but only
// when the connecting peer is one of the trusted proxies. Headers from any
// other peer are ignored.
func ProxyHeaders(trusted []string, logger zerolog.Logger) func(http.Handler) http.Handler {
	proxies := newIPSet(trusted, logger, "trusted proxy")
	if proxies.len() > 0 {
		logger.Info().Int("proxies", proxies.len()).Msg("trusting forwarded headers from configured proxies")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if proxies.contains(ClientIP(r)) {
				if ip := forwardedClient(r, proxies); ip != "" {
					r.RemoteAddr = ip
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedClient walks X-Forwarded-For from the nearest hop and returns the
// first address not belonging to a trusted proxy.
func forwardedClient(r *http.Request, proxies ipSet) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				return ""
			}
			if !proxies.contains(hop) {
				return hop
			}
		}
		return strings.TrimSpace(hops[0])
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return ""
}
