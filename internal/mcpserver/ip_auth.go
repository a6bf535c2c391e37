package mcpserver

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
)

// IPAuthMiddleware restricts HTTP access to an allow-list of addresses and
// CIDR blocks.
type IPAuthMiddleware struct {
	allowedNets   []*net.IPNet
	enableLogging bool
}

// NewIPAuthMiddleware parses the allow-list. Entries may be single addresses
// or CIDR blocks; single addresses become /32 (or /128) networks.
func NewIPAuthMiddleware(allowedIPs []string, enableLogging bool) (*IPAuthMiddleware, error) {
	if len(allowedIPs) == 0 {
		return nil, fmt.Errorf("no allowed IPs specified")
	}

	m := &IPAuthMiddleware{enableLogging: enableLogging}
	for _, entry := range allowedIPs {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid IP address: %s", entry)
			}
			if ip.To4() != nil {
				entry += "/32"
			} else {
				entry += "/128"
			}
		}

		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR block %s: %w", entry, err)
		}
		m.allowedNets = append(m.allowedNets, network)
	}

	if len(m.allowedNets) == 0 {
		return nil, fmt.Errorf("no valid entries in IP allow-list")
	}
	return m, nil
}

// Middleware returns the HTTP middleware function.
func (m *IPAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		if !m.isAllowed(clientIP) {
			if m.enableLogging {
				log.Printf("access denied for IP %s (path=%s method=%s)", clientIP, r.URL.Path, r.Method)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":-32603,"message":"Access denied: IP not authorized"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *IPAuthMiddleware) isAllowed(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, network := range m.allowedNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP resolves the real client address, honoring proxy headers.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, use the first one
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
