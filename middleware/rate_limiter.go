package middleware

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jeke8989/telegram-bot-rns/utils"
)

// In-memory fixed-window rate limiter keyed by client IP. One node serves
// this widget, so no shared backend is needed; the award path stays protected
// against duplicate-tap floods and bots either way.

// IPRateLimiter tracks request timestamps per IP within a sliding window.
type IPRateLimiter struct {
	max         int
	window      time.Duration
	trustedCIDR []string

	mu    sync.Mutex
	state map[string][]int64 // unix nanos
}

// NewIPRateLimiter allows max requests per window per client IP.
func NewIPRateLimiter(max int, window time.Duration) *IPRateLimiter {
	l := &IPRateLimiter{
		max:    max,
		window: window,
		state:  make(map[string][]int64),
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		l.trustedCIDR = strings.Split(v, ",")
	}
	go l.cleanupLoop()
	return l
}

// clientIPGeneric returns the client IP string. If trustedCIDR is provided,
// X-Forwarded-For / X-Real-IP headers are honored when remote addr is inside
// one of the trusted CIDRs or IPs.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, _ := net.SplitHostPort(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteHost)
	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
				if remoteIP != nil && ipnet.Contains(remoteIP) {
					trusted = true
					break
				}
			}
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil && remoteIP != nil && ip.Equal(remoteIP) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if len(parts) > 0 {
				return strings.TrimSpace(parts[0])
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// allow records a hit for ip and reports whether it is within the limit.
func (l *IPRateLimiter) allow(ip string, now time.Time) bool {
	cutoff := now.Add(-l.window).UnixNano()

	l.mu.Lock()
	defer l.mu.Unlock()

	times := l.state[ip]
	kept := times[:0]
	for _, ts := range times {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.state[ip] = kept
		return false
	}
	l.state[ip] = append(kept, now.UnixNano())
	return true
}

// Middleware applies the per-IP limit and sets rate-limit headers.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trustedCIDR)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.max))
		if !l.allow(ip, time.Now()) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			utils.WriteRaw(w, http.StatusTooManyRequests, map[string]string{
				"error": "Too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cleanupLoop drops idle IPs so the state map cannot grow unbounded.
func (l *IPRateLimiter) cleanupLoop() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for range tick.C {
		cutoff := time.Now().Add(-l.window).UnixNano()
		l.mu.Lock()
		for ip, times := range l.state {
			if len(times) == 0 || times[len(times)-1] <= cutoff {
				delete(l.state, ip)
			}
		}
		l.mu.Unlock()
	}
}
