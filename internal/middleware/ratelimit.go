package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/dimitrije/salesdesk/internal/metrics"
	"github.com/m1z23r/drift/pkg/drift"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idle    time.Duration
	metrics *metrics.Metrics
	proxies TrustedProxies

	mu      sync.Mutex
	clients map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perSecond float64, burst int, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idle:    10 * time.Minute,
		metrics: m,
		clients: make(map[string]*visitor),
	}
}

// WithTrustedProxies makes the limiter key requests from the given proxies on
// the forwarded client address instead of the proxy's own.
func (rl *RateLimiter) WithTrustedProxies(proxies TrustedProxies) *RateLimiter {
	rl.proxies = proxies
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.clients[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Cleanup forgets clients idle for longer than the idle window.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.clients {
		if time.Since(v.lastSeen) > rl.idle {
			delete(rl.clients, ip)
		}
	}
}

func (rl *RateLimiter) Middleware() drift.HandlerFunc {
	return func(c *drift.Context) {
		if !rl.Allow(rl.proxies.ClientIP(c.Request)) {
			if rl.metrics != nil {
				rl.metrics.RateLimitedTotal.Inc()
			}
			c.Response.Header().Set("Retry-After", "1")
			_ = c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClientIP returns the host of the peer address. Forwarding headers are
// ignored; see TrustedProxies.ClientIP.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// TrustedProxies is the set of reverse proxies allowed to report the client
// address through X-Forwarded-For.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies accepts plain addresses and CIDR prefixes.
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			proxies = append(proxies, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return proxies, nil
}

func (tp TrustedProxies) trusts(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range tp {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the peer address unless the peer is a trusted proxy. Behind
// a trusted proxy it walks X-Forwarded-For from the right and returns the first
// hop that is not itself trusted. Hops left of that one are client supplied.
func (tp TrustedProxies) ClientIP(r *http.Request) string {
	remote := ClientIP(r)
	if len(tp) == 0 || !tp.trusts(remote) {
		return remote
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	leftmost := ""
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !tp.trusts(hop) {
			return hop
		}
		leftmost = hop
	}
	if leftmost != "" {
		return leftmost
	}
	return remote
}
