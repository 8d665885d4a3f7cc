package utility

import (
	"fmt"
	"net"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// NewIPExtractor returns the echo.IPExtractor used for c.RealIP(). With no
// trusted proxies the peer address is used and forwarding headers are
// ignored. Otherwise X-Forwarded-For is walked from the right, skipping only
// the listed proxies, so a client cannot pick its own address.
func NewIPExtractor(trusted []string) (echo.IPExtractor, error) {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, entry := range trusted {
		ipNet, err := parseIPRange(entry)
		if err != nil {
			return nil, err
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(options...), nil
}

// parseIPRange accepts a CIDR or a bare IP, which is treated as a single host.
func parseIPRange(entry string) (*net.IPNet, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		return ipNet, nil
	}
	ip := net.ParseIP(entry)
	if ip == nil {
		return nil, fmt.Errorf("invalid trusted proxy %q", entry)
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}

// IPRateLimiter hands out one token bucket per client IP. The number of
// tracked IPs is bounded; the least recently seen client is forgotten first.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter allows perMinute requests per IP with the given burst.
func NewIPRateLimiter(perMinute, burst, maxClients int) (*IPRateLimiter, error) {
	cache, err := lru.New[string, *rate.Limiter](maxClients)
	if err != nil {
		return nil, err
	}
	return &IPRateLimiter{
		limiters: cache,
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
	}, nil
}

// Allow reports whether ip may make another request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters.Add(ip, limiter)
	}
	l.mu.Unlock()

	return limiter.Allow()
}
