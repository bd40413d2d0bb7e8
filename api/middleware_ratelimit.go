package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pranaou2005/Wheelhub-backend/config"
)

// Counter increments a windowed counter and reports its value and remaining ttl
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisCounter is a fixed window Counter backed by INCR and EXPIRE
type RedisCounter struct {
	Client *redis.Client
}

// NewRedisCounter parses url and returns a counter, or nil when url is empty or invalid
func NewRedisCounter(url string) *RedisCounter {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		zap.S().Warnw("invalid REDIS_URL, rate limiting disabled", "error", err)
		return nil
	}
	return &RedisCounter{Client: redis.NewClient(opts)}
}

// Incr implements Counter
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := c.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

// TrustedProxies are the peers whose X-Forwarded-For header is believed
type TrustedProxies []*net.IPNet

// ParseTrustedProxies reads ip addresses and CIDR ranges, skipping invalid entries
func ParseTrustedProxies(entries []string) TrustedProxies {
	var out TrustedProxies
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.Contains(e, "/") {
			if ip := net.ParseIP(e); ip != nil && ip.To4() != nil {
				e += "/32"
			} else {
				e += "/128"
			}
		}
		_, ipNet, err := net.ParseCIDR(e)
		if err != nil {
			zap.S().Warnw("ignoring invalid trusted proxy", "entry", e, "error", err)
			continue
		}
		out = append(out, ipNet)
	}
	return out
}

// Contains reports whether ip belongs to a trusted proxy
func (t TrustedProxies) Contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range t {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the peer. X-Forwarded-For is only consulted when the peer
// is a trusted proxy, and then the right-most hop that is not itself trusted wins.
func (t TrustedProxies) ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !t.Contains(net.ParseIP(host)) {
		return host
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		ip := net.ParseIP(hop)
		if ip == nil {
			break
		}
		if !t.Contains(ip) {
			return hop
		}
	}
	return host
}

// RateLimit allows at most limit requests per client ip per window on the wrapped routes.
// A nil counter disables limiting and counter errors let the request through.
func RateLimit(counter Counter, proxies TrustedProxies, prefix string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if counter == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + prefix + ":" + proxies.ClientIP(r)
			n, ttl, err := counter.Incr(r.Context(), key, window)
			if err != nil {
				zap.S().Warnw("rate limiter unavailable", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if n > int64(limit) {
				secs := int(ttl / time.Second)
				if secs <= 0 {
					secs = int(window / time.Second)
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				config.ErrorStatus("Too many requests", http.StatusTooManyRequests, w, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
