package middleware

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Rate is a parsed throttle rate such as "100/day".
type Rate struct {
	Count  int
	Period time.Duration
}

// Limit converts the rate to a token bucket refill rate.
func (r Rate) Limit() rate.Limit {
	return rate.Limit(float64(r.Count) / r.Period.Seconds())
}

var periods = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "second": time.Second,
	"m": time.Minute, "min": time.Minute, "minute": time.Minute,
	"h": time.Hour, "hour": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour,
}

// ParseRate parses "<count>/<period>" where period is second, minute, hour or
// day (or their short forms).
func ParseRate(s string) (Rate, error) {
	count, period, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: expected <count>/<period>", s)
	}
	n, err := strconv.Atoi(count)
	if err != nil || n <= 0 {
		return Rate{}, fmt.Errorf("invalid rate %q: count must be a positive integer", s)
	}
	d, ok := periods[strings.ToLower(period)]
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q: unknown period %q", s, period)
	}
	return Rate{Count: n, Period: d}, nil
}

// ThrottleConfig configures Throttle.
type ThrottleConfig struct {
	Anon Rate
	User Rate
	// Identify returns the ID of an authenticated caller. Callers it does not
	// identify are throttled per IP address with the Anon rate.
	Identify func(c *fiber.Ctx) (string, bool)
}

// Throttle limits requests per caller with a token bucket per key. Idle
// buckets are evicted after one period.
func Throttle(cfg ThrottleConfig) fiber.Handler {
	t := &throttler{
		buckets: gocache.New(maxPeriod(cfg), 10*time.Minute),
	}
	return func(c *fiber.Ctx) error {
		key, r := "anon:"+c.IP(), cfg.Anon
		if cfg.Identify != nil {
			if id, ok := cfg.Identify(c); ok {
				key, r = "user:"+id, cfg.User
			}
		}
		if !t.limiter(key, r).Allow() {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(r.Period.Seconds()/float64(r.Count)))))
			return fiber.NewError(fiber.StatusTooManyRequests, "Request was throttled")
		}
		return c.Next()
	}
}

type throttler struct {
	buckets *gocache.Cache
	mu      sync.Mutex
}

func (t *throttler) limiter(key string, r Rate) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		// Refresh the expiry while the caller is active.
		t.buckets.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(r.Limit(), r.Count)
	t.buckets.SetDefault(key, lim)
	return lim
}

func maxPeriod(cfg ThrottleConfig) time.Duration {
	if cfg.User.Period > cfg.Anon.Period {
		return cfg.User.Period
	}
	if cfg.Anon.Period > 0 {
		return cfg.Anon.Period
	}
	return time.Hour
}
