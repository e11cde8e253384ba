package api

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const limiterCleanupInterval = 5 * time.Minute

// Rule bounds request frequency for one route class: at most Limit
// admissions per caller key within each Window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

func (r Rule) String() string {
	return fmt.Sprintf("%d requests per %s", r.Limit, r.Window)
}

// ParseRule parses a "count/window" spec such as "5/30s".
func ParseRule(name, raw string) (Rule, error) {
	countStr, windowStr, ok := strings.Cut(raw, "/")
	if !ok {
		return Rule{}, fmt.Errorf("rate rule %q: want count/window", raw)
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count <= 0 {
		return Rule{}, fmt.Errorf("rate rule %q: invalid count", raw)
	}
	window, err := time.ParseDuration(windowStr)
	if err != nil || window <= 0 {
		return Rule{}, fmt.Errorf("rate rule %q: invalid window", raw)
	}
	return Rule{Name: name, Limit: count, Window: window}, nil
}

// window is the fixed-window state for one (rule, caller key) pair: a
// counter and the instant the current window opened. When the window
// elapses the counter resets and a new window starts.
type window struct {
	start time.Time
	count int
	ttl   time.Duration
}

// Limiter tracks fixed windows per (rule, caller key). Admissions on the
// same key serialize under one mutex; stale entries are swept inline
// during Admit calls.
type Limiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	lastCleanup time.Time

	now func() time.Time // test seam
}

func NewLimiter() *Limiter {
	return &Limiter{
		windows:     make(map[string]*window),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Admit records one request against the rule's window for the key. It
// reports whether the request is allowed and, when denied, how long
// until the current window expires.
func (l *Limiter) Admit(key string, rule Rule) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastCleanup) > limiterCleanupInterval {
		for k, w := range l.windows {
			if now.Sub(w.start) > w.ttl {
				delete(l.windows, k)
			}
		}
		l.lastCleanup = now
	}

	// Rules are keyed independently: exhausting one route class must
	// not affect another.
	k := rule.Name + ":" + key
	w, ok := l.windows[k]
	if !ok || now.Sub(w.start) >= rule.Window {
		l.windows[k] = &window{start: now, count: 1, ttl: rule.Window}
		return true, 0
	}
	if w.count < rule.Limit {
		w.count++
		return true, 0
	}
	return false, rule.Window - now.Sub(w.start)
}

// rateLimitMiddleware admits or rejects the request before the handler
// runs. The caller key is the extracted identity when the route carries
// one, so users behind a shared address get separate budgets; routes
// without identity fall back to the client address. Identity-carrying
// routes fail closed with 401 before consuming any budget.
func rateLimitMiddleware(l *Limiter, rule Rule, auth Authenticator, requireIdentity, trustProxy bool, logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			var key string
			if requireIdentity {
				userID, err := auth.UserIDFromHeader(req.Header)
				if err != nil {
					return err
				}
				key = userID
			} else {
				key = clientIP(req, trustProxy)
			}

			ok, retryAfter := l.Admit(key, rule)
			if !ok {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				logger.WithFields(log.Fields{
					"rule":   rule.Name,
					"path":   req.URL.Path,
					"method": req.Method,
				}).Warn("rate limit exceeded")
				return errRateLimited(rule)
			}
			return next(c)
		}
	}
}

// clientIP extracts the caller's network address. Proxy headers are only
// honored when trustProxy is set, and their values must parse as IPs so
// arbitrary strings cannot be injected as limiter keys.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
				return ip.String()
			}
		}
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			raw := xff
			if first, _, ok := strings.Cut(xff, ","); ok {
				raw = first
			}
			if ip := net.ParseIP(strings.TrimSpace(raw)); ip != nil {
				return ip.String()
			}
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
