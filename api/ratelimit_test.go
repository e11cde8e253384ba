package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseRule(t *testing.T) {
	rule, err := ParseRule("cards-write", "5/30s")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rule.Name != "cards-write" || rule.Limit != 5 || rule.Window != 30*time.Second {
		t.Fatalf("unexpected rule: %#v", rule)
	}

	invalid := []string{"", "5", "/30s", "5/", "abc/30s", "0/30s", "-1/30s", "5/0s", "5/abc"}
	for _, raw := range invalid {
		if _, err := ParseRule("r", raw); err == nil {
			t.Fatalf("ParseRule(%q): expected error", raw)
		}
	}
}

func frozenLimiter(start time.Time) (*Limiter, *time.Time) {
	now := start
	l := NewLimiter()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAdmitDeniesBeyondLimit(t *testing.T) {
	l, _ := frozenLimiter(time.Now())
	rule := Rule{Name: "r", Limit: 3, Window: 30 * time.Second}

	for i := 0; i < 3; i++ {
		if ok, _ := l.Admit("alice", rule); !ok {
			t.Fatalf("request %d unexpectedly denied", i+1)
		}
	}
	ok, retryAfter := l.Admit("alice", rule)
	if ok {
		t.Fatal("request beyond limit was admitted")
	}
	if retryAfter <= 0 || retryAfter > rule.Window {
		t.Fatalf("unexpected retryAfter %s", retryAfter)
	}
}

func TestAdmitResetsAfterWindow(t *testing.T) {
	l, now := frozenLimiter(time.Now())
	rule := Rule{Name: "r", Limit: 2, Window: 30 * time.Second}

	l.Admit("alice", rule)
	l.Admit("alice", rule)
	if ok, _ := l.Admit("alice", rule); ok {
		t.Fatal("expected denial within window")
	}

	*now = now.Add(rule.Window)
	if ok, _ := l.Admit("alice", rule); !ok {
		t.Fatal("expected admission after window elapsed")
	}
}

func TestAdmitKeysAreIndependent(t *testing.T) {
	l, _ := frozenLimiter(time.Now())
	rule := Rule{Name: "r", Limit: 1, Window: time.Minute}

	if ok, _ := l.Admit("alice", rule); !ok {
		t.Fatal("first alice request denied")
	}
	if ok, _ := l.Admit("alice", rule); ok {
		t.Fatal("second alice request admitted")
	}
	// A different caller key has its own budget.
	if ok, _ := l.Admit("bob", rule); !ok {
		t.Fatal("bob starved by alice's budget")
	}
}

func TestAdmitRulesAreIndependent(t *testing.T) {
	l, _ := frozenLimiter(time.Now())
	write := Rule{Name: "cards-write", Limit: 1, Window: time.Minute}
	read := Rule{Name: "cards-read", Limit: 1, Window: time.Minute}

	l.Admit("alice", write)
	if ok, _ := l.Admit("alice", write); ok {
		t.Fatal("write budget not exhausted")
	}
	// Exhausting one route class must not affect another.
	if ok, _ := l.Admit("alice", read); !ok {
		t.Fatal("read budget drained by write rule")
	}
}

func TestAdmitSweepsStaleWindows(t *testing.T) {
	l, now := frozenLimiter(time.Now())
	rule := Rule{Name: "r", Limit: 1, Window: time.Second}

	l.Admit("alice", rule)
	l.Admit("bob", rule)

	*now = now.Add(limiterCleanupInterval + time.Minute)
	l.Admit("carol", rule)

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.windows) != 1 {
		t.Fatalf("expected stale windows swept, have %d", len(l.windows))
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.0.2.10:4321"
	if got := clientIP(req, false); got != "192.0.2.10" {
		t.Fatalf("expected RemoteAddr host, got %q", got)
	}

	req.Header.Set("X-Real-IP", "203.0.113.7")
	if got := clientIP(req, false); got != "192.0.2.10" {
		t.Fatalf("proxy header honored without trustProxy: %q", got)
	}
	if got := clientIP(req, true); got != "203.0.113.7" {
		t.Fatalf("expected X-Real-IP with trustProxy, got %q", got)
	}

	req.Header.Del("X-Real-IP")
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	if got := clientIP(req, true); got != "198.51.100.4" {
		t.Fatalf("expected first X-Forwarded-For hop, got %q", got)
	}

	// Non-IP header values must not become limiter keys.
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	if got := clientIP(req, true); got != "192.0.2.10" {
		t.Fatalf("expected fallback past invalid header, got %q", got)
	}
}
