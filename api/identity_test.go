package api

import (
	"errors"
	"net/http"
	"testing"
)

func TestUserIDFromHeader(t *testing.T) {
	h := http.Header{}
	h.Set(IdentityHeader, "user-123")
	id, err := HeaderIdentity{}.UserIDFromHeader(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if id != "user-123" {
		t.Fatalf("expected user-123, got %q", id)
	}
}

func TestUserIDFromHeaderFailsClosed(t *testing.T) {
	cases := map[string]http.Header{
		"missing":    {},
		"empty":      {IdentityHeader: []string{""}},
		"whitespace": {IdentityHeader: []string{"   "}},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := HeaderIdentity{}.UserIDFromHeader(h)
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.Status != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", apiErr.Status)
			}
			if apiErr.Title != "Authentication Error" {
				t.Fatalf("unexpected title %q", apiErr.Title)
			}
		})
	}
}

func TestUserIDIsOpaque(t *testing.T) {
	// Any non-empty value passes; the identity is never format-checked.
	h := http.Header{}
	h.Set(IdentityHeader, "!!not::a--uuid??")
	id, err := HeaderIdentity{}.UserIDFromHeader(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if id != "!!not::a--uuid??" {
		t.Fatalf("identity altered: %q", id)
	}
}
