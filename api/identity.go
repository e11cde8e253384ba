package api

import (
	"net/http"
	"strings"
)

// IdentityHeader is the designated header carrying the caller identity.
const IdentityHeader = "X-User-ID"

// HeaderIdentity trusts the identity header verbatim. Presence is the
// only check performed: this is a placeholder identity mechanism for a
// trusted edge, not authentication, and the value is never validated
// for format.
type HeaderIdentity struct{}

// UserIDFromHeader extracts the caller identity, failing closed when the
// header is missing or empty.
func (HeaderIdentity) UserIDFromHeader(h http.Header) (string, error) {
	id := strings.TrimSpace(h.Get(IdentityHeader))
	if id == "" {
		return "", errAuthentication()
	}
	return id, nil
}
