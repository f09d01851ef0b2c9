package gateway

import (
	"crypto/subtle"
	"net/http"
)

// tokenAuth guards the /ws upgrade. An empty token allows every client.
type tokenAuth struct {
	token []byte
}

func newTokenAuth(token string) tokenAuth {
	return tokenAuth{token: []byte(token)}
}

// allow reports whether r carries the configured ?token=.
// Uses constant-time comparison to prevent timing attacks.
func (a tokenAuth) allow(r *http.Request) bool {
	if len(a.token) == 0 {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(r.URL.Query().Get("token")), a.token) == 1
}
