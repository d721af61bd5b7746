package domain

import "time"

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
// Authentication itself is owned by an external identity provider; this
// service only issues tokens in development tooling and verifies them on
// every call.
type TokenIssuer interface {
	Issue(userID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the caller's stable user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
