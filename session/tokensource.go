// ABOUTME: OAuth2 token source backed by the backend's JWT refresh endpoint
// ABOUTME: Reads access-token expiry from the JWT and persists rotated tokens
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// expiryLeeway refreshes slightly before the token actually expires.
const expiryLeeway = 30 * time.Second

// accessExpiry reads the exp claim without verifying the signature.
func accessExpiry(access string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Add(-expiryLeeway)
}

func oauthToken(access string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken: access,
		TokenType:   "Bearer",
		Expiry:      accessExpiry(access),
	}
}

// refresher exchanges the stored refresh token whenever the cached access token expires.
type refresher struct {
	s *Session
}

func (r *refresher) Token() (*oauth2.Token, error) {
	r.s.mu.RLock()
	creds := r.s.creds
	r.s.mu.RUnlock()

	if creds == nil || creds.Refresh == "" {
		return nil, fmt.Errorf("session expired: log in again")
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	pair, err := r.s.base.RefreshToken(ctx, creds.Refresh)
	if err != nil {
		r.s.logger.Warn("token refresh failed", "err", err)
		return nil, err
	}

	next := *creds
	next.Access = pair.Access
	next.Refresh = pair.Refresh

	r.s.mu.Lock()
	r.s.creds = &next
	r.s.mu.Unlock()

	if err := r.s.store.Save(&next); err != nil {
		r.s.logger.Warn("failed to persist refreshed token", "err", err)
	}
	r.s.logger.Debug("access token refreshed")
	return oauthToken(pair.Access), nil
}

const refreshTimeout = 15 * time.Second
