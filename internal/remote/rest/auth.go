package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"taskdeck/internal/config"
	"taskdeck/internal/remote"
)

// tokenResponse is the auth endpoint's token grant response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignIn implements remote.Store using the password grant. The resulting
// session is persisted and a SignedIn event fires.
func (c *Client) SignIn(ctx context.Context, email, password string) (*remote.Session, error) {
	q := url.Values{}
	q.Set("grant_type", "password")

	var tok tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, authPrefix+"/token", q, body, &tok, ""); err != nil {
		return nil, err
	}

	stored := storedFromToken(tok)
	if err := c.cfg.WriteSession(stored); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	c.mu.Lock()
	c.session = stored
	c.mu.Unlock()

	session := sessionOf(stored)
	c.notify(remote.SignedIn, session)
	return session, nil
}

// SignUp implements remote.Store. redirectTo is forwarded to the auth
// service as the confirmation redirect target; no session is created
// until the account is confirmed and signed in.
func (c *Client) SignUp(ctx context.Context, email, password, redirectTo string) error {
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, authPrefix+"/signup", q, body, nil, "")
}

// SignOut implements remote.Store. The local session is discarded and a
// SignedOut event fires even when the remote invalidation fails; a stale
// local session is worse than a stale server-side one. The remote error
// is still returned so the caller can report the failed invalidation.
// An auth error means the session was already dead server-side and is
// not a failure.
func (c *Client) SignOut(ctx context.Context) error {
	remoteErr := c.do(ctx, http.MethodPost, authPrefix+"/logout", nil, nil, nil, "")
	if errors.Is(remoteErr, remote.ErrAuth) {
		remoteErr = nil
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	if err := c.cfg.RemoveSession(); err != nil {
		c.log.Debug("remove session file", "err", err)
	}
	c.notify(remote.SignedOut, nil)
	return remoteErr
}

// GetSession implements remote.Store. It loads the persisted session on
// first use and refreshes an expired token before returning. A missing
// session is (nil, nil); a refresh failure is an error for the caller to
// treat as unauthenticated.
func (c *Client) GetSession(ctx context.Context) (*remote.Session, error) {
	c.mu.Lock()
	stored := c.session
	c.mu.Unlock()

	if stored == nil {
		var err error
		stored, err = c.cfg.ReadSession()
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, nil
		}
		if stored.User.ID == "" {
			stored.User = userFromClaims(stored.AccessToken)
		}
		c.mu.Lock()
		c.session = stored
		c.mu.Unlock()
	}

	if stored.Valid() {
		return sessionOf(stored), nil
	}
	return c.refresh(ctx, stored)
}

// refresh exchanges the refresh token for a new token pair.
func (c *Client) refresh(ctx context.Context, stored *config.StoredSession) (*remote.Session, error) {
	if stored.RefreshToken == "" {
		return nil, fmt.Errorf("%w: session expired and no refresh token", remote.ErrAuth)
	}

	q := url.Values{}
	q.Set("grant_type", "refresh_token")

	var tok tokenResponse
	body := map[string]string{"refresh_token": stored.RefreshToken}
	if err := c.do(ctx, http.MethodPost, authPrefix+"/token", q, body, &tok, ""); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	next := storedFromToken(tok)
	if next.User.ID == "" {
		next.User = stored.User
	}
	if err := c.cfg.WriteSession(next); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	c.mu.Lock()
	c.session = next
	c.mu.Unlock()

	session := sessionOf(next)
	c.notify(remote.SignedIn, session)
	return session, nil
}

// storedFromToken builds the persisted session from a token response.
func storedFromToken(tok tokenResponse) *config.StoredSession {
	stored := &config.StoredSession{
		Token: oauth2.Token{
			AccessToken:  tok.AccessToken,
			TokenType:    tok.TokenType,
			RefreshToken: tok.RefreshToken,
		},
		User: remote.User{ID: tok.User.ID, Email: tok.User.Email},
	}
	if tok.ExpiresIn > 0 {
		stored.Expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	if stored.User.ID == "" {
		stored.User = userFromClaims(tok.AccessToken)
	}
	return stored
}

// sessionOf converts a stored session to the contract's session value.
func sessionOf(stored *config.StoredSession) *remote.Session {
	return &remote.Session{User: stored.User, ExpiresAt: stored.Expiry}
}

// userFromClaims recovers the owner from the access token's claims when
// the auth response omits the user record. The token is not verified
// here; the backend is the verifier and rejects forged tokens anyway.
func userFromClaims(accessToken string) remote.User {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return remote.User{}
	}
	user := remote.User{}
	if sub, err := claims.GetSubject(); err == nil {
		user.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	return user
}
