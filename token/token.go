package token

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/pkg/errors"
)

const valueBytes = 20 // hex-encoded to a 40 character token value

// Token carries the state shared by access tokens, refresh tokens and
// authorization codes. A nil ExpiresAt means the token never expires.
type Token struct {
	Value     string
	Owner     oauth2.TokenOwner // nil for tokens issued to a client alone
	Client    *clients.Client
	ExpiresAt *time.Time
	Scopes    []string // scope names, denormalised from the scope registry
}

func newToken(ttl time.Duration, owner oauth2.TokenOwner, client *clients.Client, scopes []string) (Token, error) {
	value, err := generateValue()
	if err != nil {
		return Token{}, err
	}
	t := Token{
		Value:  value,
		Owner:  owner,
		Client: client,
		Scopes: scopes,
	}
	if ttl != 0 {
		expiresAt := time.Now().Add(ttl)
		t.ExpiresAt = &expiresAt
	}
	return t, nil
}

// Regenerate replaces the token value with a fresh one. Used when a
// generated value collides with a stored token.
func (t *Token) Regenerate() error {
	value, err := generateValue()
	if err != nil {
		return err
	}
	t.Value = value
	return nil
}

// IsExpired reports whether the token's lifetime has passed. Tokens
// without an expiry never expire.
func (t *Token) IsExpired() bool {
	if t.ExpiresAt == nil {
		return false
	}
	return !t.ExpiresAt.After(time.Now())
}

// ExpiresIn returns the remaining lifetime in whole seconds. Zero for
// tokens that never expire, negative for tokens already expired.
func (t *Token) ExpiresIn() int64 {
	if t.ExpiresAt == nil {
		return 0
	}
	return int64(time.Until(*t.ExpiresAt).Round(time.Second) / time.Second)
}

// MatchScopes reports whether every requested scope name is carried by
// the token. An empty request always matches.
func (t *Token) MatchScopes(requested []string) bool {
	for _, name := range requested {
		if !t.hasScope(name) {
			return false
		}
	}
	return true
}

// IsValid reports whether the token is unexpired and covers every
// requested scope.
func (t *Token) IsValid(requested []string) bool {
	return !t.IsExpired() && t.MatchScopes(requested)
}

// OwnerID returns the owner identifier, or the empty string for tokens
// with no owner.
func (t *Token) OwnerID() string {
	if t.Owner == nil {
		return ""
	}
	return t.Owner.OwnerID()
}

func (t *Token) hasScope(name string) bool {
	for _, s := range t.Scopes {
		if s == name {
			return true
		}
	}
	return false
}

func generateValue() (string, error) {
	raw := make([]byte, valueBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "token.generateValue rand.Read")
	}
	return hex.EncodeToString(raw), nil
}

// AccessToken grants access to protected resources.
type AccessToken struct {
	Token
}

// NewAccessToken creates an unsaved access token. A zero ttl produces a
// token that never expires.
func NewAccessToken(ttl time.Duration, owner oauth2.TokenOwner, client *clients.Client, scopes []string) (*AccessToken, error) {
	t, err := newToken(ttl, owner, client, scopes)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: t}, nil
}

// RefreshToken can be exchanged for a new access token.
type RefreshToken struct {
	Token
}

// NewRefreshToken creates an unsaved refresh token.
func NewRefreshToken(ttl time.Duration, owner oauth2.TokenOwner, client *clients.Client, scopes []string) (*RefreshToken, error) {
	t, err := newToken(ttl, owner, client, scopes)
	if err != nil {
		return nil, err
	}
	return &RefreshToken{Token: t}, nil
}

// AuthorizationCode is the single-use credential issued by the
// authorization endpoint. It remembers the redirect URI it was issued
// for so the token phase can bind the exchange to the same URI.
type AuthorizationCode struct {
	Token
	RedirectURI string
}

// NewAuthorizationCode creates an unsaved authorization code.
func NewAuthorizationCode(ttl time.Duration, redirectURI string, owner oauth2.TokenOwner, client *clients.Client, scopes []string) (*AuthorizationCode, error) {
	t, err := newToken(ttl, owner, client, scopes)
	if err != nil {
		return nil, err
	}
	return &AuthorizationCode{Token: t, RedirectURI: redirectURI}, nil
}
