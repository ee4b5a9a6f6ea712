package clients

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const idBytes = 10 // hex-encoded to a 20 character client id

// Client is a registered OAuth 2.0 client application.
type Client struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Secret       string   `json:"-"` // bcrypt hash, empty for public clients
	RedirectURIs []string `json:"redirectURIs"`
	Scopes       []string `json:"scopes"` // scope names assigned to this client
}

// New builds an unsaved client with a freshly generated id. Redirect
// URIs are trimmed of surrounding whitespace.
func New(name string, redirectURIs []string, scopes []string) (*Client, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(redirectURIs))
	for _, uri := range redirectURIs {
		uris = append(uris, strings.TrimSpace(uri))
	}
	return &Client{
		ID:           id,
		Name:         name,
		RedirectURIs: uris,
		Scopes:       scopes,
	}, nil
}

// IsPublic reports whether the client has no secret. Public clients can
// only use grants that explicitly allow them.
func (c *Client) IsPublic() bool {
	return c.Secret == ""
}

// HasRedirectURI reports whether uri exactly matches one of the
// registered redirect URIs.
func (c *Client) HasRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// HasScope reports whether the scope name is assigned to this client.
func (c *Client) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Authenticate verifies a plaintext secret against the stored hash.
// Public clients always fail authentication.
func (c *Client) Authenticate(secret string) bool {
	if c.IsPublic() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}

// GenerateSecret creates a new random secret, stores its bcrypt hash on
// the client and returns the plaintext. The plaintext is not
// recoverable afterwards.
func (c *Client) GenerateSecret() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "Client.GenerateSecret rand.Read")
	}
	secret := hex.EncodeToString(raw)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "Client.GenerateSecret bcrypt")
	}
	c.Secret = string(hash)
	return secret, nil
}

func generateID() (string, error) {
	raw := make([]byte, idBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "clients.generateID rand.Read")
	}
	return hex.EncodeToString(raw), nil
}
