package auth

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
)

// clientFromRequest authenticates the client that made the request.
// For grants allowing public clients a missing client id yields
// (nil, nil) and the caller decides whether that is acceptable.
func (s *AuthorizationServer) clientFromRequest(r *http.Request, allowPublicClients bool) (*clients.Client, error) {
	id, secret := clientCredentials(r)

	if !allowPublicClients && secret == "" {
		return nil, oauth2.InvalidClient("client secret is missing")
	}
	if allowPublicClients && id == "" {
		return nil, nil
	}

	client, err := s.clients.Find(id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, oauth2.InvalidClient("client authentication failed")
	}
	if !allowPublicClients && !client.Authenticate(secret) {
		return nil, oauth2.InvalidClient("client authentication failed")
	}
	return client, nil
}

// clientCredentials extracts the client id and secret. The
// Authorization header takes precedence, carrying base64(id:secret);
// otherwise the client_id/client_secret request parameters are used.
func clientCredentials(r *http.Request) (id, secret string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return r.FormValue("client_id"), r.FormValue("client_secret")
	}

	parts := strings.Fields(header)
	if len(parts) == 0 {
		return "", ""
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[len(parts)-1])
	if err != nil {
		return "", ""
	}
	id, secret, _ = strings.Cut(string(decoded), ":")
	return id, secret
}
