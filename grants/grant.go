package grants

import (
	"net/http"
	"strings"

	"github.com/clearauth/go-oauth2/internal/utils"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"

	"github.com/clearauth/go-oauth2/clients"
)

// Grant handles one OAuth 2.0 flow. The authorization server dispatches
// requests to grants by grant type (token endpoint) and by response
// type (authorization endpoint).
type Grant interface {
	// Type is the grant_type value this grant serves.
	Type() string

	// ResponseType is the response_type value this grant serves at the
	// authorization endpoint. Empty for grants with no authorization
	// phase.
	ResponseType() string

	// AllowPublicClients reports whether clients without a secret may
	// use this grant.
	AllowPublicClients() bool

	// CreateAuthorizationResponse serves the authorization phase.
	CreateAuthorizationResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error)

	// CreateTokenResponse serves the token phase.
	CreateTokenResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error)
}

// AuthorizationServer is the read-only view of the server that grants
// may consult. Grants hold it as a non-owning handle, injected after
// construction.
type AuthorizationServer interface {
	HasGrant(grantType string) bool
	HasResponseType(responseType string) bool
}

// AuthorizationServerAware is implemented by grants that need to ask
// the server whether the refresh_token grant is registered before
// minting a refresh token.
type AuthorizationServerAware interface {
	SetAuthorizationServer(server AuthorizationServer)
}

// tokenResponse renders the RFC 6749 section 5.1 success payload.
// A nil refresh token omits the refresh_token member.
func tokenResponse(access *token.AccessToken, refresh *token.RefreshToken) (*oauth2.Response, error) {
	body := oauth2.TokenResponse{
		AccessToken: access.Value,
		TokenType:   oauth2.TokenTypeBearer,
		ExpiresIn:   access.ExpiresIn(),
		Scope:       strings.Join(access.Scopes, " "),
	}
	if access.Owner != nil {
		body.OwnerID = utils.Ptr(access.Owner.OwnerID())
	}
	if refresh != nil {
		body.RefreshToken = utils.Ptr(refresh.Value)
	}
	return oauth2.NewJSONResponse(http.StatusOK, body)
}
