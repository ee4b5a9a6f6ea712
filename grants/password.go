package grants

import (
	"net/http"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
)

var (
	_ Grant                    = (*PasswordGrant)(nil)
	_ AuthorizationServerAware = (*PasswordGrant)(nil)
)

// PasswordGrant exchanges resource owner credentials for tokens.
// Credential verification is delegated to the host application's
// UserAuthenticator.
type PasswordGrant struct {
	authenticator oauth2.UserAuthenticator
	access        *token.AccessTokenService
	refresh       *token.RefreshTokenService
	server        AuthorizationServer
}

func NewPasswordGrant(authenticator oauth2.UserAuthenticator, access *token.AccessTokenService, refresh *token.RefreshTokenService) *PasswordGrant {
	return &PasswordGrant{authenticator: authenticator, access: access, refresh: refresh}
}

func (g *PasswordGrant) Type() string         { return oauth2.GrantTypePassword }
func (g *PasswordGrant) ResponseType() string { return "" }

func (g *PasswordGrant) AllowPublicClients() bool { return true }

func (g *PasswordGrant) SetAuthorizationServer(server AuthorizationServer) {
	g.server = server
}

func (g *PasswordGrant) CreateAuthorizationResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	return nil, oauth2.InvalidRequest("password grant does not support authorization")
}

func (g *PasswordGrant) CreateTokenResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		return nil, oauth2.InvalidRequest("username and/or password is missing in the request")
	}

	userOwner, err := g.authenticator.Validate(username, password)
	if err != nil {
		return nil, err
	}
	if userOwner == nil {
		return nil, oauth2.AccessDenied("either username or password are incorrect")
	}

	scopes := oauth2.SplitScopes(r.FormValue("scope"))
	access, err := g.access.CreateToken(userOwner, client, scopes)
	if err != nil {
		return nil, err
	}

	var refresh *token.RefreshToken
	if g.server != nil && g.server.HasGrant(oauth2.GrantTypeRefreshToken) {
		refresh, err = g.refresh.CreateToken(userOwner, client, scopes)
		if err != nil {
			return nil, err
		}
	}

	return tokenResponse(access, refresh)
}
