package grants

import (
	"net/http"
	"net/url"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
	"github.com/pkg/errors"
)

var (
	_ Grant                    = (*AuthorizationCodeGrant)(nil)
	_ AuthorizationServerAware = (*AuthorizationCodeGrant)(nil)
)

// AuthorizationCodeGrant implements the two-phase authorization code
// flow: the authorization endpoint issues a short-lived code bound to a
// redirect URI, and the token endpoint redeems it for an access token.
type AuthorizationCodeGrant struct {
	codes   *token.AuthorizationCodeService
	access  *token.AccessTokenService
	refresh *token.RefreshTokenService
	server  AuthorizationServer
}

func NewAuthorizationCodeGrant(codes *token.AuthorizationCodeService, access *token.AccessTokenService, refresh *token.RefreshTokenService) *AuthorizationCodeGrant {
	return &AuthorizationCodeGrant{codes: codes, access: access, refresh: refresh}
}

func (g *AuthorizationCodeGrant) Type() string         { return oauth2.GrantTypeAuthorizationCode }
func (g *AuthorizationCodeGrant) ResponseType() string { return oauth2.ResponseTypeCode }

func (g *AuthorizationCodeGrant) AllowPublicClients() bool { return true }

func (g *AuthorizationCodeGrant) SetAuthorizationServer(server AuthorizationServer) {
	g.server = server
}

func (g *AuthorizationCodeGrant) CreateAuthorizationResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	responseType := r.FormValue("response_type")
	if responseType != oauth2.ResponseTypeCode {
		return nil, oauth2.InvalidRequest(`the desired response type must be "code", but "` + responseType + `" was given`)
	}

	// No redirect_uri parameter falls back to the client's first
	// registered URI. A presented URI must match a registered one so
	// the user is never redirected to an unauthorized location.
	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		if len(client.RedirectURIs) == 0 {
			return nil, oauth2.InvalidRequest("the client has no registered redirect URI")
		}
		redirectURI = client.RedirectURIs[0]
	}
	if !client.HasRedirectURI(redirectURI) {
		return nil, oauth2.InvalidRequest("redirect URI does not match the client registered one")
	}

	if owner == nil {
		return nil, oauth2.AccessDenied("the resource owner or authorization server denied the request")
	}

	scopes := oauth2.SplitScopes(r.FormValue("scope"))
	code, err := g.codes.CreateToken(redirectURI, owner, client, scopes)
	if err != nil {
		return nil, err
	}

	location, err := url.Parse(redirectURI)
	if err != nil {
		return nil, errors.Wrap(err, "AuthorizationCodeGrant.CreateAuthorizationResponse Parse")
	}
	query := location.Query()
	query.Set("code", code.Value)
	if state := r.FormValue("state"); state != "" {
		query.Set("state", state)
	}
	location.RawQuery = query.Encode()

	return oauth2.NewRedirectResponse(location.String()), nil
}

func (g *AuthorizationCodeGrant) CreateTokenResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	value := r.FormValue("code")
	if value == "" {
		return nil, oauth2.InvalidRequest("could not find the authorization code in the request")
	}

	code, err := g.codes.GetToken(value)
	if err != nil {
		return nil, err
	}
	// A code whose client is gone from storage is unusable.
	if code == nil || code.Client == nil || code.IsExpired() {
		return nil, oauth2.InvalidGrant("authorization code cannot be found or is expired")
	}

	if code.Client.ID != r.FormValue("client_id") {
		return nil, oauth2.InvalidRequest("authorization code's client does not match with the one that created the authorization code")
	}

	// The code remembers the owner who approved the authorization.
	if owner == nil {
		owner = code.Owner
	}

	access, err := g.access.CreateToken(owner, client, code.Scopes)
	if err != nil {
		return nil, err
	}

	var refresh *token.RefreshToken
	if g.server != nil && g.server.HasGrant(oauth2.GrantTypeRefreshToken) {
		refresh, err = g.refresh.CreateToken(owner, client, code.Scopes)
		if err != nil {
			return nil, err
		}
	}

	return tokenResponse(access, refresh)
}
