package grants

import (
	"net/http"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
)

var _ Grant = (*ClientCredentialsGrant)(nil)

// ClientCredentialsGrant issues access tokens directly to a
// confidential client with no resource owner involved. No refresh
// token is issued; the client can simply authenticate again.
type ClientCredentialsGrant struct {
	access *token.AccessTokenService
}

func NewClientCredentialsGrant(access *token.AccessTokenService) *ClientCredentialsGrant {
	return &ClientCredentialsGrant{access: access}
}

func (g *ClientCredentialsGrant) Type() string         { return oauth2.GrantTypeClientCredentials }
func (g *ClientCredentialsGrant) ResponseType() string { return "" }

// AllowPublicClients is false: this grant authenticates the client
// alone, so a secret is mandatory.
func (g *ClientCredentialsGrant) AllowPublicClients() bool { return false }

func (g *ClientCredentialsGrant) CreateAuthorizationResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	return nil, oauth2.InvalidRequest("client credentials grant does not support authorization")
}

func (g *ClientCredentialsGrant) CreateTokenResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	scopes := oauth2.SplitScopes(r.FormValue("scope"))
	access, err := g.access.CreateToken(nil, client, scopes)
	if err != nil {
		return nil, err
	}
	return tokenResponse(access, nil)
}
