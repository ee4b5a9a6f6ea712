package grants

import (
	"net/http"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
)

var _ Grant = (*RefreshTokenGrant)(nil)

// RefreshTokenGrant exchanges a refresh token for a new access token.
// The new token's scopes may narrow the refresh token's scopes but
// never widen them. Rotation policy comes from the configuration.
type RefreshTokenGrant struct {
	access  *token.AccessTokenService
	refresh *token.RefreshTokenService
	config  oauth2.Configuration
}

func NewRefreshTokenGrant(access *token.AccessTokenService, refresh *token.RefreshTokenService, config oauth2.Configuration) *RefreshTokenGrant {
	return &RefreshTokenGrant{access: access, refresh: refresh, config: config}
}

func (g *RefreshTokenGrant) Type() string         { return oauth2.GrantTypeRefreshToken }
func (g *RefreshTokenGrant) ResponseType() string { return "" }

func (g *RefreshTokenGrant) AllowPublicClients() bool { return true }

func (g *RefreshTokenGrant) CreateAuthorizationResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	return nil, oauth2.InvalidRequest("refresh token grant does not support authorization")
}

func (g *RefreshTokenGrant) CreateTokenResponse(r *http.Request, client *clients.Client, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	value := r.FormValue("refresh_token")
	if value == "" {
		return nil, oauth2.InvalidRequest("refresh token is missing in the request")
	}

	refresh, err := g.refresh.GetToken(value)
	if err != nil {
		return nil, err
	}
	if refresh == nil || refresh.IsExpired() {
		return nil, oauth2.InvalidGrant("refresh token cannot be found or is expired")
	}

	// No scope parameter inherits the refresh token's scopes.
	var scopes []string
	if scope := r.FormValue("scope"); scope != "" {
		scopes = oauth2.SplitScopes(scope)
	} else {
		scopes = refresh.Scopes
	}
	if !refresh.MatchScopes(scopes) {
		return nil, oauth2.InvalidScope("the scope of the new access token exceeds the scope(s) of the refresh token")
	}

	refreshOwner := refresh.Owner
	access, err := g.access.CreateToken(refreshOwner, client, scopes)
	if err != nil {
		return nil, err
	}

	if g.config.RotateRefreshTokens {
		if g.config.RevokeRotatedRefreshTokens {
			if err := g.refresh.Delete(refresh.Value); err != nil {
				return nil, err
			}
		}
		refresh, err = g.refresh.CreateToken(refreshOwner, client, scopes)
		if err != nil {
			return nil, err
		}
	}

	return tokenResponse(access, refresh)
}
