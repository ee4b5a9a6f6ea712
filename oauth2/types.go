package oauth2

import "strings"

// Grant type identifiers accepted at the token endpoint, as registered
// in RFC 6749.
const (
	// GrantTypeAuthorizationCode exchanges an authorization code for tokens.
	// Token request includes: code, redirect_uri, client_id
	// Returns: access_token, plus refresh_token when the refresh grant is enabled.
	GrantTypeAuthorizationCode = "authorization_code"

	// GrantTypePassword exchanges resource owner credentials for tokens.
	// Token request includes: username, password, scope (optional)
	// Returns: access_token, plus refresh_token when the refresh grant is enabled.
	GrantTypePassword = "password"

	// GrantTypeClientCredentials allows machine-to-machine authentication.
	// Token request includes: client authentication, scope (optional)
	// Returns: access_token only (no owner, no refresh_token).
	GrantTypeClientCredentials = "client_credentials"

	// GrantTypeRefreshToken exchanges a refresh token for a new access token.
	// Token request includes: refresh_token, scope (optional, narrowing only)
	// Returns: access_token, plus a rotated refresh_token when rotation is on.
	GrantTypeRefreshToken = "refresh_token"
)

// ResponseTypeCode is the only response type served by the authorization
// endpoint. Implicit and hybrid response types are not supported.
const ResponseTypeCode = "code"

// TokenTypeBearer is the token_type reported in every token response.
const TokenTypeBearer = "Bearer"

// Token type hints accepted by the revocation endpoint (RFC 7009).
const (
	TokenHintAccessToken  = "access_token"
	TokenHintRefreshToken = "refresh_token"
)

// SplitScopes splits a space-delimited scope parameter into individual
// scope names, dropping empty entries.
func SplitScopes(scope string) []string {
	return strings.Fields(scope)
}
