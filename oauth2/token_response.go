package oauth2

// TokenResponse is the success payload of the token endpoint, as
// defined in RFC 6749 section 5.1.
type TokenResponse struct {
	// AccessToken is the opaque bearer token used to access protected
	// resources. Usage: "Authorization: Bearer <access_token>".
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the remaining lifetime of the access token in
	// seconds. Zero means the token never expires.
	ExpiresIn int64 `json:"expires_in"`

	// RefreshToken is issued alongside the access token when the
	// refresh_token grant is enabled on the server. Absent otherwise.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// Scope is the space-delimited list of scopes granted to the token.
	Scope string `json:"scope"`

	// OwnerID identifies the resource owner the token was issued for.
	// Absent for tokens with no owner (client_credentials).
	OwnerID *string `json:"owner_id,omitempty"`
}
