package oauth2

import "time"

// Configuration holds the token lifetime and refresh rotation policy
// shared by the grant handlers and token services.
//
// A TTL of zero means tokens of that kind never expire. A negative TTL
// produces tokens that are already expired when issued, which is only
// useful in tests.
type Configuration struct {
	AuthorizationCodeTTL time.Duration
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration

	// RotateRefreshTokens issues a fresh refresh token on every
	// refresh_token grant instead of echoing back the presented one.
	RotateRefreshTokens bool

	// RevokeRotatedRefreshTokens deletes the presented refresh token
	// before issuing its replacement. Only consulted when rotation is on.
	RevokeRotatedRefreshTokens bool
}

// DefaultConfiguration returns the stock policy: two minute codes, one
// hour access tokens, one day refresh tokens, no rotation.
func DefaultConfiguration() Configuration {
	return Configuration{
		AuthorizationCodeTTL:       2 * time.Minute,
		AccessTokenTTL:             time.Hour,
		RefreshTokenTTL:            24 * time.Hour,
		RotateRefreshTokens:        false,
		RevokeRotatedRefreshTokens: true,
	}
}
