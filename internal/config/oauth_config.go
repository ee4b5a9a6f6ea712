package config

import (
	"time"

	"github.com/clearauth/go-oauth2/oauth2"
)

type OAuthConfig interface {
	GetTokenPolicy() oauth2.Configuration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetTokenPolicy builds the token lifetime and rotation policy from the
// environment, falling back to the library defaults.
func (OAuth) GetTokenPolicy() oauth2.Configuration {
	policy := oauth2.DefaultConfiguration()
	policy.AuthorizationCodeTTL = durationEnv("AUTHORIZATION_CODE_TTL", policy.AuthorizationCodeTTL)
	policy.AccessTokenTTL = durationEnv("ACCESS_TOKEN_TTL", policy.AccessTokenTTL)
	policy.RefreshTokenTTL = durationEnv("REFRESH_TOKEN_TTL", policy.RefreshTokenTTL)
	policy.RotateRefreshTokens = boolEnv("ROTATE_REFRESH_TOKENS", policy.RotateRefreshTokens)
	policy.RevokeRotatedRefreshTokens = boolEnv("REVOKE_ROTATED_REFRESH_TOKENS", policy.RevokeRotatedRefreshTokens)
	return policy
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func boolEnv(envVar string, defaultValue bool) bool {
	switch GetEnv(envVar, "") {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
