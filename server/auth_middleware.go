package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyAccessToken stores the validated access token.
const ContextKeyAccessToken ContextKey = "access_token"

// AccessTokenFromContext returns the access token stored by
// RequireAccessToken, or nil.
func AccessTokenFromContext(ctx context.Context) *token.AccessToken {
	accessToken, _ := ctx.Value(ContextKeyAccessToken).(*token.AccessToken)
	return accessToken
}

// RequireAccessToken validates the request's bearer token against the
// resource server and rejects with a 401 invalid_token body when the
// token is missing, expired or lacking the required scopes.
func (s *Server) RequireAccessToken(requiredScopes ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			accessToken, err := s.resourceServer.GetAccessToken(r, requiredScopes)
			if err != nil {
				writeUnauthorized(w, err)
				return
			}
			if accessToken == nil {
				writeUnauthorized(w, oauth2.InvalidToken("no access token found in the request"))
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAccessToken, accessToken)
			next(w, r.WithContext(ctx))
		}
	}
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	oauthErr, ok := err.(*oauth2.Error)
	if !ok {
		log.Error().Err(err).Msg("access token lookup failed")
		oauthErr = oauth2.ServerError("an unexpected error occurred")
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("WWW-Authenticate", `Bearer error="`+oauthErr.Code+`"`)
	w.WriteHeader(http.StatusUnauthorized)
	if encodeErr := json.NewEncoder(w).Encode(oauthErr.Response()); encodeErr != nil {
		log.Error().Err(encodeErr).Msg("failed to encode unauthorized response")
	}
}
