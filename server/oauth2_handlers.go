package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Authorize serves the authorization endpoint. The resource owner is
// resolved by the host-supplied callback; a nil owner denies the
// request.
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := s.resolveOwner(r)
		resp := s.authServer.HandleAuthorizationRequest(r, owner)
		writeResponse(w, resp)
	}
}

// Token serves the token endpoint for every registered grant.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := s.authServer.HandleTokenRequest(r, nil)
		writeResponse(w, resp)
	}
}

// Revoke serves the RFC 7009 revocation endpoint.
func (s *Server) Revoke() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := s.authServer.HandleTokenRevocationRequest(r)
		writeResponse(w, resp)
	}
}

// Profile returns the owner and scopes bound to the presented access
// token.
func (s *Server) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken := AccessTokenFromContext(r.Context())
		if accessToken == nil {
			http.Error(w, "no token in context", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		err := json.NewEncoder(w).Encode(map[string]any{
			"owner_id": accessToken.OwnerID(),
			"scopes":   accessToken.Scopes,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to encode profile response")
		}
	}
}
