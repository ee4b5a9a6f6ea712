package auth

import (
	"net/http"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/grants"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
	"github.com/pkg/errors"
)

var _ grants.AuthorizationServer = (*AuthorizationServer)(nil)

// AuthorizationServer dispatches authorization, token and revocation
// requests to the registered grants and maps protocol errors to the
// wire format. It holds no per-request state; the grant and response
// type registries are built once at construction.
type AuthorizationServer struct {
	clients       *clients.Service
	access        *token.AccessTokenService
	refresh       *token.RefreshTokenService
	grants        map[string]grants.Grant
	responseTypes map[string]grants.Grant
}

// NewAuthorizationServer registers the given grants. Grants that ask
// for a server handle get one injected here.
func NewAuthorizationServer(clientService *clients.Service, access *token.AccessTokenService, refresh *token.RefreshTokenService, grantList ...grants.Grant) *AuthorizationServer {
	server := &AuthorizationServer{
		clients:       clientService,
		access:        access,
		refresh:       refresh,
		grants:        make(map[string]grants.Grant),
		responseTypes: make(map[string]grants.Grant),
	}
	for _, grant := range grantList {
		if aware, ok := grant.(grants.AuthorizationServerAware); ok {
			aware.SetAuthorizationServer(server)
		}
		server.grants[grant.Type()] = grant
		if responseType := grant.ResponseType(); responseType != "" {
			server.responseTypes[responseType] = grant
		}
	}
	return server
}

// HasGrant reports whether a grant type is registered.
func (s *AuthorizationServer) HasGrant(grantType string) bool {
	_, ok := s.grants[grantType]
	return ok
}

// HasResponseType reports whether a response type is registered.
func (s *AuthorizationServer) HasResponseType(responseType string) bool {
	_, ok := s.responseTypes[responseType]
	return ok
}

// HandleAuthorizationRequest serves the authorization endpoint. The
// owner is the resource owner who approved the request; passing nil
// denies it. The returned response always carries a JSON content type.
func (s *AuthorizationServer) HandleAuthorizationRequest(r *http.Request, owner oauth2.TokenOwner) *oauth2.Response {
	resp, err := s.authorizationResponse(r, owner)
	if err != nil {
		resp = s.errorResponse(err)
	}
	if resp.Header.Get("Content-Type") == "" {
		resp.Header.Set("Content-Type", "application/json")
	}
	return resp
}

func (s *AuthorizationServer) authorizationResponse(r *http.Request, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	responseType := r.FormValue("response_type")
	if responseType == "" {
		return nil, oauth2.InvalidRequest("no response type was found in the request")
	}

	grant, ok := s.responseTypes[responseType]
	if !ok {
		return nil, oauth2.UnsupportedResponseType(`response type "` + responseType + `" is not supported by this server`)
	}

	client, err := s.clientFromRequest(r, grant.AllowPublicClients())
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, oauth2.InvalidClient("no client could be authenticated")
	}

	return grant.CreateAuthorizationResponse(r, client, owner)
}

// HandleTokenRequest serves the token endpoint. Success and protocol
// error responses both carry the RFC 6749 section 5.1 cache headers.
func (s *AuthorizationServer) HandleTokenRequest(r *http.Request, owner oauth2.TokenOwner) *oauth2.Response {
	resp, err := s.tokenResponse(r, owner)
	if err != nil {
		resp = s.errorResponse(err)
	}
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set("Cache-Control", "no-store")
	resp.Header.Set("Pragma", "no-cache")
	return resp
}

func (s *AuthorizationServer) tokenResponse(r *http.Request, owner oauth2.TokenOwner) (*oauth2.Response, error) {
	grantType := r.FormValue("grant_type")
	if grantType == "" {
		return nil, oauth2.InvalidRequest("no grant type was found in the request")
	}

	grant, ok := s.grants[grantType]
	if !ok {
		return nil, oauth2.UnsupportedGrantType(`grant type "` + grantType + `" is not supported by this server`)
	}

	client, err := s.clientFromRequest(r, grant.AllowPublicClients())
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, oauth2.InvalidClient("no client could be authenticated")
	}

	return grant.CreateTokenResponse(r, client, owner)
}

// HandleTokenRevocationRequest serves the RFC 7009 revocation endpoint.
// Unknown tokens revoke successfully (200, empty body) so callers
// cannot probe for token existence. A storage failure during deletion
// yields a bare 503.
func (s *AuthorizationServer) HandleTokenRevocationRequest(r *http.Request) *oauth2.Response {
	resp, err := s.revocationResponse(r)
	if err != nil {
		return s.errorResponse(err)
	}
	return resp
}

func (s *AuthorizationServer) revocationResponse(r *http.Request) (*oauth2.Response, error) {
	value := r.FormValue("token")
	hint := r.FormValue("token_type_hint")
	if value == "" || hint == "" {
		return nil, oauth2.InvalidRequest(`cannot revoke a token as the "token" and/or "token_type_hint" parameters are missing`)
	}
	if hint != oauth2.TokenHintAccessToken && hint != oauth2.TokenHintRefreshToken {
		return nil, oauth2.UnsupportedTokenType(`authorization server does not support revocation of token of type "` + hint + `"`)
	}

	var tok *token.Token
	if hint == oauth2.TokenHintAccessToken {
		access, err := s.access.GetToken(value)
		if err != nil {
			return nil, err
		}
		if access != nil {
			tok = &access.Token
		}
	} else {
		refresh, err := s.refresh.GetToken(value)
		if err != nil {
			return nil, err
		}
		if refresh != nil {
			tok = &refresh.Token
		}
	}

	if tok == nil {
		return oauth2.NewResponse(http.StatusOK), nil
	}

	// Tokens issued to a confidential client can only be revoked by
	// that client.
	if tok.Client != nil && !tok.Client.IsPublic() {
		requester, err := s.clientFromRequest(r, false)
		if err != nil {
			return nil, err
		}
		if requester == nil || requester.ID != tok.Client.ID {
			return nil, oauth2.InvalidClient("token was issued for another client and cannot be revoked")
		}
	}

	var deleteErr error
	if hint == oauth2.TokenHintAccessToken {
		deleteErr = s.access.Delete(tok.Value)
	} else {
		deleteErr = s.refresh.Delete(tok.Value)
	}
	if deleteErr != nil {
		return oauth2.NewResponse(http.StatusServiceUnavailable), nil
	}
	return oauth2.NewResponse(http.StatusOK), nil
}

// errorResponse maps an error to the 400 JSON protocol body. Anything
// that is not a protocol error is reported as an opaque server_error so
// storage details never leak to clients.
func (s *AuthorizationServer) errorResponse(err error) *oauth2.Response {
	var oauthErr *oauth2.Error
	if !errors.As(err, &oauthErr) {
		oauthErr = oauth2.ServerError("an unexpected error occurred")
	}
	resp, jsonErr := oauth2.NewJSONResponse(http.StatusBadRequest, oauthErr.Response())
	if jsonErr != nil {
		return oauth2.NewResponse(http.StatusInternalServerError)
	}
	return resp
}
