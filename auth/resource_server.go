package auth

import (
	"net/http"
	"strings"

	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
)

// ResourceServer validates bearer tokens presented to protected
// resources. It shares the access token service with the authorization
// server but is otherwise independent of the grant machinery.
type ResourceServer struct {
	access *token.AccessTokenService
}

func NewResourceServer(access *token.AccessTokenService) *ResourceServer {
	return &ResourceServer{access: access}
}

// GetAccessToken extracts and validates the bearer token on the
// request. It returns (nil, nil) when the request carries no token at
// all. A token that is unknown, expired or lacking any of the required
// scopes yields an invalid_token error, which the caller renders as a
// 401 (RFC 6750); it is deliberately not one of the token endpoint's
// error codes.
func (s *ResourceServer) GetAccessToken(r *http.Request, requiredScopes []string) (*token.AccessToken, error) {
	value := bearerToken(r)
	if value == "" {
		return nil, nil
	}

	access, err := s.access.GetToken(value)
	if err != nil {
		return nil, err
	}
	if access == nil || !access.IsValid(requiredScopes) {
		return nil, oauth2.InvalidToken("access token has expired or has been deleted")
	}
	return access, nil
}

// bearerToken reads the token from the Authorization header, falling
// back to the access_token query parameter.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.Fields(header)
		if len(parts) < 2 {
			return ""
		}
		return parts[len(parts)-1]
	}
	return r.URL.Query().Get("access_token")
}
