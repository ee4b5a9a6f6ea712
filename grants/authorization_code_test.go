package grants_test

import (
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/clearauth/go-oauth2/grants"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
	"github.com/stretchr/testify/require"
)

var codeValue = regexp.MustCompile(`^[0-9a-f]{40}$`)

func newAuthorizationCodeGrant(f *testFixture, registeredGrants ...string) *grants.AuthorizationCodeGrant {
	grant := grants.NewAuthorizationCodeGrant(f.codes, f.access, f.refresh)
	grantTypes := make(map[string]bool)
	for _, g := range registeredGrants {
		grantTypes[g] = true
	}
	grant.SetAuthorizationServer(&stubServer{grantTypes: grantTypes})
	return grant
}

func TestAuthorizationCodeGrant_Authorize(t *testing.T) {
	f := setupTestFixture(t, oauth2.DefaultConfiguration())
	grant := newAuthorizationCodeGrant(f)

	resp, err := grant.CreateAuthorizationResponse(queryRequest(t, map[string]string{
		"response_type": "code",
		"client_id":     f.client.ID,
		"redirect_uri":  "http://app/cb",
		"scope":         "read",
		"state":         "xyz",
	}), f.client, oauth2.Owner(testOwnerID))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "http://app/cb", location.Scheme+"://"+location.Host+location.Path)
	require.Equal(t, "xyz", location.Query().Get("state"))
	require.Regexp(t, codeValue, location.Query().Get("code"))

	code, err := f.codes.GetToken(location.Query().Get("code"))
	require.NoError(t, err)
	require.NotNil(t, code)
	require.Equal(t, testOwnerID, code.OwnerID())
	require.Equal(t, []string{"read"}, code.Scopes)
	require.Equal(t, "http://app/cb", code.RedirectURI)
}

func TestAuthorizationCodeGrant_Authorize_NoState(t *testing.T) {
	f := setupTestFixture(t, oauth2.DefaultConfiguration())
	grant := newAuthorizationCodeGrant(f)

	resp, err := grant.CreateAuthorizationResponse(queryRequest(t, map[string]string{
		"response_type": "code",
		"client_id":     f.client.ID,
		"redirect_uri":  "http://app/cb",
	}), f.client, oauth2.Owner(testOwnerID))
	require.NoError(t, err)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.False(t, location.Query().Has("state"))
}

func TestAuthorizationCodeGrant_Authorize_DefaultRedirectURI(t *testing.T) {
	f := setupTestFixture(t, oauth2.DefaultConfiguration())
	grant := newAuthorizationCodeGrant(f)

	resp, err := grant.CreateAuthorizationResponse(queryRequest(t, map[string]string{
		"response_type": "code",
		"client_id":     f.client.ID,
	}), f.client, oauth2.Owner(testOwnerID))
	require.NoError(t, err)

	// No redirect_uri parameter falls back to the first registered URI.
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "http://app/cb", location.Scheme+"://"+location.Host+location.Path)
}

func TestAuthorizationCodeGrant_Authorize_Errors(t *testing.T) {
	f := setupTestFixture(t, oauth2.DefaultConfiguration())
	grant := newAuthorizationCodeGrant(f)

	t.Run("wrong response type", func(t *testing.T) {
		_, err := grant.CreateAuthorizationResponse(queryRequest(t, map[string]string{
			"response_type": "token",
			"client_id":     f.client.ID,
		}), f.client, oauth2.Owner(testOwnerID))
		requireOAuthError(t, err, oauth2.ErrInvalidRequest)
	})

	t.Run("unregistered redirect URI", func(t *testing.T) {
		_, err := grant.CreateAuthorizationResponse(queryRequest(t, map[string]string{
			"response_type": "code",
			"client_id":     f.client.ID,
			"redirect_uri":  "http://evil.example/cb",
		}), f.client, oauth2.Owner(testOwnerID))
		oauthErr := requireOAuthError(t, err, oauth2.ErrInvalidRequest)
		require.Contains(t, oauthErr.Description, "redirect URI")
	})

	t.Run("nil owner is denied", func(t *testing.T) {
		_, err := grant.CreateAuthorizationResponse(queryRequest(t, map[string]string{
			"response_type": "code",
			"client_id":     f.client.ID,
			"redirect_uri":  "http://app/cb",
		}), f.client, nil)
		requireOAuthError(t, err, oauth2.ErrAccessDenied)
	})
}

func TestAuthorizationCodeGrant_Token(t *testing.T) {
	f := setupTestFixture(t, oauth2.DefaultConfiguration())
	grant := newAuthorizationCodeGrant(f, oauth2.GrantTypeRefreshToken)

	code, err := f.codes.CreateToken("http://app/cb", oauth2.Owner(testOwnerID), f.client, []string{"read", "write"})
	require.NoError(t, err)

	resp, err := grant.CreateTokenResponse(formRequest(t, map[string]string{
		"grant_type": "authorization_code",
		"code":       code.Value,
		"client_id":  f.client.ID,
	}), f.client, nil)
	require.NoError(t, err)

	body := parseTokenResponse(t, resp)
	require.Regexp(t, codeValue, body.AccessToken)
	require.Equal(t, "Bearer", body.TokenType)
	require.Equal(t, "read write", body.Scope)
	require.NotNil(t, body.RefreshToken)
	require.NotNil(t, body.OwnerID)
	require.Equal(t, testOwnerID, *body.OwnerID)

	// The code's owner carries over to the issued tokens.
	access, err := f.access.GetToken(body.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, access)
	require.Equal(t, testOwnerID, access.OwnerID())
}

func TestAuthorizationCodeGrant_Token_NoRefreshGrantRegistered(t *testing.T) {
	f := setupTestFixture(t, oauth2.DefaultConfiguration())
	grant := newAuthorizationCodeGrant(f)

	code, err := f.codes.CreateToken("http://app/cb", oauth2.Owner(testOwnerID), f.client, []string{"read"})
	require.NoError(t, err)

	resp, err := grant.CreateTokenResponse(formRequest(t, map[string]string{
		"grant_type": "authorization_code",
		"code":       code.Value,
		"client_id":  f.client.ID,
	}), f.client, nil)
	require.NoError(t, err)

	body := parseTokenResponse(t, resp)
	require.Nil(t, body.RefreshToken)
}

func TestAuthorizationCodeGrant_Token_Errors(t *testing.T) {
	f := setupTestFixture(t, oauth2.DefaultConfiguration())
	grant := newAuthorizationCodeGrant(f)

	t.Run("missing code", func(t *testing.T) {
		_, err := grant.CreateTokenResponse(formRequest(t, map[string]string{
			"grant_type": "authorization_code",
			"client_id":  f.client.ID,
		}), f.client, nil)
		requireOAuthError(t, err, oauth2.ErrInvalidRequest)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := grant.CreateTokenResponse(formRequest(t, map[string]string{
			"grant_type": "authorization_code",
			"code":       "0000000000000000000000000000000000000000",
			"client_id":  f.client.ID,
		}), f.client, nil)
		requireOAuthError(t, err, oauth2.ErrInvalidGrant)
	})

	t.Run("expired code", func(t *testing.T) {
		config := oauth2.DefaultConfiguration()
		config.AuthorizationCodeTTL = -time.Second
		expired := setupTestFixture(t, config)
		expiredGrant := newAuthorizationCodeGrant(expired)

		code, err := expired.codes.CreateToken("http://app/cb", oauth2.Owner(testOwnerID), expired.client, []string{"read"})
		require.NoError(t, err)

		_, err = expiredGrant.CreateTokenResponse(formRequest(t, map[string]string{
			"grant_type": "authorization_code",
			"code":       code.Value,
			"client_id":  expired.client.ID,
		}), expired.client, nil)
		requireOAuthError(t, err, oauth2.ErrInvalidGrant)
	})

	t.Run("code whose client is gone from storage", func(t *testing.T) {
		code, err := token.NewAuthorizationCode(2*time.Minute, "http://app/cb", oauth2.Owner(testOwnerID), nil, []string{"read"})
		require.NoError(t, err)
		require.NoError(t, f.codeRepo.Save(code))

		_, err = grant.CreateTokenResponse(formRequest(t, map[string]string{
			"grant_type": "authorization_code",
			"code":       code.Value,
			"client_id":  f.client.ID,
		}), f.client, nil)
		requireOAuthError(t, err, oauth2.ErrInvalidGrant)
	})

	t.Run("client id mismatch", func(t *testing.T) {
		code, err := f.codes.CreateToken("http://app/cb", oauth2.Owner(testOwnerID), f.client, []string{"read"})
		require.NoError(t, err)

		_, err = grant.CreateTokenResponse(formRequest(t, map[string]string{
			"grant_type": "authorization_code",
			"code":       code.Value,
			"client_id":  "some-other-client",
		}), f.client, nil)
		requireOAuthError(t, err, oauth2.ErrInvalidRequest)
	})
}
