package grants_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/scopes"
	fakescoperepo "github.com/clearauth/go-oauth2/scopes/fakerepo"
	"github.com/clearauth/go-oauth2/token"
	tokenfakerepo "github.com/clearauth/go-oauth2/token/repofake"
	"github.com/stretchr/testify/require"
)

const testOwnerID = "user-1"

// stubServer stands in for the authorization server when testing
// grants in isolation.
type stubServer struct {
	grantTypes map[string]bool
}

func (s *stubServer) HasGrant(grantType string) bool { return s.grantTypes[grantType] }

func (s *stubServer) HasResponseType(responseType string) bool { return false }

type testFixture struct {
	accessRepo  *tokenfakerepo.FakeAccessTokenRepo
	refreshRepo *tokenfakerepo.FakeRefreshTokenRepo
	codeRepo    *tokenfakerepo.FakeAuthorizationCodeRepo
	access      *token.AccessTokenService
	refresh     *token.RefreshTokenService
	codes       *token.AuthorizationCodeService
	config      oauth2.Configuration
	client      *clients.Client
}

func setupTestFixture(t *testing.T, config oauth2.Configuration) *testFixture {
	t.Helper()

	scopeService := scopes.NewService(fakescoperepo.NewFakeScopeRepo())
	for _, s := range []struct {
		name      string
		isDefault bool
	}{
		{"profile", true},
		{"read", true},
		{"write", false},
	} {
		_, err := scopeService.Create(s.name, "", s.isDefault)
		require.NoError(t, err)
	}

	client, err := clients.New("test-app", []string{"http://app/cb", "http://app/cb2"}, []string{"profile", "read", "write"})
	require.NoError(t, err)

	ar := tokenfakerepo.NewFakeAccessTokenRepo()
	rr := tokenfakerepo.NewFakeRefreshTokenRepo()
	cr := tokenfakerepo.NewFakeAuthorizationCodeRepo()

	return &testFixture{
		accessRepo:  ar,
		refreshRepo: rr,
		codeRepo:    cr,
		access:      token.NewAccessTokenService(ar, scopeService, config),
		refresh:     token.NewRefreshTokenService(rr, scopeService, config),
		codes:       token.NewAuthorizationCodeService(cr, scopeService, config),
		config:      config,
		client:      client,
	}
}

// formRequest builds a POST with url-encoded form parameters, the shape
// the token endpoint receives.
func formRequest(t *testing.T, params map[string]string) *http.Request {
	t.Helper()

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	r := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// queryRequest builds a GET with query parameters, the shape the
// authorization endpoint receives.
func queryRequest(t *testing.T, params map[string]string) *http.Request {
	t.Helper()

	query := url.Values{}
	for key, value := range params {
		query.Set(key, value)
	}
	return httptest.NewRequest(http.MethodGet, "/oauth2/authorize?"+query.Encode(), nil)
}

func parseTokenResponse(t *testing.T, resp *oauth2.Response) oauth2.TokenResponse {
	t.Helper()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body oauth2.TokenResponse
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	return body
}

func requireOAuthError(t *testing.T, err error, code string) *oauth2.Error {
	t.Helper()

	require.Error(t, err)
	oauthErr, ok := err.(*oauth2.Error)
	require.True(t, ok, "expected a protocol error, got %v", err)
	require.Equal(t, code, oauthErr.Code)
	return oauthErr
}
