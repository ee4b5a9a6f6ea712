package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/clearauth/go-oauth2/clients"
	fakeclientrepo "github.com/clearauth/go-oauth2/clients/fakerepo"
	"github.com/clearauth/go-oauth2/internal/config"
	"github.com/clearauth/go-oauth2/oauth2"
	fakescoperepo "github.com/clearauth/go-oauth2/scopes/fakerepo"
	"github.com/clearauth/go-oauth2/server"
	tokenfakerepo "github.com/clearauth/go-oauth2/token/repofake"
	"github.com/stretchr/testify/require"
	xoauth2 "golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	testOwnerID      = "user-1"
	testUsername     = "demo"
	testUserPassword = "password123"
	testRedirectURI  = "http://client.example/cb"
)

type staticAuthenticator struct{}

func (staticAuthenticator) Validate(username, password string) (oauth2.TokenOwner, error) {
	if username == testUsername && password == testUserPassword {
		return oauth2.Owner(testOwnerID), nil
	}
	return nil, nil
}

// ownerFromHeader stands in for the host application's session
// machinery: the authenticated owner arrives as a header.
func ownerFromHeader(r *http.Request) oauth2.TokenOwner {
	if id := r.Header.Get("X-Owner-ID"); id != "" {
		return oauth2.Owner(id)
	}
	return nil
}

type testFixture struct {
	ts           *httptest.Server
	srv          *server.Server
	client       *clients.Client
	clientSecret string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")

	repos := server.Repos{
		Clients:            fakeclientrepo.NewFakeClientRepo(),
		Scopes:             fakescoperepo.NewFakeScopeRepo(),
		AccessTokens:       tokenfakerepo.NewFakeAccessTokenRepo(),
		RefreshTokens:      tokenfakerepo.NewFakeRefreshTokenRepo(),
		AuthorizationCodes: tokenfakerepo.NewFakeAuthorizationCodeRepo(),
	}

	srv, err := server.New(config.New(), repos, staticAuthenticator{}, ownerFromHeader)
	require.NoError(t, err)

	client, secret, err := srv.Clients().Create("e2e-app", []string{testRedirectURI}, []string{"profile", "read", "write"})
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testFixture{ts: ts, srv: srv, client: client, clientSecret: secret}
}

func (f *testFixture) oauthConfig(scopes ...string) *xoauth2.Config {
	return &xoauth2.Config{
		ClientID:     f.client.ID,
		ClientSecret: f.clientSecret,
		RedirectURL:  testRedirectURI,
		Scopes:       scopes,
		Endpoint: xoauth2.Endpoint{
			AuthURL:   f.ts.URL + server.RouteOAuth2Authorize,
			TokenURL:  f.ts.URL + server.RouteOAuth2Token,
			AuthStyle: xoauth2.AuthStyleInParams,
		},
	}
}

// authorize drives the authorization endpoint as the resource owner
// and returns the code from the redirect.
func (f *testFixture) authorize(t *testing.T, conf *xoauth2.Config, state string) string {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, conf.AuthCodeURL(state), nil)
	require.NoError(t, err)
	req.Header.Set("X-Owner-ID", testOwnerID)

	noRedirect := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := noRedirect.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(location.String(), testRedirectURI))
	require.Equal(t, state, location.Query().Get("state"))

	code := location.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}

func (f *testFixture) getProfile(t *testing.T, conf *xoauth2.Config, tok *xoauth2.Token) *http.Response {
	t.Helper()

	resp, err := conf.Client(context.Background(), tok).Get(f.ts.URL + server.RouteProfile)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAuthorizationCodeFlow(t *testing.T) {
	f := setupTestFixture(t)
	conf := f.oauthConfig("profile", "read")

	code := f.authorize(t, conf, "state-xyz")

	tok, err := conf.Exchange(context.Background(), code)
	require.NoError(t, err)
	require.True(t, tok.Valid())
	require.Equal(t, "Bearer", tok.TokenType)
	require.NotEmpty(t, tok.RefreshToken)

	resp := f.getProfile(t, conf, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile struct {
		OwnerID string   `json:"owner_id"`
		Scopes  []string `json:"scopes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	require.Equal(t, testOwnerID, profile.OwnerID)
	require.ElementsMatch(t, []string{"profile", "read"}, profile.Scopes)
}

func TestAuthorizationCodeFlow_BadCode(t *testing.T) {
	f := setupTestFixture(t)
	conf := f.oauthConfig("read")

	_, err := conf.Exchange(context.Background(), "0000000000000000000000000000000000000000")
	require.Error(t, err)

	var retrieveErr *xoauth2.RetrieveError
	require.ErrorAs(t, err, &retrieveErr)
	require.Equal(t, http.StatusBadRequest, retrieveErr.Response.StatusCode)
}

func TestPasswordFlow(t *testing.T) {
	f := setupTestFixture(t)
	conf := f.oauthConfig("read")

	tok, err := conf.PasswordCredentialsToken(context.Background(), testUsername, testUserPassword)
	require.NoError(t, err)
	require.True(t, tok.Valid())

	_, err = conf.PasswordCredentialsToken(context.Background(), testUsername, "wrong")
	require.Error(t, err)
}

func TestClientCredentialsFlow(t *testing.T) {
	f := setupTestFixture(t)

	conf := &clientcredentials.Config{
		ClientID:     f.client.ID,
		ClientSecret: f.clientSecret,
		TokenURL:     f.ts.URL + server.RouteOAuth2Token,
		Scopes:       []string{"read"},
		AuthStyle:    xoauth2.AuthStyleInParams,
	}

	tok, err := conf.Token(context.Background())
	require.NoError(t, err)
	require.True(t, tok.Valid())
	require.Empty(t, tok.RefreshToken)
}

func TestRefreshFlow(t *testing.T) {
	f := setupTestFixture(t)
	conf := f.oauthConfig("profile", "read")

	code := f.authorize(t, conf, "s")
	tok, err := conf.Exchange(context.Background(), code)
	require.NoError(t, err)

	// Force the token source to refresh by presenting an expired copy.
	stale := &xoauth2.Token{RefreshToken: tok.RefreshToken}
	refreshed, err := conf.TokenSource(context.Background(), stale).Token()
	require.NoError(t, err)
	require.True(t, refreshed.Valid())
	require.NotEqual(t, tok.AccessToken, refreshed.AccessToken)
}

func TestRevocation(t *testing.T) {
	f := setupTestFixture(t)
	conf := f.oauthConfig("profile", "read")

	code := f.authorize(t, conf, "s")
	tok, err := conf.Exchange(context.Background(), code)
	require.NoError(t, err)

	form := url.Values{}
	form.Set("token", tok.AccessToken)
	form.Set("token_type_hint", "access_token")
	form.Set("client_id", f.client.ID)
	form.Set("client_secret", f.clientSecret)
	resp, err := http.PostForm(f.ts.URL+server.RouteOAuth2Revoke, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	profileResp := f.getProfile(t, conf, tok)
	require.Equal(t, http.StatusUnauthorized, profileResp.StatusCode)
}

func TestProtectedResource_NoToken(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := http.Get(f.ts.URL + server.RouteProfile)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_token")

	var body oauth2.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, oauth2.ErrInvalidToken, body.Error)
}
