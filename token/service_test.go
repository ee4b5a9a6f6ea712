package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/scopes"
	fakescoperepo "github.com/clearauth/go-oauth2/scopes/fakerepo"
	"github.com/clearauth/go-oauth2/token"
	tokenfakerepo "github.com/clearauth/go-oauth2/token/repofake"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	accessRepo  *tokenfakerepo.FakeAccessTokenRepo
	refreshRepo *tokenfakerepo.FakeRefreshTokenRepo
	codeRepo    *tokenfakerepo.FakeAuthorizationCodeRepo
	access      *token.AccessTokenService
	refresh     *token.RefreshTokenService
	codes       *token.AuthorizationCodeService
	client      *clients.Client
}

func setupTestFixture(t *testing.T) *testFixture {
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

	client, err := clients.New("test-app", []string{"http://localhost:3000/callback"}, []string{"profile", "read", "write"})
	require.NoError(t, err)

	config := oauth2.DefaultConfiguration()
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
		client:      client,
	}
}

func TestAccessTokenService_CreateToken(t *testing.T) {
	f := setupTestFixture(t)

	tok, err := f.access.CreateToken(oauth2.Owner("user-1"), f.client, []string{"read", "write"})
	require.NoError(t, err)
	require.Regexp(t, hexValue, tok.Value)
	require.Equal(t, []string{"read", "write"}, tok.Scopes)

	stored, err := f.access.GetToken(tok.Value)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "user-1", stored.OwnerID())
}

func TestAccessTokenService_CreateToken_DefaultScopes(t *testing.T) {
	f := setupTestFixture(t)

	tok, err := f.access.CreateToken(oauth2.Owner("user-1"), f.client, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"profile", "read"}, tok.Scopes)
}

func TestAccessTokenService_CreateToken_UnknownScope(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.access.CreateToken(oauth2.Owner("user-1"), f.client, []string{"read", "admin"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "do not exist")
	require.Contains(t, err.Error(), "admin")
}

func TestAccessTokenService_CreateToken_UnassignedScope(t *testing.T) {
	f := setupTestFixture(t)

	narrow, err := clients.New("narrow-app", nil, []string{"read"})
	require.NoError(t, err)

	_, err = f.access.CreateToken(oauth2.Owner("user-1"), narrow, []string{"read", "write"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not assigned to the client")
	require.Contains(t, err.Error(), "write")
}

func TestAccessTokenService_CreateToken_NoClient(t *testing.T) {
	f := setupTestFixture(t)

	tok, err := f.access.CreateToken(oauth2.Owner("user-1"), nil, []string{"read"})
	require.NoError(t, err)
	require.Nil(t, tok.Client)
	require.Equal(t, []string{"read"}, tok.Scopes)

	// Scope existence is still checked when no client is given.
	_, err = f.access.CreateToken(oauth2.Owner("user-1"), nil, []string{"admin"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "do not exist")
}

func TestAccessTokenService_CreateToken_RetriesOnCollision(t *testing.T) {
	f := setupTestFixture(t)
	f.accessRepo.CollideNext = 2

	tok, err := f.access.CreateToken(oauth2.Owner("user-1"), f.client, []string{"read"})
	require.NoError(t, err)
	require.Regexp(t, hexValue, tok.Value)
	// Both scripted collisions must have been consumed by retries.
	require.Equal(t, 0, f.accessRepo.CollideNext)
}

func TestAccessTokenService_GetToken(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("unknown value", func(t *testing.T) {
		tok, err := f.access.GetToken("0000000000000000000000000000000000000000")
		require.NoError(t, err)
		require.Nil(t, tok)
	})

	t.Run("storage collation cannot widen the match", func(t *testing.T) {
		tok, err := f.access.CreateToken(oauth2.Owner("user-1"), f.client, []string{"read"})
		require.NoError(t, err)

		// The fake lowercases its keys like a case-insensitive
		// collation would, so the repo finds a row for the uppercased
		// value. The service's exact comparison must still reject it.
		found, err := f.access.GetToken(strings.ToUpper(tok.Value))
		require.NoError(t, err)
		require.Nil(t, found)

		found, err = f.access.GetToken(tok.Value)
		require.NoError(t, err)
		require.NotNil(t, found)
	})
}

func TestAccessTokenService_Delete(t *testing.T) {
	f := setupTestFixture(t)

	tok, err := f.access.CreateToken(oauth2.Owner("user-1"), f.client, []string{"read"})
	require.NoError(t, err)

	require.NoError(t, f.access.Delete(tok.Value))

	found, err := f.access.GetToken(tok.Value)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestAccessTokenService_CleanExpired(t *testing.T) {
	scopeService := scopes.NewService(fakescoperepo.NewFakeScopeRepo())
	_, err := scopeService.Create("read", "", true)
	require.NoError(t, err)

	client, err := clients.New("test-app", nil, []string{"read"})
	require.NoError(t, err)

	repo := tokenfakerepo.NewFakeAccessTokenRepo()
	expiring := oauth2.DefaultConfiguration()
	expiring.AccessTokenTTL = -time.Second
	expired := token.NewAccessTokenService(repo, scopeService, expiring)
	live := token.NewAccessTokenService(repo, scopeService, oauth2.DefaultConfiguration())

	_, err = expired.CreateToken(oauth2.Owner("user-1"), client, []string{"read"})
	require.NoError(t, err)
	kept, err := live.CreateToken(oauth2.Owner("user-1"), client, []string{"read"})
	require.NoError(t, err)

	removed, err := live.CleanExpired()
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	found, err := live.GetToken(kept.Value)
	require.NoError(t, err)
	require.NotNil(t, found)
}

func TestRefreshTokenService_CreateAndGet(t *testing.T) {
	f := setupTestFixture(t)

	tok, err := f.refresh.CreateToken(oauth2.Owner("user-1"), f.client, []string{"read", "write"})
	require.NoError(t, err)

	found, err := f.refresh.GetToken(tok.Value)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, tok.Scopes, found.Scopes)
}

func TestAuthorizationCodeService_CreateAndGet(t *testing.T) {
	f := setupTestFixture(t)

	code, err := f.codes.CreateToken("http://app/cb", oauth2.Owner("user-1"), f.client, []string{"read"})
	require.NoError(t, err)
	require.Equal(t, "http://app/cb", code.RedirectURI)

	found, err := f.codes.GetToken(code.Value)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "http://app/cb", found.RedirectURI)
	require.False(t, found.IsExpired())
}
