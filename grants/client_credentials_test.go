package grants_test

import (
	"testing"

	"github.com/clearauth/go-oauth2/grants"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/stretchr/testify/require"
)

func TestClientCredentialsGrant_Token(t *testing.T) {
	f := setupTestFixture(t, oauth2.DefaultConfiguration())
	grant := grants.NewClientCredentialsGrant(f.access)

	resp, err := grant.CreateTokenResponse(formRequest(t, map[string]string{
		"grant_type": "client_credentials",
		"scope":      "read",
	}), f.client, nil)
	require.NoError(t, err)

	body := parseTokenResponse(t, resp)
	require.Equal(t, "Bearer", body.TokenType)
	require.Equal(t, "read", body.Scope)

	// Machine tokens carry no owner and no refresh token.
	require.Nil(t, body.OwnerID)
	require.Nil(t, body.RefreshToken)

	access, err := f.access.GetToken(body.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, access)
	require.Nil(t, access.Owner)
}

func TestClientCredentialsGrant_DisallowsPublicClients(t *testing.T) {
	f := setupTestFixture(t, oauth2.DefaultConfiguration())
	grant := grants.NewClientCredentialsGrant(f.access)

	require.False(t, grant.AllowPublicClients())
}
