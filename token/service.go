package token

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/scopes"
	"github.com/pkg/errors"
)

// AccessTokenService issues, looks up and deletes access tokens.
type AccessTokenService struct {
	repo   AccessTokenRepo
	scopes *scopes.Service
	config oauth2.Configuration
}

func NewAccessTokenService(repo AccessTokenRepo, scopeService *scopes.Service, config oauth2.Configuration) *AccessTokenService {
	return &AccessTokenService{repo: repo, scopes: scopeService, config: config}
}

// CreateToken issues an access token for the owner and client. When no
// scopes are requested the registry defaults apply. Requested scopes
// must exist and be assigned to the client.
func (s *AccessTokenService) CreateToken(owner oauth2.TokenOwner, client *clients.Client, scopeNames []string) (*AccessToken, error) {
	scopeNames, err := resolveScopes(s.scopes, client, scopeNames)
	if err != nil {
		return nil, err
	}
	tok, err := NewAccessToken(s.config.AccessTokenTTL, owner, client, scopeNames)
	if err != nil {
		return nil, err
	}
	if err := reserveValue(&tok.Token, func(v string) (bool, error) { return s.repo.ExistsByValue(v) }); err != nil {
		return nil, errors.Wrap(err, "AccessTokenService.CreateToken")
	}
	if err := s.repo.Save(tok); err != nil {
		return nil, errors.Wrap(err, "AccessTokenService.CreateToken Save")
	}
	return tok, nil
}

// GetToken looks a token up by value. Returns (nil, nil) when no token
// matches. The stored value is compared in constant time so lookups
// against case-insensitive storage cannot be confirmed by timing.
func (s *AccessTokenService) GetToken(value string) (*AccessToken, error) {
	tok, err := s.repo.GetByValue(value)
	if err != nil {
		return nil, errors.Wrap(err, "AccessTokenService.GetToken GetByValue")
	}
	if tok == nil || !valueMatches(tok.Value, value) {
		return nil, nil
	}
	return tok, nil
}

func (s *AccessTokenService) Delete(value string) error {
	if err := s.repo.Delete(value); err != nil {
		return errors.Wrap(err, "AccessTokenService.Delete")
	}
	return nil
}

func (s *AccessTokenService) CleanExpired() (int64, error) {
	n, err := s.repo.CleanExpired()
	if err != nil {
		return 0, errors.Wrap(err, "AccessTokenService.CleanExpired")
	}
	return n, nil
}

// RefreshTokenService issues, looks up and deletes refresh tokens.
type RefreshTokenService struct {
	repo   RefreshTokenRepo
	scopes *scopes.Service
	config oauth2.Configuration
}

func NewRefreshTokenService(repo RefreshTokenRepo, scopeService *scopes.Service, config oauth2.Configuration) *RefreshTokenService {
	return &RefreshTokenService{repo: repo, scopes: scopeService, config: config}
}

func (s *RefreshTokenService) CreateToken(owner oauth2.TokenOwner, client *clients.Client, scopeNames []string) (*RefreshToken, error) {
	scopeNames, err := resolveScopes(s.scopes, client, scopeNames)
	if err != nil {
		return nil, err
	}
	tok, err := NewRefreshToken(s.config.RefreshTokenTTL, owner, client, scopeNames)
	if err != nil {
		return nil, err
	}
	if err := reserveValue(&tok.Token, func(v string) (bool, error) { return s.repo.ExistsByValue(v) }); err != nil {
		return nil, errors.Wrap(err, "RefreshTokenService.CreateToken")
	}
	if err := s.repo.Save(tok); err != nil {
		return nil, errors.Wrap(err, "RefreshTokenService.CreateToken Save")
	}
	return tok, nil
}

func (s *RefreshTokenService) GetToken(value string) (*RefreshToken, error) {
	tok, err := s.repo.GetByValue(value)
	if err != nil {
		return nil, errors.Wrap(err, "RefreshTokenService.GetToken GetByValue")
	}
	if tok == nil || !valueMatches(tok.Value, value) {
		return nil, nil
	}
	return tok, nil
}

func (s *RefreshTokenService) Delete(value string) error {
	if err := s.repo.Delete(value); err != nil {
		return errors.Wrap(err, "RefreshTokenService.Delete")
	}
	return nil
}

func (s *RefreshTokenService) CleanExpired() (int64, error) {
	n, err := s.repo.CleanExpired()
	if err != nil {
		return 0, errors.Wrap(err, "RefreshTokenService.CleanExpired")
	}
	return n, nil
}

// AuthorizationCodeService issues, looks up and deletes authorization
// codes.
type AuthorizationCodeService struct {
	repo   AuthorizationCodeRepo
	scopes *scopes.Service
	config oauth2.Configuration
}

func NewAuthorizationCodeService(repo AuthorizationCodeRepo, scopeService *scopes.Service, config oauth2.Configuration) *AuthorizationCodeService {
	return &AuthorizationCodeService{repo: repo, scopes: scopeService, config: config}
}

func (s *AuthorizationCodeService) CreateToken(redirectURI string, owner oauth2.TokenOwner, client *clients.Client, scopeNames []string) (*AuthorizationCode, error) {
	scopeNames, err := resolveScopes(s.scopes, client, scopeNames)
	if err != nil {
		return nil, err
	}
	code, err := NewAuthorizationCode(s.config.AuthorizationCodeTTL, redirectURI, owner, client, scopeNames)
	if err != nil {
		return nil, err
	}
	if err := reserveValue(&code.Token, func(v string) (bool, error) { return s.repo.ExistsByValue(v) }); err != nil {
		return nil, errors.Wrap(err, "AuthorizationCodeService.CreateToken")
	}
	if err := s.repo.Save(code); err != nil {
		return nil, errors.Wrap(err, "AuthorizationCodeService.CreateToken Save")
	}
	return code, nil
}

func (s *AuthorizationCodeService) GetToken(value string) (*AuthorizationCode, error) {
	code, err := s.repo.GetByValue(value)
	if err != nil {
		return nil, errors.Wrap(err, "AuthorizationCodeService.GetToken GetByValue")
	}
	if code == nil || !valueMatches(code.Value, value) {
		return nil, nil
	}
	return code, nil
}

func (s *AuthorizationCodeService) Delete(value string) error {
	if err := s.repo.Delete(value); err != nil {
		return errors.Wrap(err, "AuthorizationCodeService.Delete")
	}
	return nil
}

func (s *AuthorizationCodeService) CleanExpired() (int64, error) {
	n, err := s.repo.CleanExpired()
	if err != nil {
		return 0, errors.Wrap(err, "AuthorizationCodeService.CleanExpired")
	}
	return n, nil
}

// resolveScopes substitutes the registry defaults for an empty request
// and validates the result: every name must exist in the registry and
// be assigned to the client.
func resolveScopes(scopeService *scopes.Service, client *clients.Client, requested []string) ([]string, error) {
	if len(requested) == 0 {
		defaults, err := scopeService.DefaultNames()
		if err != nil {
			return nil, errors.Wrap(err, "token.resolveScopes Defaults")
		}
		return defaults, nil
	}

	all, err := scopeService.All()
	if err != nil {
		return nil, errors.Wrap(err, "token.resolveScopes All")
	}
	known := make(map[string]bool, len(all))
	for _, scope := range all {
		known[scope.Name] = true
	}

	var missing []string
	for _, name := range requested {
		if !known[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, oauth2.InvalidScope(fmt.Sprintf("some requested scope(s) do not exist: %s", strings.Join(missing, ", ")))
	}

	// Tokens can be issued without a client; only existence applies then.
	if client == nil {
		return requested, nil
	}

	var unassigned []string
	for _, name := range requested {
		if !client.HasScope(name) {
			unassigned = append(unassigned, name)
		}
	}
	if len(unassigned) > 0 {
		return nil, oauth2.InvalidScope(fmt.Sprintf("some requested scope(s) are not assigned to the client: %s", strings.Join(unassigned, ", ")))
	}
	return requested, nil
}

// reserveValue regenerates the token value until the repository reports
// it unused.
func reserveValue(t *Token, exists func(string) (bool, error)) error {
	for {
		taken, err := exists(t.Value)
		if err != nil {
			return errors.Wrap(err, "ExistsByValue")
		}
		if !taken {
			return nil
		}
		if err := t.Regenerate(); err != nil {
			return err
		}
	}
}

func valueMatches(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
