package tokenfakerepo

import (
	"strings"
	"sync"
	"time"

	"github.com/clearauth/go-oauth2/token"
)

var (
	_ token.AccessTokenRepo       = (*FakeAccessTokenRepo)(nil)
	_ token.RefreshTokenRepo      = (*FakeRefreshTokenRepo)(nil)
	_ token.AuthorizationCodeRepo = (*FakeAuthorizationCodeRepo)(nil)
)

// FakeAccessTokenRepo is an in-memory access token store. Keys are
// lowercased to mimic case-insensitive storage collation.
type FakeAccessTokenRepo struct {
	tokens map[string]*token.AccessToken
	lock   sync.RWMutex

	// CollideNext makes the next N ExistsByValue calls report the value
	// as taken, for exercising collision retries.
	CollideNext int

	// DeleteErr, when set, is returned from every Delete call.
	DeleteErr error
}

func NewFakeAccessTokenRepo() *FakeAccessTokenRepo {
	return &FakeAccessTokenRepo{tokens: make(map[string]*token.AccessToken)}
}

func (r *FakeAccessTokenRepo) Save(t *token.AccessToken) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.tokens[strings.ToLower(t.Value)] = t
	return nil
}

func (r *FakeAccessTokenRepo) GetByValue(value string) (*token.AccessToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	t, ok := r.tokens[strings.ToLower(value)]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (r *FakeAccessTokenRepo) ExistsByValue(value string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.CollideNext > 0 {
		r.CollideNext--
		return true, nil
	}
	_, ok := r.tokens[strings.ToLower(value)]
	return ok, nil
}

func (r *FakeAccessTokenRepo) Delete(value string) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.tokens, strings.ToLower(value))
	return nil
}

func (r *FakeAccessTokenRepo) CleanExpired() (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	var removed int64
	for key, t := range r.tokens {
		if t.ExpiresAt != nil && !t.ExpiresAt.After(time.Now()) {
			delete(r.tokens, key)
			removed++
		}
	}
	return removed, nil
}

// FakeRefreshTokenRepo is an in-memory refresh token store.
type FakeRefreshTokenRepo struct {
	tokens      map[string]*token.RefreshToken
	lock        sync.RWMutex
	CollideNext int
	DeleteErr   error
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{tokens: make(map[string]*token.RefreshToken)}
}

func (r *FakeRefreshTokenRepo) Save(t *token.RefreshToken) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.tokens[strings.ToLower(t.Value)] = t
	return nil
}

func (r *FakeRefreshTokenRepo) GetByValue(value string) (*token.RefreshToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	t, ok := r.tokens[strings.ToLower(value)]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (r *FakeRefreshTokenRepo) ExistsByValue(value string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.CollideNext > 0 {
		r.CollideNext--
		return true, nil
	}
	_, ok := r.tokens[strings.ToLower(value)]
	return ok, nil
}

func (r *FakeRefreshTokenRepo) Delete(value string) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.tokens, strings.ToLower(value))
	return nil
}

func (r *FakeRefreshTokenRepo) CleanExpired() (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	var removed int64
	for key, t := range r.tokens {
		if t.ExpiresAt != nil && !t.ExpiresAt.After(time.Now()) {
			delete(r.tokens, key)
			removed++
		}
	}
	return removed, nil
}

// FakeAuthorizationCodeRepo is an in-memory authorization code store.
type FakeAuthorizationCodeRepo struct {
	codes       map[string]*token.AuthorizationCode
	lock        sync.RWMutex
	CollideNext int
	DeleteErr   error
}

func NewFakeAuthorizationCodeRepo() *FakeAuthorizationCodeRepo {
	return &FakeAuthorizationCodeRepo{codes: make(map[string]*token.AuthorizationCode)}
}

func (r *FakeAuthorizationCodeRepo) Save(code *token.AuthorizationCode) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.codes[strings.ToLower(code.Value)] = code
	return nil
}

func (r *FakeAuthorizationCodeRepo) GetByValue(value string) (*token.AuthorizationCode, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	code, ok := r.codes[strings.ToLower(value)]
	if !ok {
		return nil, nil
	}
	return code, nil
}

func (r *FakeAuthorizationCodeRepo) ExistsByValue(value string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.CollideNext > 0 {
		r.CollideNext--
		return true, nil
	}
	_, ok := r.codes[strings.ToLower(value)]
	return ok, nil
}

func (r *FakeAuthorizationCodeRepo) Delete(value string) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.codes, strings.ToLower(value))
	return nil
}

func (r *FakeAuthorizationCodeRepo) CleanExpired() (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	var removed int64
	for key, code := range r.codes {
		if code.ExpiresAt != nil && !code.ExpiresAt.After(time.Now()) {
			delete(r.codes, key)
			removed++
		}
	}
	return removed, nil
}
