// Package redisrepo stores issued tokens in Redis. Keys use the
// token's own TTL, so Redis evicts expired tokens on its own and
// CleanExpired has nothing left to do.
package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var (
	_ token.AccessTokenRepo       = (*AccessTokenRepo)(nil)
	_ token.RefreshTokenRepo      = (*RefreshTokenRepo)(nil)
	_ token.AuthorizationCodeRepo = (*AuthorizationCodeRepo)(nil)
)

// Open connects using a redis URL (redis://host:port/db).
func Open(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "redisrepo.Open ParseURL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "redisrepo.Open Ping")
	}
	return client, nil
}

type tokenRecord struct {
	Value       string     `json:"value"`
	OwnerID     *string    `json:"ownerId,omitempty"`
	ClientID    *string    `json:"clientId,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Scopes      []string   `json:"scopes"`
	RedirectURI string     `json:"redirectUri,omitempty"`
}

// store holds the plumbing shared by the three token repositories.
type store struct {
	rdb     *redis.Client
	clients clients.Repo
	prefix  string
}

func (s *store) key(value string) string {
	return s.prefix + value
}

func (s *store) save(t *token.Token, redirectURI string) error {
	data, err := encodeRecord(t, redirectURI)
	if err != nil {
		return err
	}

	// Zero TTL stores the key without expiry.
	var ttl time.Duration
	if t.ExpiresAt != nil {
		ttl = time.Until(*t.ExpiresAt)
		if ttl <= 0 {
			ttl = time.Millisecond // already expired, evict immediately
		}
	}
	if err := s.rdb.Set(context.Background(), s.key(t.Value), data, ttl).Err(); err != nil {
		return errors.Wrap(err, "redisrepo.save Set")
	}
	return nil
}

func (s *store) get(value string) (*token.Token, string, error) {
	data, err := s.rdb.Get(context.Background(), s.key(value)).Bytes()
	if err == redis.Nil {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "redisrepo.get Get")
	}
	return decodeRecord(data, s.clients)
}

func encodeRecord(t *token.Token, redirectURI string) ([]byte, error) {
	record := tokenRecord{
		Value:       t.Value,
		ExpiresAt:   t.ExpiresAt,
		Scopes:      t.Scopes,
		RedirectURI: redirectURI,
	}
	if t.Owner != nil {
		ownerID := t.Owner.OwnerID()
		record.OwnerID = &ownerID
	}
	if t.Client != nil {
		clientID := t.Client.ID
		record.ClientID = &clientID
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "redisrepo.encodeRecord Marshal")
	}
	return data, nil
}

// decodeRecord rehydrates a stored record. The owner comes back as a
// bare oauth2.Owner; the client is looked up through the client repo.
func decodeRecord(data []byte, clientRepo clients.Repo) (*token.Token, string, error) {
	var record tokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, "", errors.Wrap(err, "redisrepo.decodeRecord Unmarshal")
	}

	t := token.Token{
		Value:     record.Value,
		ExpiresAt: record.ExpiresAt,
		Scopes:    record.Scopes,
	}
	if record.OwnerID != nil {
		t.Owner = oauth2.Owner(*record.OwnerID)
	}
	if record.ClientID != nil {
		client, err := clientRepo.FindByID(*record.ClientID)
		if err != nil {
			return nil, "", errors.Wrap(err, "redisrepo.decodeRecord client")
		}
		t.Client = client
	}
	return &t, record.RedirectURI, nil
}

func (s *store) exists(value string) (bool, error) {
	n, err := s.rdb.Exists(context.Background(), s.key(value)).Result()
	if err != nil {
		return false, errors.Wrap(err, "redisrepo.exists")
	}
	return n > 0, nil
}

func (s *store) delete(value string) error {
	if err := s.rdb.Del(context.Background(), s.key(value)).Err(); err != nil {
		return errors.Wrap(err, "redisrepo.delete")
	}
	return nil
}

// AccessTokenRepo stores access tokens under oauth2:access:<value>.
type AccessTokenRepo struct {
	store store
}

func NewAccessTokenRepo(rdb *redis.Client, clientRepo clients.Repo) *AccessTokenRepo {
	return &AccessTokenRepo{store: store{rdb: rdb, clients: clientRepo, prefix: "oauth2:access:"}}
}

func (r *AccessTokenRepo) Save(t *token.AccessToken) error {
	return r.store.save(&t.Token, "")
}

func (r *AccessTokenRepo) GetByValue(value string) (*token.AccessToken, error) {
	t, _, err := r.store.get(value)
	if err != nil || t == nil {
		return nil, err
	}
	return &token.AccessToken{Token: *t}, nil
}

func (r *AccessTokenRepo) ExistsByValue(value string) (bool, error) {
	return r.store.exists(value)
}

func (r *AccessTokenRepo) Delete(value string) error {
	return r.store.delete(value)
}

func (r *AccessTokenRepo) CleanExpired() (int64, error) {
	return 0, nil // redis expires keys itself
}

// RefreshTokenRepo stores refresh tokens under oauth2:refresh:<value>.
type RefreshTokenRepo struct {
	store store
}

func NewRefreshTokenRepo(rdb *redis.Client, clientRepo clients.Repo) *RefreshTokenRepo {
	return &RefreshTokenRepo{store: store{rdb: rdb, clients: clientRepo, prefix: "oauth2:refresh:"}}
}

func (r *RefreshTokenRepo) Save(t *token.RefreshToken) error {
	return r.store.save(&t.Token, "")
}

func (r *RefreshTokenRepo) GetByValue(value string) (*token.RefreshToken, error) {
	t, _, err := r.store.get(value)
	if err != nil || t == nil {
		return nil, err
	}
	return &token.RefreshToken{Token: *t}, nil
}

func (r *RefreshTokenRepo) ExistsByValue(value string) (bool, error) {
	return r.store.exists(value)
}

func (r *RefreshTokenRepo) Delete(value string) error {
	return r.store.delete(value)
}

func (r *RefreshTokenRepo) CleanExpired() (int64, error) {
	return 0, nil
}

// AuthorizationCodeRepo stores authorization codes under
// oauth2:code:<value>, keeping the bound redirect URI in the record.
type AuthorizationCodeRepo struct {
	store store
}

func NewAuthorizationCodeRepo(rdb *redis.Client, clientRepo clients.Repo) *AuthorizationCodeRepo {
	return &AuthorizationCodeRepo{store: store{rdb: rdb, clients: clientRepo, prefix: "oauth2:code:"}}
}

func (r *AuthorizationCodeRepo) Save(code *token.AuthorizationCode) error {
	return r.store.save(&code.Token, code.RedirectURI)
}

func (r *AuthorizationCodeRepo) GetByValue(value string) (*token.AuthorizationCode, error) {
	t, redirectURI, err := r.store.get(value)
	if err != nil || t == nil {
		return nil, err
	}
	return &token.AuthorizationCode{Token: *t, RedirectURI: redirectURI}, nil
}

func (r *AuthorizationCodeRepo) ExistsByValue(value string) (bool, error) {
	return r.store.exists(value)
}

func (r *AuthorizationCodeRepo) Delete(value string) error {
	return r.store.delete(value)
}

func (r *AuthorizationCodeRepo) CleanExpired() (int64, error) {
	return 0, nil
}
