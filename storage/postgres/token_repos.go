package postgres

import (
	"database/sql"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/token"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var (
	_ token.AccessTokenRepo       = (*AccessTokenRepo)(nil)
	_ token.RefreshTokenRepo      = (*RefreshTokenRepo)(nil)
	_ token.AuthorizationCodeRepo = (*AuthorizationCodeRepo)(nil)
)

// tokenRow is the common column set of the three token tables.
type tokenRow struct {
	value     string
	ownerID   sql.NullString
	clientID  sql.NullString
	expiresAt sql.NullTime
	scopes    pq.StringArray
}

func (row *tokenRow) fromToken(t *token.Token) {
	row.value = t.Value
	if t.Owner != nil {
		row.ownerID = sql.NullString{String: t.Owner.OwnerID(), Valid: true}
	}
	if t.Client != nil {
		row.clientID = sql.NullString{String: t.Client.ID, Valid: true}
	}
	if t.ExpiresAt != nil {
		row.expiresAt = sql.NullTime{Time: *t.ExpiresAt, Valid: true}
	}
	row.scopes = t.Scopes
}

// toToken rehydrates the shared token state. The owner comes back as a
// bare oauth2.Owner since the host application's owner type is not
// recoverable from storage.
func (row *tokenRow) toToken(clientRepo clients.Repo) (token.Token, error) {
	t := token.Token{
		Value:  row.value,
		Scopes: row.scopes,
	}
	if row.ownerID.Valid {
		t.Owner = oauth2.Owner(row.ownerID.String)
	}
	if row.expiresAt.Valid {
		expiresAt := row.expiresAt.Time
		t.ExpiresAt = &expiresAt
	}
	if row.clientID.Valid {
		client, err := clientRepo.FindByID(row.clientID.String)
		if err != nil {
			return token.Token{}, err
		}
		t.Client = client
	}
	return t, nil
}

// AccessTokenRepo persists access tokens.
type AccessTokenRepo struct {
	db      *sql.DB
	clients clients.Repo
}

func NewAccessTokenRepo(db *sql.DB, clientRepo clients.Repo) *AccessTokenRepo {
	return &AccessTokenRepo{db: db, clients: clientRepo}
}

func (r *AccessTokenRepo) Save(t *token.AccessToken) error {
	var row tokenRow
	row.fromToken(&t.Token)
	_, err := r.db.Exec(`
		INSERT INTO oauth2_access_tokens (value, owner_id, client_id, expires_at, scopes)
		VALUES ($1, $2, $3, $4, $5)`,
		row.value, row.ownerID, row.clientID, row.expiresAt, row.scopes,
	)
	if err != nil {
		return errors.Wrap(err, "AccessTokenRepo.Save")
	}
	return nil
}

func (r *AccessTokenRepo) GetByValue(value string) (*token.AccessToken, error) {
	var row tokenRow
	err := r.db.QueryRow(`
		SELECT value, owner_id, client_id, expires_at, scopes
		FROM oauth2_access_tokens WHERE value = $1`, value,
	).Scan(&row.value, &row.ownerID, &row.clientID, &row.expiresAt, &row.scopes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "AccessTokenRepo.GetByValue")
	}
	t, err := row.toToken(r.clients)
	if err != nil {
		return nil, errors.Wrap(err, "AccessTokenRepo.GetByValue client")
	}
	return &token.AccessToken{Token: t}, nil
}

func (r *AccessTokenRepo) ExistsByValue(value string) (bool, error) {
	return existsByValue(r.db, "oauth2_access_tokens", value)
}

func (r *AccessTokenRepo) Delete(value string) error {
	_, err := r.db.Exec(`DELETE FROM oauth2_access_tokens WHERE value = $1`, value)
	if err != nil {
		return errors.Wrap(err, "AccessTokenRepo.Delete")
	}
	return nil
}

func (r *AccessTokenRepo) CleanExpired() (int64, error) {
	return cleanExpired(r.db, "oauth2_access_tokens")
}

// RefreshTokenRepo persists refresh tokens.
type RefreshTokenRepo struct {
	db      *sql.DB
	clients clients.Repo
}

func NewRefreshTokenRepo(db *sql.DB, clientRepo clients.Repo) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db, clients: clientRepo}
}

func (r *RefreshTokenRepo) Save(t *token.RefreshToken) error {
	var row tokenRow
	row.fromToken(&t.Token)
	_, err := r.db.Exec(`
		INSERT INTO oauth2_refresh_tokens (value, owner_id, client_id, expires_at, scopes)
		VALUES ($1, $2, $3, $4, $5)`,
		row.value, row.ownerID, row.clientID, row.expiresAt, row.scopes,
	)
	if err != nil {
		return errors.Wrap(err, "RefreshTokenRepo.Save")
	}
	return nil
}

func (r *RefreshTokenRepo) GetByValue(value string) (*token.RefreshToken, error) {
	var row tokenRow
	err := r.db.QueryRow(`
		SELECT value, owner_id, client_id, expires_at, scopes
		FROM oauth2_refresh_tokens WHERE value = $1`, value,
	).Scan(&row.value, &row.ownerID, &row.clientID, &row.expiresAt, &row.scopes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "RefreshTokenRepo.GetByValue")
	}
	t, err := row.toToken(r.clients)
	if err != nil {
		return nil, errors.Wrap(err, "RefreshTokenRepo.GetByValue client")
	}
	return &token.RefreshToken{Token: t}, nil
}

func (r *RefreshTokenRepo) ExistsByValue(value string) (bool, error) {
	return existsByValue(r.db, "oauth2_refresh_tokens", value)
}

func (r *RefreshTokenRepo) Delete(value string) error {
	_, err := r.db.Exec(`DELETE FROM oauth2_refresh_tokens WHERE value = $1`, value)
	if err != nil {
		return errors.Wrap(err, "RefreshTokenRepo.Delete")
	}
	return nil
}

func (r *RefreshTokenRepo) CleanExpired() (int64, error) {
	return cleanExpired(r.db, "oauth2_refresh_tokens")
}

// AuthorizationCodeRepo persists authorization codes together with the
// redirect URI each code was bound to.
type AuthorizationCodeRepo struct {
	db      *sql.DB
	clients clients.Repo
}

func NewAuthorizationCodeRepo(db *sql.DB, clientRepo clients.Repo) *AuthorizationCodeRepo {
	return &AuthorizationCodeRepo{db: db, clients: clientRepo}
}

func (r *AuthorizationCodeRepo) Save(code *token.AuthorizationCode) error {
	var row tokenRow
	row.fromToken(&code.Token)
	_, err := r.db.Exec(`
		INSERT INTO oauth2_authorization_codes (value, redirect_uri, owner_id, client_id, expires_at, scopes)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		row.value, code.RedirectURI, row.ownerID, row.clientID, row.expiresAt, row.scopes,
	)
	if err != nil {
		return errors.Wrap(err, "AuthorizationCodeRepo.Save")
	}
	return nil
}

func (r *AuthorizationCodeRepo) GetByValue(value string) (*token.AuthorizationCode, error) {
	var (
		row         tokenRow
		redirectURI string
	)
	err := r.db.QueryRow(`
		SELECT value, redirect_uri, owner_id, client_id, expires_at, scopes
		FROM oauth2_authorization_codes WHERE value = $1`, value,
	).Scan(&row.value, &redirectURI, &row.ownerID, &row.clientID, &row.expiresAt, &row.scopes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "AuthorizationCodeRepo.GetByValue")
	}
	t, err := row.toToken(r.clients)
	if err != nil {
		return nil, errors.Wrap(err, "AuthorizationCodeRepo.GetByValue client")
	}
	return &token.AuthorizationCode{Token: t, RedirectURI: redirectURI}, nil
}

func (r *AuthorizationCodeRepo) ExistsByValue(value string) (bool, error) {
	return existsByValue(r.db, "oauth2_authorization_codes", value)
}

func (r *AuthorizationCodeRepo) Delete(value string) error {
	_, err := r.db.Exec(`DELETE FROM oauth2_authorization_codes WHERE value = $1`, value)
	if err != nil {
		return errors.Wrap(err, "AuthorizationCodeRepo.Delete")
	}
	return nil
}

func (r *AuthorizationCodeRepo) CleanExpired() (int64, error) {
	return cleanExpired(r.db, "oauth2_authorization_codes")
}

func existsByValue(db *sql.DB, table, value string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE value = $1)`, value).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "postgres.existsByValue "+table)
	}
	return exists, nil
}

func cleanExpired(db *sql.DB, table string) (int64, error) {
	result, err := db.Exec(`DELETE FROM ` + table + ` WHERE expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, errors.Wrap(err, "postgres.cleanExpired "+table)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "postgres.cleanExpired RowsAffected")
	}
	return removed, nil
}
