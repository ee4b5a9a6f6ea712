// Package postgres provides repository implementations backed by
// PostgreSQL. Tokens, clients and scopes each live in their own table;
// scope lists and redirect URIs are stored as text arrays.
package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Schema creates every table the repositories use. Token values and
// client ids rely on the primary key for the uniqueness the generation
// retry loop assumes.
const Schema = `
CREATE TABLE IF NOT EXISTS oauth2_clients (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	secret        TEXT NOT NULL DEFAULT '',
	redirect_uris TEXT[] NOT NULL DEFAULT '{}',
	scopes        TEXT[] NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS oauth2_scopes (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	is_default  BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS oauth2_access_tokens (
	value      TEXT PRIMARY KEY,
	owner_id   TEXT,
	client_id  TEXT REFERENCES oauth2_clients (id),
	expires_at TIMESTAMPTZ,
	scopes     TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS oauth2_refresh_tokens (
	value      TEXT PRIMARY KEY,
	owner_id   TEXT,
	client_id  TEXT REFERENCES oauth2_clients (id),
	expires_at TIMESTAMPTZ,
	scopes     TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS oauth2_authorization_codes (
	value        TEXT PRIMARY KEY,
	redirect_uri TEXT NOT NULL DEFAULT '',
	owner_id     TEXT,
	client_id    TEXT REFERENCES oauth2_clients (id),
	expires_at   TIMESTAMPTZ,
	scopes       TEXT[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Open connects to the database and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "postgres.Open")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "postgres.Open Ping")
	}
	return db, nil
}

// EnsureSchema creates any missing tables.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return errors.Wrap(err, "postgres.EnsureSchema")
	}
	return nil
}
