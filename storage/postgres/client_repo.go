package postgres

import (
	"database/sql"

	"github.com/clearauth/go-oauth2/clients"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var _ clients.Repo = (*ClientRepo)(nil)

type ClientRepo struct {
	db *sql.DB
}

func NewClientRepo(db *sql.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

func (r *ClientRepo) Save(client *clients.Client) error {
	_, err := r.db.Exec(`
		INSERT INTO oauth2_clients (id, name, secret, redirect_uris, scopes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    secret = EXCLUDED.secret,
		    redirect_uris = EXCLUDED.redirect_uris,
		    scopes = EXCLUDED.scopes`,
		client.ID, client.Name, client.Secret,
		pq.Array(client.RedirectURIs), pq.Array(client.Scopes),
	)
	if err != nil {
		return errors.Wrap(err, "ClientRepo.Save")
	}
	return nil
}

func (r *ClientRepo) FindByID(id string) (*clients.Client, error) {
	var (
		client       clients.Client
		redirectURIs pq.StringArray
		scopes       pq.StringArray
	)
	err := r.db.QueryRow(`
		SELECT id, name, secret, redirect_uris, scopes
		FROM oauth2_clients WHERE id = $1`, id,
	).Scan(&client.ID, &client.Name, &client.Secret, &redirectURIs, &scopes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "ClientRepo.FindByID")
	}
	client.RedirectURIs = redirectURIs
	client.Scopes = scopes
	return &client, nil
}

func (r *ClientRepo) ExistsByID(id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM oauth2_clients WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "ClientRepo.ExistsByID")
	}
	return exists, nil
}
