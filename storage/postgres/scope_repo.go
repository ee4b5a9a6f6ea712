package postgres

import (
	"database/sql"

	"github.com/clearauth/go-oauth2/scopes"
	"github.com/pkg/errors"
)

var _ scopes.Repo = (*ScopeRepo)(nil)

type ScopeRepo struct {
	db *sql.DB
}

func NewScopeRepo(db *sql.DB) *ScopeRepo {
	return &ScopeRepo{db: db}
}

func (r *ScopeRepo) Save(scope *scopes.Scope) error {
	err := r.db.QueryRow(`
		INSERT INTO oauth2_scopes (name, description, is_default)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
		    is_default = EXCLUDED.is_default
		RETURNING id`,
		scope.Name, scope.Description, scope.IsDefault,
	).Scan(&scope.ID)
	if err != nil {
		return errors.Wrap(err, "ScopeRepo.Save")
	}
	return nil
}

func (r *ScopeRepo) All() ([]*scopes.Scope, error) {
	return r.query(`SELECT id, name, description, is_default FROM oauth2_scopes ORDER BY id`)
}

func (r *ScopeRepo) Defaults() ([]*scopes.Scope, error) {
	return r.query(`SELECT id, name, description, is_default FROM oauth2_scopes WHERE is_default ORDER BY id`)
}

func (r *ScopeRepo) query(query string) ([]*scopes.Scope, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, errors.Wrap(err, "ScopeRepo.query")
	}
	defer rows.Close()

	list := make([]*scopes.Scope, 0)
	for rows.Next() {
		var scope scopes.Scope
		if err := rows.Scan(&scope.ID, &scope.Name, &scope.Description, &scope.IsDefault); err != nil {
			return nil, errors.Wrap(err, "ScopeRepo.query Scan")
		}
		list = append(list, &scope)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "ScopeRepo.query rows")
	}
	return list, nil
}
