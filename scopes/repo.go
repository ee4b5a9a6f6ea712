package scopes

// Repo persists scope definitions.
type Repo interface {
	Save(scope *Scope) error
	All() ([]*Scope, error)
	Defaults() ([]*Scope, error)
}
