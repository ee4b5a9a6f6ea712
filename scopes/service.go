package scopes

import (
	"github.com/pkg/errors"
)

// Service manages the global scope registry.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Create registers a new scope.
func (s *Service) Create(name, description string, isDefault bool) (*Scope, error) {
	scope := &Scope{
		Name:        name,
		Description: description,
		IsDefault:   isDefault,
	}
	if err := s.repo.Save(scope); err != nil {
		return nil, errors.Wrap(err, "ScopeService.Create Save")
	}
	return scope, nil
}

// All returns every registered scope.
func (s *Service) All() ([]*Scope, error) {
	list, err := s.repo.All()
	if err != nil {
		return nil, errors.Wrap(err, "ScopeService.All")
	}
	return list, nil
}

// Defaults returns the scopes granted when a request has no scope
// parameter.
func (s *Service) Defaults() ([]*Scope, error) {
	list, err := s.repo.Defaults()
	if err != nil {
		return nil, errors.Wrap(err, "ScopeService.Defaults")
	}
	return list, nil
}

// DefaultNames returns the names of the default scopes.
func (s *Service) DefaultNames() ([]string, error) {
	defaults, err := s.Defaults()
	if err != nil {
		return nil, err
	}
	return Names(defaults), nil
}
