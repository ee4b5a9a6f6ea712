package fakescoperepo

import (
	"sync"

	"github.com/clearauth/go-oauth2/scopes"
)

var _ scopes.Repo = (*FakeScopeRepo)(nil)

type FakeScopeRepo struct {
	scopes []*scopes.Scope
	nextID int64
	lock   sync.RWMutex
}

func NewFakeScopeRepo() *FakeScopeRepo {
	return &FakeScopeRepo{nextID: 1}
}

func (r *FakeScopeRepo) Save(scope *scopes.Scope) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if scope.ID == 0 {
		scope.ID = r.nextID
		r.nextID++
	}
	for i, existing := range r.scopes {
		if existing.ID == scope.ID {
			r.scopes[i] = scope
			return nil
		}
	}
	r.scopes = append(r.scopes, scope)
	return nil
}

func (r *FakeScopeRepo) All() ([]*scopes.Scope, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	list := make([]*scopes.Scope, len(r.scopes))
	copy(list, r.scopes)
	return list, nil
}

func (r *FakeScopeRepo) Defaults() ([]*scopes.Scope, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	defaults := make([]*scopes.Scope, 0)
	for _, scope := range r.scopes {
		if scope.IsDefault {
			defaults = append(defaults, scope)
		}
	}
	return defaults, nil
}
