package fakeclientrepo

import (
	"sync"

	"github.com/clearauth/go-oauth2/clients"
)

var _ clients.Repo = (*FakeClientRepo)(nil)

type FakeClientRepo struct {
	clients map[string]*clients.Client
	lock    sync.RWMutex

	// CollideNext makes the next N ExistsByID calls report the id as
	// taken, for exercising id collision retries.
	CollideNext int
}

func NewFakeClientRepo() *FakeClientRepo {
	return &FakeClientRepo{
		clients: make(map[string]*clients.Client),
	}
}

func (r *FakeClientRepo) Save(client *clients.Client) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.clients[client.ID] = client
	return nil
}

func (r *FakeClientRepo) FindByID(id string) (*clients.Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	client, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	return client, nil
}

func (r *FakeClientRepo) ExistsByID(id string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.CollideNext > 0 {
		r.CollideNext--
		return true, nil
	}
	_, ok := r.clients[id]
	return ok, nil
}
