package clients

import (
	"github.com/pkg/errors"
)

// Service manages client registration and lookup.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Create registers a confidential client and returns it together with
// the one-time plaintext secret. Generated ids are checked against the
// repository and regenerated on collision.
func (s *Service) Create(name string, redirectURIs []string, scopes []string) (*Client, string, error) {
	var client *Client
	for {
		c, err := New(name, redirectURIs, scopes)
		if err != nil {
			return nil, "", err
		}
		exists, err := s.repo.ExistsByID(c.ID)
		if err != nil {
			return nil, "", errors.Wrap(err, "ClientService.Create ExistsByID")
		}
		if !exists {
			client = c
			break
		}
	}

	secret, err := client.GenerateSecret()
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.Save(client); err != nil {
		return nil, "", errors.Wrap(err, "ClientService.Create Save")
	}
	return client, secret, nil
}

// CreatePublic registers a client with no secret.
func (s *Service) CreatePublic(name string, redirectURIs []string, scopes []string) (*Client, error) {
	var client *Client
	for {
		c, err := New(name, redirectURIs, scopes)
		if err != nil {
			return nil, err
		}
		exists, err := s.repo.ExistsByID(c.ID)
		if err != nil {
			return nil, errors.Wrap(err, "ClientService.CreatePublic ExistsByID")
		}
		if !exists {
			client = c
			break
		}
	}
	if err := s.repo.Save(client); err != nil {
		return nil, errors.Wrap(err, "ClientService.CreatePublic Save")
	}
	return client, nil
}

// Find looks a client up by id. Returns (nil, nil) when absent.
func (s *Service) Find(id string) (*Client, error) {
	client, err := s.repo.FindByID(id)
	if err != nil {
		return nil, errors.Wrap(err, "ClientService.Find FindByID")
	}
	return client, nil
}
