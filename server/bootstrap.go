package server

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var seedScopes = []struct {
	name        string
	description string
	isDefault   bool
}{
	{"profile", "Read the resource owner profile", true},
	{"read", "Read access to the API", true},
	{"write", "Write access to the API", false},
}

// seedRegistry populates an empty scope registry and, in DEV, registers
// a demo client on first boot so the endpoints are usable immediately.
// The demo client's secret is only ever printed here; it cannot be
// recovered later.
func (s *Server) seedRegistry() error {
	existing, err := s.scopeService.All()
	if err != nil {
		return errors.Wrap(err, "Server.seedRegistry All")
	}
	if len(existing) > 0 {
		return nil
	}

	for _, seed := range seedScopes {
		if _, err := s.scopeService.Create(seed.name, seed.description, seed.isDefault); err != nil {
			return errors.Wrap(err, "Server.seedRegistry Create scope")
		}
	}

	if s.env != "DEV" {
		return nil
	}

	client, secret, err := s.clientService.Create(
		"demo-app",
		[]string{s.config.GetBaseURL() + "/callback"},
		[]string{"profile", "read", "write"},
	)
	if err != nil {
		return err
	}
	log.Info().
		Str("client_id", client.ID).
		Str("client_secret", secret).
		Msg("registered demo client")
	return nil
}
