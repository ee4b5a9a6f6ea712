package server

import (
	"net/http"
	"strings"

	"github.com/clearauth/go-oauth2/auth"
	"github.com/clearauth/go-oauth2/clients"
	"github.com/clearauth/go-oauth2/grants"
	"github.com/clearauth/go-oauth2/internal/config"
	"github.com/clearauth/go-oauth2/oauth2"
	"github.com/clearauth/go-oauth2/scopes"
	"github.com/clearauth/go-oauth2/token"
	"github.com/rs/zerolog/log"
)

// OwnerResolver identifies the resource owner behind an authorization
// request. The host application supplies one backed by its own session
// or login machinery; returning nil denies the authorization.
type OwnerResolver func(r *http.Request) oauth2.TokenOwner

// Repos bundles the storage collaborators the server wires into the
// engine.
type Repos struct {
	Clients            clients.Repo
	Scopes             scopes.Repo
	AccessTokens       token.AccessTokenRepo
	RefreshTokens      token.RefreshTokenRepo
	AuthorizationCodes token.AuthorizationCodeRepo
}

// Server is a demonstration host embedding the authorization and
// resource servers behind a stdlib mux.
type Server struct {
	env            string
	mux            *http.ServeMux
	routes         []string
	config         config.Config
	clientService  *clients.Service
	scopeService   *scopes.Service
	authServer     *auth.AuthorizationServer
	resourceServer *auth.ResourceServer
	resolveOwner   OwnerResolver
}

func New(cfg config.Config, repos Repos, authenticator oauth2.UserAuthenticator, resolveOwner OwnerResolver) (*Server, error) {
	policy := cfg.GetTokenPolicy()

	clientService := clients.NewService(repos.Clients)
	scopeService := scopes.NewService(repos.Scopes)
	accessService := token.NewAccessTokenService(repos.AccessTokens, scopeService, policy)
	refreshService := token.NewRefreshTokenService(repos.RefreshTokens, scopeService, policy)
	codeService := token.NewAuthorizationCodeService(repos.AuthorizationCodes, scopeService, policy)

	authServer := auth.NewAuthorizationServer(
		clientService, accessService, refreshService,
		grants.NewAuthorizationCodeGrant(codeService, accessService, refreshService),
		grants.NewPasswordGrant(authenticator, accessService, refreshService),
		grants.NewClientCredentialsGrant(accessService),
		grants.NewRefreshTokenGrant(accessService, refreshService, policy),
	)

	if resolveOwner == nil {
		resolveOwner = func(*http.Request) oauth2.TokenOwner { return nil }
	}

	s := &Server{
		env:            cfg.GetEnv(),
		mux:            http.NewServeMux(),
		config:         cfg,
		clientService:  clientService,
		scopeService:   scopeService,
		authServer:     authServer,
		resourceServer: auth.NewResourceServer(accessService),
		resolveOwner:   resolveOwner,
	}

	if err := s.seedRegistry(); err != nil {
		return nil, err
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Clients exposes the client registry so the host can register
// applications at startup.
func (s *Server) Clients() *clients.Service {
	return s.clientService
}

// Scopes exposes the scope registry for host-driven seeding.
func (s *Server) Scopes() *scopes.Service {
	return s.scopeService
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Str("method", method).Str("path", path).Msg("route registered")
}

// writeResponse replays an engine response, logging write failures.
func writeResponse(w http.ResponseWriter, resp *oauth2.Response) {
	if err := resp.Write(w); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
