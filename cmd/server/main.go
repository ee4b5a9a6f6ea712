package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	fakeclientrepo "github.com/clearauth/go-oauth2/clients/fakerepo"
	"github.com/clearauth/go-oauth2/internal/config"
	"github.com/clearauth/go-oauth2/oauth2"
	fakescoperepo "github.com/clearauth/go-oauth2/scopes/fakerepo"
	"github.com/clearauth/go-oauth2/server"
	"github.com/clearauth/go-oauth2/storage/postgres"
	"github.com/clearauth/go-oauth2/storage/redisrepo"
	tokenfakerepo "github.com/clearauth/go-oauth2/token/repofake"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	repos, err := buildRepos(c)
	if err != nil {
		return err
	}

	srv, err := server.New(c, repos, staticUsers{"demo": "password"}, ownerFromRequest)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// buildRepos selects the storage backend from the environment: postgres
// when DATABASE_URL is set, with tokens optionally moved to redis via
// TOKEN_STORE=redis; in-memory stores otherwise.
func buildRepos(c config.Config) (server.Repos, error) {
	var repos server.Repos

	if dsn := c.GetDatabaseURL(); dsn != "" {
		db, err := postgres.Open(dsn)
		if err != nil {
			return repos, err
		}
		if err := postgres.EnsureSchema(db); err != nil {
			return repos, err
		}
		clientRepo := postgres.NewClientRepo(db)
		repos = server.Repos{
			Clients:            clientRepo,
			Scopes:             postgres.NewScopeRepo(db),
			AccessTokens:       postgres.NewAccessTokenRepo(db, clientRepo),
			RefreshTokens:      postgres.NewRefreshTokenRepo(db, clientRepo),
			AuthorizationCodes: postgres.NewAuthorizationCodeRepo(db, clientRepo),
		}
	} else {
		repos = server.Repos{
			Clients:            fakeclientrepo.NewFakeClientRepo(),
			Scopes:             fakescoperepo.NewFakeScopeRepo(),
			AccessTokens:       tokenfakerepo.NewFakeAccessTokenRepo(),
			RefreshTokens:      tokenfakerepo.NewFakeRefreshTokenRepo(),
			AuthorizationCodes: tokenfakerepo.NewFakeAuthorizationCodeRepo(),
		}
	}

	if c.GetTokenStore() == "redis" {
		rdb, err := redisrepo.Open(c.GetRedisURL())
		if err != nil {
			return repos, err
		}
		repos.AccessTokens = redisrepo.NewAccessTokenRepo(rdb, repos.Clients)
		repos.RefreshTokens = redisrepo.NewRefreshTokenRepo(rdb, repos.Clients)
		repos.AuthorizationCodes = redisrepo.NewAuthorizationCodeRepo(rdb, repos.Clients)
	}

	return repos, nil
}

// staticUsers authenticates the password grant against a fixed
// username/password table. A real deployment replaces this with its
// user store.
type staticUsers map[string]string

func (u staticUsers) Validate(username, password string) (oauth2.TokenOwner, error) {
	if stored, ok := u[username]; ok && stored == password {
		return oauth2.Owner(username), nil
	}
	return nil, nil
}

// ownerFromRequest trusts an X-Owner-ID header as the authenticated
// resource owner. A real deployment resolves the owner from its login
// session before forwarding the request.
func ownerFromRequest(r *http.Request) oauth2.TokenOwner {
	if ownerID := r.Header.Get("X-Owner-ID"); ownerID != "" {
		return oauth2.Owner(ownerID)
	}
	return nil
}

func listenAndServe(httpServer *http.Server) error {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
