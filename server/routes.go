package server

// Route path constants. All routes are defined here to keep handlers
// and tests in sync.
const (
	RouteOAuth2Authorize = "/oauth2/authorize"
	RouteOAuth2Token     = "/oauth2/token"
	RouteOAuth2Revoke    = "/oauth2/revoke"
	RouteProfile         = "/api/profile"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteOAuth2Authorize, ChainMiddleware(s.Authorize(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteOAuth2Token, ChainMiddleware(s.Token(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteOAuth2Revoke, ChainMiddleware(s.Revoke(), s.APIMiddleware()...))

	// A protected resource demonstrating bearer validation.
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.Profile(), append(s.APIMiddleware(), s.RequireAccessToken("profile"))...))
}
