package server

const (
	RouteAdminLogin    = "/api/admin/login"
	RouteAdminVerify   = "/api/admin/verify"
	RouteAdminLogout   = "/api/admin/logout"
	RouteAuthVerify    = "/api/auth/verify"
	RouteFriendSession = "/api/auth/friend-session"

	RouteFriendView          = "/api/f/{token}"
	RouteFriendLogin         = "/api/f/{token}/login"
	RouteFriendSetupPassword = "/api/f/{token}/setup-password"
	RouteFriendSetupTOTP     = "/api/f/{token}/setup-totp"
	RouteFriendVerifyTOTP    = "/api/f/{token}/verify-totp"
	RouteFriendCredentials   = "/api/f/{token}/credentials/{subdomain}"

	RouteServiceClick = "/auth/{subdomain}"
)

func (s *Server) initRoutes() {
	// Admin session
	s.RegisterRouteHandler("POST "+RouteAdminLogin, ChainMiddleware(s.AdminLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminVerify, ChainMiddleware(s.AdminVerifyHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminLogout, ChainMiddleware(s.AdminLogoutHandler(), s.APIMiddleware()...))

	// Reverse-proxy probe
	s.RegisterRouteHandler("GET "+RouteAuthVerify, ChainMiddleware(s.ForwardAuthHandler(), s.APIMiddleware()...))

	// Friend flows, addressed by capability token
	s.RegisterRouteHandler("POST "+RouteFriendSession, ChainMiddleware(s.FriendSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteFriendView, ChainMiddleware(s.FriendViewHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteFriendLogin, ChainMiddleware(s.FriendLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteFriendSetupPassword, ChainMiddleware(s.FriendSetupPasswordHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteFriendSetupTOTP, ChainMiddleware(s.FriendSetupTOTPHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteFriendVerifyTOTP, ChainMiddleware(s.FriendVerifyTOTPHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteFriendCredentials, ChainMiddleware(s.FriendCredentialsHandler(), s.APIMiddleware()...))

	// Unified service-click entry point
	s.RegisterRouteHandler("GET "+RouteServiceClick, ChainMiddleware(s.ServiceClickHandler(), s.APIMiddleware()...))
}
