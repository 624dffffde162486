// Package middleware provides HTTP middleware for sessions and login rate limiting.
//
// # Overview
//
// SessionMiddleware resolves the session token carried by a request (cookie
// or Bearer header), loads the user and stores an *auth.AuthContext in the
// request context. It never rejects a request itself; RequireAuthenticated
// does that for routes that need a user.
//
//	sessions := middleware.NewSessionMiddleware(manager, userStore, "gm_session", logger)
//	router.Use(sessions.Handler)
//	protected.Use(middleware.RequireAuthenticated)
//
// Handlers read the actor with CurrentUser:
//
//	actor := middleware.CurrentUser(r)
//
// # Rate Limiting
//
// Login attempts are limited per client address. RateLimiter keeps token
// buckets in process; DistributedRateLimiter counts attempts in Redis so all
// replicas share one budget. Both satisfy Limiter:
//
//	limiter := middleware.NewRateLimiter(middleware.LoginRateLimitConfig())
//	router.Handle("/auth/login", middleware.RateLimit(limiter, logger)(loginHandler))
//
// Redis errors fail open: the request is served and the error is logged.
package middleware
