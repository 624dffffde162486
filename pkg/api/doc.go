// Package api assembles the HTTP surface of the group administration
// service.
//
// Server wires the stores, domain services and handler groups onto a
// gorilla/mux router under /api and wraps it with the shared middleware
// chain:
//
//	request id -> client ip -> logging -> recovery -> max bytes -> session
//
// Prometheus HTTP metrics are recorded per matched route and, when tracing
// is enabled, the whole handler is instrumented with otelhttp.
//
// # Routes
//
//	POST   /api/auth/login                      rate limited per client address
//	POST   /api/auth/logout                     session
//	GET    /api/auth/me                         session
//	GET    /api/dashboard                       session
//	GET    /api/groups                          session
//	POST   /api/groups                          manage_groups
//	GET    /api/groups/{id}                     session
//	POST   /api/groups/{id}/members             manage_groups
//	DELETE /api/groups/{id}/members/{user_id}   manage_groups
//	GET    /api/groups/{id}/report              session
//	GET    /api/users                           session
//	GET    /api/users/departments               session
//	GET    /api/users/search                    session
//	GET    /api/users/{id}                      session
//	PUT    /api/users/{id}                      self or elevated
//	GET    /api/users/{id}/groups               session
//	GET    /api/admin/overview                  full_admin
//	GET    /api/admin/users/{id}/permissions    full_admin
//	POST   /api/admin/users/{id}/permissions    full_admin
//	DELETE /api/admin/users/{id}/permissions/{permission}
//	GET    /api/admin/audit/events              full_admin
//	GET    /api/admin/audit/export              full_admin
//
// Sessions are carried in an HttpOnly cookie; API clients may send the same
// token as a Bearer credential instead.
package api
