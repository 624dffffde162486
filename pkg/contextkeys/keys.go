// Package contextkeys owns every request-scoped context value so packages
// that cannot import each other (auth, middleware, observability) agree on
// the keys.
//
// Values that would create an import cycle are stored as interface{} and
// type-asserted by their owner:
//
//	ctx = contextkeys.WithAuth(ctx, &auth.AuthContext{User: u})
//	authCtx, _ := contextkeys.Auth(ctx).(*auth.AuthContext)
package contextkeys

import "context"

type key int

const (
	authKey key = iota
	requestIDKey
	userIDKey
	loggerKey
	clientIPKey
)

// WithAuth stores the *auth.AuthContext of a resolved session
func WithAuth(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, authKey, authCtx)
}

// Auth returns the stored auth context, nil for anonymous requests
func Auth(ctx context.Context) interface{} {
	return ctx.Value(authKey)
}

// WithLogger stores the request-scoped *observability.Logger
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the stored logger or nil
func Logger(ctx context.Context) interface{} {
	return ctx.Value(loggerKey)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUserID stores the signed-in user's id for log lines
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithClientIP stores the caller address recorded in audit entries
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func GetRequestID(ctx context.Context) string { return stringValue(ctx, requestIDKey) }
func GetUserID(ctx context.Context) string    { return stringValue(ctx, userIDKey) }
func GetClientIP(ctx context.Context) string  { return stringValue(ctx, clientIPKey) }

func stringValue(ctx context.Context, k key) string {
	s, _ := ctx.Value(k).(string)
	return s
}
