// Package httputil provides HTTP helpers shared by the API handlers.
//
// Responses:
//
//	httputil.WriteSuccess(w, group)
//	httputil.WriteDomainError(w, r, err) // 400, 401, 403, 404 or a generic 500
//
// Requests:
//
//	var req CreateGroupRequest
//	if !httputil.DecodeAndValidate(w, r, &req) {
//		return
//	}
//	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
//
// Request bodies are validated with go-playground/validator struct tags.
// Field names in errors use the JSON tag. The custom "notblank" tag rejects
// whitespace-only strings.
//
// Middleware: RequestIDMiddleware, ClientIPMiddleware, LoggingMiddleware,
// RecoveryMiddleware and MaxBytesMiddleware, composed with Chain.
package httputil
