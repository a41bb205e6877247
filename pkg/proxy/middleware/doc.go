// Package middleware provides the HTTP middleware chain for the gateway.
//
// The server composes them as recovery → request ID → logging → CORS,
// with the timeout middleware added on bounded (non-streaming) routes:
//
//	handler = middleware.RecoveryMiddleware(
//	    middleware.RequestIDMiddleware(
//	        middleware.LoggingMiddleware(
//	            middleware.CORSMiddleware(cfg)(mux))))
//
// All middleware communicate through typed context keys defined in this
// package; GetRequestID and GetStartTime read them back.
package middleware
