// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	r.Use(middleware.WithLogging)

Assigns a UUID request id (X-Request-ID header, RequestID(ctx)) and logs
request start (method, path, remote) and completion (status, duration_ms).

# Panic Recovery

	r.Use(middleware.Recover)

A panicking handler answers 500 {ok:false, error:"UNEXPECTED_ERROR",
detail} instead of dropping the connection.

# CORS Middleware

Cross-origin requests are allowed only from configured origins:

	r.Use(middleware.CORS(cfg.AllowedOrigins))

Listed origins are echoed with credentials. "*" admits everyone else
without credentials. An empty list disables cross-origin access.

# JSON Helpers

Every response is JSON and marked Cache-Control: no-store:

	middleware.JSONResponse(w, http.StatusOK, models.StateResponse{OK: true, State: doc})
	middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeBadLot)

Parse JSON request bodies:

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeBadJSON)
		return
	}

A body of null fails with ErrNullBody.

# Client IP Extraction

	ip := middleware.GetClientIP(r, cfg.TrustProxyHeaders)

Checks CF-Connecting-IP, then RemoteAddr. X-Forwarded-For and X-Real-IP
are consulted only when trustProxy is set, i.e. when a proxy in front of
the server overwrites them. The result feeds the voter fingerprint and
may be empty.
*/
package middleware
