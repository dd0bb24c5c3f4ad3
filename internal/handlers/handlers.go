// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the catalog manager API.
// Handlers are grouped by concern (public, auth, catalog admin, machines,
// image maps, imports) and receive their dependencies through the handler
// struct. Successful responses are JSON; error responses are plain text
// so the admin UI can surface them verbatim.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// writeJSON marshals v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", "error", err)
	}
}

// decodeJSON reads a JSON request body into dst. Unknown fields are
// tolerated; the admin UI ships more fields than most endpoints read.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// parseBool accepts the truthy spellings the admin UI sends for flags
// like dryRun and cascade.
func parseBool(value string) bool {
	return value == "1" || value == "true"
}

// parseLimit reads a listing limit query parameter, falling back to 200.
func parseLimit(raw string) int {
	if raw == "" {
		return 200
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 200
	}
	return n
}

// okResponse is the generic success body for mutations with nothing else
// to report.
type okResponse struct {
	OK bool `json:"ok"`
}

var respOK = okResponse{OK: true}
