// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"partspress/internal/middleware"
	"partspress/internal/models"
	"partspress/internal/session"
)

func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing password", `{"email":"someone@partspress.local"}`},
		{"missing email", `{"password":"secret"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(tt.body))
			env.Auth.Login(w, r)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != "Email and password are required." {
				t.Errorf("body: got %q", got)
			}
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	email := "login-test@partspress.local"
	cleanUsers(t, env.DB, email)
	t.Cleanup(func() { cleanUsers(t, env.DB, email) })

	if _, err := env.Users.Create(email, "correct-horse", "Login Test", models.RoleEditor); err != nil {
		t.Fatalf("create user: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"`+email+`","password":"wrong"}`))
	env.Auth.Login(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "Invalid credentials." {
		t.Errorf("body: got %q", got)
	}
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	email := "login-ok@partspress.local"
	cleanUsers(t, env.DB, email)
	t.Cleanup(func() { cleanUsers(t, env.DB, email) })

	if _, err := env.Users.Create(email, "correct-horse", "Login OK", models.RoleAdmin); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Email is normalized, so mixed case and padding still log in.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"  Login-OK@partspress.local ","password":"correct-horse"}`))
	env.Auth.Login(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["email"] != email {
		t.Errorf("email: got %v", body["email"])
	}
	if body["role"] != "admin" {
		t.Errorf("role: got %v", body["role"])
	}

	// Session cookie must be set.
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Value != "" && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Error("expected an HttpOnly session cookie")
	}
}

func TestMeUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/auth/me", nil)
	env.Auth.Me(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "Not authenticated." {
		t.Errorf("body: got %q", got)
	}
}

func TestMeWithSession(t *testing.T) {
	env := newTestEnv(t)
	email := "me-test@partspress.local"
	cleanUsers(t, env.DB, email)
	t.Cleanup(func() { cleanUsers(t, env.DB, email) })

	user, err := env.Users.Create(email, "password123", "Me Test", models.RoleEditor)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sess := &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   true,
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/auth/me", nil)
	r = r.WithContext(ctxWithSession(r.Context(), sess))
	env.Auth.Me(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["email"] != email {
		t.Errorf("email: got %v", body["email"])
	}
	if body["two_fa_done"] != true {
		t.Errorf("two_fa_done: got %v", body["two_fa_done"])
	}
}

func TestLogoutAlwaysOK(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/auth/logout", nil)
	env.Auth.Logout(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	var body okResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.OK {
		t.Error("expected ok:true")
	}
}
