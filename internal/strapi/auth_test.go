package strapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/shared"
)

func newAuthServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Auth) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a := NewAuth(AuthOpts{
		Client:     srv.Client(),
		APIURL:     srv.URL + "/api",
		SignInPath: "/auth/local",
		SignUpPath: "/auth/local/register",
		MePath:     "/users/me",
	})
	return srv, a
}

func sessionStore(t *testing.T) *auth.Store {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return auth.NewStore(db)
}

func TestAuthStateMachine(t *testing.T) {
	_, a := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jwt":  "issued-jwt",
			"user": map[string]any{"id": 1, "username": "rafa", "email": "rafa@example.com"},
		})
	})

	t.Run("Not Ready Before Probe", func(t *testing.T) {
		snap := a.State().Snapshot()
		if snap.Ready {
			t.Error("expected not ready before probe")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := a.State().WaitReady(ctx); err == nil {
			t.Error("WaitReady should block until the probe runs")
		}
	})

	t.Run("Ready Unauthenticated After Empty Probe", func(t *testing.T) {
		a.Restore(context.Background())

		snap := a.State().Snapshot()
		if !snap.Ready || snap.Authenticated || snap.User != nil {
			t.Errorf("expected ready+unauthenticated, got %+v", snap)
		}
	})

	t.Run("SignIn Transitions To Authenticated", func(t *testing.T) {
		user, err := a.SignIn(context.Background(), auth.Credentials{Email: "rafa@example.com", Password: "pw"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "1" {
			t.Errorf("expected mapped user, got %+v", user)
		}

		snap := a.State().Snapshot()
		if !snap.Authenticated || snap.User == nil {
			t.Errorf("expected authenticated state, got %+v", snap)
		}
		if a.Token() != "issued-jwt" {
			t.Errorf("expected cached token, got %q", a.Token())
		}
	})

	t.Run("SignOut Transitions Back", func(t *testing.T) {
		if err := a.SignOut(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		snap := a.State().Snapshot()
		if !snap.Ready {
			t.Error("ready must never revert")
		}
		if snap.Authenticated || snap.User != nil {
			t.Errorf("expected unauthenticated, got %+v", snap)
		}
		if a.Token() != "" {
			t.Error("expected token discarded")
		}
	})
}

func TestAuthRestore(t *testing.T) {
	t.Run("Replays Persisted Token", func(t *testing.T) {
		store := sessionStore(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer stored-jwt" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "username": "rafa", "email": "rafa@example.com"})
		}))
		defer srv.Close()

		if err := store.Save(auth.Session{Backend: BackendName, Token: "stored-jwt", UserID: "1"}); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}

		a := NewAuth(AuthOpts{Client: srv.Client(), APIURL: srv.URL + "/api", MePath: "/users/me", Store: store})
		a.Restore(context.Background())

		snap := a.State().Snapshot()
		if !snap.Ready || !snap.Authenticated || snap.User == nil {
			t.Fatalf("expected restored session, got %+v", snap)
		}

		user, err := a.CurrentUser(context.Background())
		if err != nil || user == nil || user.Username != "rafa" {
			t.Errorf("unexpected current user: %+v, %v", user, err)
		}
	})

	t.Run("Rejected Token Clears Session", func(t *testing.T) {
		store := sessionStore(t)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		if err := store.Save(auth.Session{Backend: BackendName, Token: "expired-jwt"}); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}

		a := NewAuth(AuthOpts{Client: srv.Client(), APIURL: srv.URL + "/api", MePath: "/users/me", Store: store})
		a.Restore(context.Background())

		snap := a.State().Snapshot()
		if !snap.Ready || snap.Authenticated {
			t.Errorf("expected ready+unauthenticated, got %+v", snap)
		}

		sess, err := store.Load(BackendName)
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}
		if sess != nil {
			t.Error("expected stale session cleared")
		}
	})
}

func TestAuthSignInFailure(t *testing.T) {
	_, a := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "Invalid identifier or password"}})
	})
	a.Restore(context.Background())

	if _, err := a.SignIn(context.Background(), auth.Credentials{Email: "x@example.com", Password: "bad"}); err == nil {
		t.Fatal("expected error")
	}
	if a.State().Authenticated() {
		t.Error("failed sign-in must not authenticate")
	}
}
