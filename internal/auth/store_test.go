package auth

import (
	"testing"

	"github.com/Rafamp34/soundstream/internal/shared"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return NewStore(db)
}

func TestStoreRoundTrip(t *testing.T) {
	store := newStore(t)

	t.Run("Load Without A Session Returns Nil", func(t *testing.T) {
		sess, err := store.Load("strapi")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sess != nil {
			t.Errorf("expected no session, got %+v", sess)
		}
	})

	t.Run("Save Then Load", func(t *testing.T) {
		err := store.Save(Session{
			Backend:      "strapi",
			Token:        "jwt-1",
			RefreshToken: "refresh-1",
			UserID:       "u1",
			Email:        "rafa@example.com",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		sess, err := store.Load("strapi")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sess == nil {
			t.Fatal("expected a session")
		}
		if sess.Token != "jwt-1" || sess.UserID != "u1" || sess.Email != "rafa@example.com" {
			t.Errorf("unexpected session: %+v", sess)
		}
		if sess.ID == "" {
			t.Error("expected a generated session id")
		}
	})

	t.Run("Save Upserts Per Backend", func(t *testing.T) {
		if err := store.Save(Session{Backend: "strapi", Token: "jwt-2", UserID: "u1"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		sess, err := store.Load("strapi")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sess.Token != "jwt-2" {
			t.Errorf("expected the newer token, got %q", sess.Token)
		}
	})

	t.Run("Backends Do Not Collide", func(t *testing.T) {
		if err := store.Save(Session{Backend: "firebase", Token: "id-token", UserID: "uid-1"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		strapiSess, _ := store.Load("strapi")
		firebaseSess, _ := store.Load("firebase")
		if strapiSess == nil || firebaseSess == nil {
			t.Fatal("expected one session per backend")
		}
		if strapiSess.Token == firebaseSess.Token {
			t.Error("sessions must be isolated per backend")
		}
	})

	t.Run("Clear Removes Only One Backend", func(t *testing.T) {
		if err := store.Clear("strapi"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		sess, _ := store.Load("strapi")
		if sess != nil {
			t.Errorf("expected the session gone, got %+v", sess)
		}
		if other, _ := store.Load("firebase"); other == nil {
			t.Error("clearing one backend must not touch the other")
		}
	})

	t.Run("Missing Backend Is Invalid", func(t *testing.T) {
		if err := store.Save(Session{Token: "x"}); err == nil {
			t.Error("expected a validation error")
		}
	})
}
