package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Rafamp34/soundstream/internal/models"
)

func TestStateReadiness(t *testing.T) {
	t.Run("Starts Not Ready", func(t *testing.T) {
		s := NewState()

		snap := s.Snapshot()
		if snap.Ready || snap.Authenticated || snap.User != nil {
			t.Errorf("expected pristine state, got %+v", snap)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := s.WaitReady(ctx); err == nil {
			t.Error("WaitReady should block before the probe completes")
		}
	})

	t.Run("MarkReady Unblocks Waiters", func(t *testing.T) {
		s := NewState()

		done := make(chan error, 1)
		go func() { done <- s.WaitReady(context.Background()) }()

		s.MarkReady()
		if err := <-done; err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !s.Snapshot().Ready {
			t.Error("expected ready state")
		}
	})

	t.Run("Ready Never Reverts", func(t *testing.T) {
		s := NewState()
		s.MarkReady()
		s.MarkReady() // second call is a no-op, not a panic

		s.SetSession(models.User{ID: "u1"})
		s.Clear()
		if !s.Snapshot().Ready {
			t.Error("clearing the session must not revert readiness")
		}
	})
}

func TestStateTransitions(t *testing.T) {
	t.Run("SetSession Pairs Flag And User", func(t *testing.T) {
		s := NewState()
		s.MarkReady()
		s.SetSession(models.User{ID: "u1", Email: "rafa@example.com"})

		snap := s.Snapshot()
		if !snap.Authenticated || snap.User == nil || snap.User.ID != "u1" {
			t.Errorf("expected authenticated snapshot, got %+v", snap)
		}
	})

	t.Run("Clear Drops Flag And User Together", func(t *testing.T) {
		s := NewState()
		s.MarkReady()
		s.SetSession(models.User{ID: "u1"})
		s.Clear()

		snap := s.Snapshot()
		if snap.Authenticated || snap.User != nil {
			t.Errorf("expected unauthenticated snapshot, got %+v", snap)
		}
	})

	t.Run("UpdateUser Keeps The Flag", func(t *testing.T) {
		s := NewState()
		s.MarkReady()
		s.SetSession(models.User{ID: "u1", DisplayName: "Old"})
		s.UpdateUser(models.User{ID: "u1", DisplayName: "New"})

		snap := s.Snapshot()
		if !snap.Authenticated || snap.User.DisplayName != "New" {
			t.Errorf("expected refreshed user, got %+v", snap)
		}
	})

	t.Run("UpdateUser Is A NoOp When Signed Out", func(t *testing.T) {
		s := NewState()
		s.MarkReady()
		s.UpdateUser(models.User{ID: "ghost"})

		if snap := s.Snapshot(); snap.Authenticated || snap.User != nil {
			t.Errorf("expected no session, got %+v", snap)
		}
	})
}

func TestStateSubscribe(t *testing.T) {
	recv := func(t *testing.T, ch <-chan Snapshot) Snapshot {
		t.Helper()
		select {
		case snap := <-ch:
			return snap
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for a snapshot")
			return Snapshot{}
		}
	}

	t.Run("Delivers Transitions In Order", func(t *testing.T) {
		s := NewState()
		ch, cancel := s.Subscribe()
		defer cancel()

		s.MarkReady()
		snap := recv(t, ch)
		if !snap.Ready || snap.Authenticated {
			t.Errorf("expected ready notification, got %+v", snap)
		}

		s.SetSession(models.User{ID: "u1"})
		snap = recv(t, ch)
		if !snap.Authenticated || snap.User == nil {
			t.Errorf("expected authenticated notification, got %+v", snap)
		}

		s.Clear()
		snap = recv(t, ch)
		if snap.Authenticated {
			t.Errorf("expected signed-out notification, got %+v", snap)
		}
	})

	t.Run("Slow Consumer Sees The Latest State", func(t *testing.T) {
		s := NewState()
		ch, cancel := s.Subscribe()
		defer cancel()

		// three transitions without a read in between
		s.MarkReady()
		s.SetSession(models.User{ID: "u1"})
		s.Clear()

		snap := recv(t, ch)
		if snap.Authenticated || !snap.Ready {
			t.Errorf("expected only the newest snapshot, got %+v", snap)
		}
	})

	t.Run("Cancel Stops Delivery", func(t *testing.T) {
		s := NewState()
		ch, cancel := s.Subscribe()
		cancel()

		s.MarkReady()
		select {
		case snap, ok := <-ch:
			if ok {
				t.Errorf("expected no delivery after cancel, got %+v", snap)
			}
		default:
		}
	})
}
