// package auth defines the authentication contract and reactive state holder
package auth

import (
	"context"

	"github.com/Rafamp34/soundstream/internal/models"
)

// Credentials is the sign-in payload.
type Credentials struct {
	Email    string
	Password string
}

// SignUpData is the registration payload. Name and Surname are stored split
// by backends that keep them separate; the domain DisplayName joins them.
type SignUpData struct {
	Email    string
	Password string
	Name     string
	Surname  string
	Gender   string
	Image    string
}

// Service is the uniform authentication surface both backends implement.
//
// SignIn and SignUp transition the holder to the authenticated state on
// success; SignOut transitions back. Restore replays a persisted session at
// startup and marks the state ready whether or not one exists. CurrentUser
// waits for that probe to finish before answering, so it never races
// restore; it returns (nil, nil) when no session exists.
type Service interface {
	SignIn(ctx context.Context, creds Credentials) (models.User, error)
	SignUp(ctx context.Context, data SignUpData) (models.User, error)
	SignOut(ctx context.Context) error
	Restore(ctx context.Context)
	CurrentUser(ctx context.Context) (*models.User, error)
	State() *State
}

// TokenProvider is the capability interface for auth services that can hand
// out a bearer token synchronously. The REST repositories and the media
// uploader require it; the factory probes for it at construction time.
type TokenProvider interface {
	// Token returns the last-cached bearer token, or "" when unauthenticated.
	Token() string
}
