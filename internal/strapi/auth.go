package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/shared"
)

// BackendName is the session-store key for this backend.
const BackendName = "strapi"

// authUser is the wire user embedded in auth responses and /users/me.
type authUser struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Name     string      `json:"name,omitempty"`
	Surname  string      `json:"surname,omitempty"`
}

type authResponse struct {
	JWT  string   `json:"jwt"`
	User authUser `json:"user"`
}

// AuthOpts contains construction options for [Auth].
type AuthOpts struct {
	Client     *http.Client
	APIURL     string
	SignInPath string
	SignUpPath string
	MePath     string
	Store      *auth.Store // optional; nil disables session persistence
	Logger     *log.Logger
}

// Auth implements [auth.Service] and [auth.TokenProvider] for the Strapi
// backend. The JWT is single-writer (this service), multi-reader (every
// repository and the media uploader).
type Auth struct {
	httpClient *http.Client
	apiURL     string
	signInPath string
	signUpPath string
	mePath     string
	store      *auth.Store
	state      *auth.State
	logger     *log.Logger

	mu    sync.RWMutex
	token string
}

// NewAuth creates the Strapi authentication service in the uninitialized
// state; call [Auth.Restore] once at startup to run the session probe.
func NewAuth(opts AuthOpts) *Auth {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Auth{
		httpClient: opts.Client,
		apiURL:     opts.APIURL,
		signInPath: opts.SignInPath,
		signUpPath: opts.SignUpPath,
		mePath:     opts.MePath,
		store:      opts.Store,
		state:      auth.NewState(),
		logger:     shared.WithLogger(opts.Logger, "backend", BackendName, "component", "auth"),
	}
}

// State returns the shared read-only identity-state handle.
func (a *Auth) State() *auth.State { return a.state }

// Token returns the last-cached JWT, "" when unauthenticated.
func (a *Auth) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

// Restore runs the one-time startup session probe: it replays any persisted
// token against /users/me and marks the holder ready regardless of outcome.
// Ready never reverts afterwards.
func (a *Auth) Restore(ctx context.Context) {
	defer a.state.MarkReady()

	if a.store == nil {
		return
	}
	sess, err := a.store.Load(BackendName)
	if err != nil {
		a.logger.Warn("session restore failed", "err", err)
		return
	}
	if sess == nil || sess.Token == "" {
		return
	}

	a.setToken(sess.Token)
	user, err := a.me(ctx)
	if err != nil {
		a.logger.Info("stored session rejected, signing out", "err", err)
		a.setToken("")
		if err := a.store.Clear(BackendName); err != nil {
			a.logger.Warn("failed to clear stale session", "err", err)
		}
		return
	}
	a.state.SetSession(user)
}

// SignIn exchanges credentials for a JWT at the local auth endpoint.
func (a *Auth) SignIn(ctx context.Context, creds auth.Credentials) (models.User, error) {
	payload := map[string]string{"identifier": creds.Email, "password": creds.Password}

	var resp authResponse
	if err := a.post(ctx, a.signInPath, payload, &resp); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return a.establish(resp)
}

// SignUp registers a new account. Strapi provisions the profile in the same
// call, so no compensation flow is needed on this backend.
func (a *Auth) SignUp(ctx context.Context, data auth.SignUpData) (models.User, error) {
	payload := map[string]string{
		"username": models.EmailHandle(data.Email),
		"email":    data.Email,
		"password": data.Password,
		"name":     data.Name,
		"surname":  data.Surname,
	}

	var resp authResponse
	if err := a.post(ctx, a.signUpPath, payload, &resp); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return a.establish(resp)
}

// SignOut discards the cached token and persisted session. Strapi has no
// server-side session to revoke.
func (a *Auth) SignOut(ctx context.Context) error {
	a.setToken("")
	a.state.Clear()
	if a.store != nil {
		if err := a.store.Clear(BackendName); err != nil {
			return err
		}
	}
	return nil
}

// CurrentUser waits for the startup probe before answering, so it never
// races session restore. Returns (nil, nil) when no session exists.
func (a *Auth) CurrentUser(ctx context.Context) (*models.User, error) {
	if err := a.state.WaitReady(ctx); err != nil {
		return nil, err
	}
	return a.state.User(), nil
}

// establish records the session from a successful auth exchange.
func (a *Auth) establish(resp authResponse) (models.User, error) {
	user := mapAuthUser(resp.User)
	a.setToken(resp.JWT)
	a.state.SetSession(user)

	if a.store != nil {
		err := a.store.Save(auth.Session{
			Backend: BackendName,
			Token:   resp.JWT,
			UserID:  user.ID,
			Email:   user.Email,
		})
		if err != nil {
			a.logger.Warn("failed to persist session", "err", err)
		}
	}
	return user, nil
}

func (a *Auth) setToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// me fetches the profile behind the current token.
func (a *Auth) me(ctx context.Context) (models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiURL+a.mePath, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.Token())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return models.User{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.User{}, fmt.Errorf("%w: status %d", shared.ErrNotAuthenticated, resp.StatusCode)
	}

	var user authUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.User{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return mapAuthUser(user), nil
}

func (a *Auth) post(ctx context.Context, path string, payload any, result any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// mapAuthUser is the auth-side user adapter: numeric wire id to opaque
// string, handle derived from the email when the username is empty.
func mapAuthUser(u authUser) models.User {
	user := models.User{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Surname:  u.Surname,
	}
	if user.Username == "" {
		user.Username = models.EmailHandle(u.Email)
	}
	if u.Name != "" && u.Surname != "" {
		user.DisplayName = u.Name + " " + u.Surname
	}
	return user
}
