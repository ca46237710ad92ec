package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/shared"
)

// BackendName is the session-store key for this backend.
const BackendName = "firebase"

const (
	defaultAuthURL  = "https://identitytoolkit.googleapis.com/v1"
	defaultTokenURL = "https://securetoken.googleapis.com/v1/token"

	// collection holding one profile document per account, keyed by uid
	profileCollection = "users"
)

// accountResponse is the Identity Toolkit response shared by the
// sign-in and sign-up endpoints.
type accountResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	} `json:"users"`
}

// AuthOpts contains construction options for [Auth].
type AuthOpts struct {
	Client   *http.Client
	APIKey   string
	AuthURL  string // overrides the Identity Toolkit endpoint
	TokenURL string // overrides the secure token refresh endpoint
	Store    *auth.Store // optional; nil disables session persistence
	Logger   *log.Logger
}

// Auth implements [auth.Service] and [auth.TokenProvider] for the Firebase
// backend. ID tokens are short-lived, so the cached credential is an
// oauth2.TokenSource that refreshes through the secure token endpoint rather
// than a bare string.
type Auth struct {
	httpClient *http.Client
	apiKey     string
	authURL    string
	tokenURL   string
	store      *auth.Store
	state      *auth.State
	logger     *log.Logger
	profiles   *Client

	mu     sync.RWMutex
	source oauth2.TokenSource
	uid    string
}

// NewAuth creates the Firebase authentication service in the uninitialized
// state; call [Auth.Restore] once at startup to run the session probe.
//
// The document client that serves profile reads and writes is attached
// afterwards with [Auth.BindProfiles], because that client in turn needs this
// service as its token provider.
func NewAuth(opts AuthOpts) *Auth {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.AuthURL == "" {
		opts.AuthURL = defaultAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = defaultTokenURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Auth{
		httpClient: opts.Client,
		apiKey:     opts.APIKey,
		authURL:    opts.AuthURL,
		tokenURL:   opts.TokenURL,
		store:      opts.Store,
		state:      auth.NewState(),
		logger:     shared.WithLogger(opts.Logger, "backend", BackendName, "component", "auth"),
	}
}

// BindProfiles attaches the document client used for the users collection.
func (a *Auth) BindProfiles(client *Client) { a.profiles = client }

// State returns the shared read-only identity-state handle.
func (a *Auth) State() *auth.State { return a.state }

// Token returns a currently valid ID token, refreshing if the cached one has
// expired. Returns "" when unauthenticated or when the refresh fails.
func (a *Auth) Token() string {
	a.mu.RLock()
	source := a.source
	a.mu.RUnlock()

	if source == nil {
		return ""
	}
	tok, err := source.Token()
	if err != nil {
		a.logger.Warn("token refresh failed", "err", err)
		return ""
	}
	return tok.AccessToken
}

// Restore runs the one-time startup session probe: it refreshes the persisted
// session and verifies it against accounts:lookup, marking the holder ready
// regardless of outcome. Ready never reverts afterwards.
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
	if sess == nil || sess.RefreshToken == "" {
		return
	}

	// Expire the stored token up front so the source refreshes before use.
	a.setSession(sess.UserID, &oauth2.Token{
		AccessToken:  sess.Token,
		RefreshToken: sess.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	})

	idToken := a.Token()
	if idToken == "" {
		a.dropSession()
		return
	}
	uid, email, err := a.lookup(ctx, idToken)
	if err != nil {
		a.logger.Info("stored session rejected, signing out", "err", err)
		a.dropSession()
		return
	}
	a.state.SetSession(a.loadProfile(ctx, uid, email))
}

// SignIn exchanges credentials for an ID token pair.
func (a *Auth) SignIn(ctx context.Context, creds auth.Credentials) (models.User, error) {
	payload := map[string]any{
		"email":             creds.Email,
		"password":          creds.Password,
		"returnSecureToken": true,
	}

	var resp accountResponse
	if err := a.post(ctx, "/accounts:signInWithPassword", payload, &resp); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return a.establish(ctx, resp, "")
}

// SignUp registers a new account and provisions its profile document. The
// two writes are not atomic, so a failed profile write deletes the account
// just created to avoid leaving a half-registered user behind.
func (a *Auth) SignUp(ctx context.Context, data auth.SignUpData) (models.User, error) {
	payload := map[string]any{
		"email":             data.Email,
		"password":          data.Password,
		"returnSecureToken": true,
	}

	var resp accountResponse
	if err := a.post(ctx, "/accounts:signUp", payload, &resp); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := a.provisionProfile(ctx, resp, data); err != nil {
		if delErr := a.deleteAccount(ctx, resp.IDToken); delErr != nil {
			err = errors.Join(err, fmt.Errorf("account rollback failed: %w", delErr))
		}
		return models.User{}, err
	}
	return a.establish(ctx, resp, data.Name+" "+data.Surname)
}

// SignOut discards the cached token source and persisted session.
func (a *Auth) SignOut(ctx context.Context) error {
	a.setSession("", nil)
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
func (a *Auth) establish(ctx context.Context, resp accountResponse, displayName string) (models.User, error) {
	expiry := time.Now().Add(time.Hour)
	if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil {
		expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}
	a.setSession(resp.LocalID, &oauth2.Token{
		AccessToken:  resp.IDToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       expiry,
	})

	user := a.loadProfile(ctx, resp.LocalID, resp.Email)
	if user.DisplayName == "" {
		user.DisplayName = displayName
	}
	a.state.SetSession(user)

	if a.store != nil {
		err := a.store.Save(auth.Session{
			Backend:      BackendName,
			Token:        resp.IDToken,
			RefreshToken: resp.RefreshToken,
			UserID:       resp.LocalID,
			Email:        resp.Email,
		})
		if err != nil {
			a.logger.Warn("failed to persist session", "err", err)
		}
	}
	return user, nil
}

func (a *Auth) setSession(uid string, tok *oauth2.Token) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.uid = uid
	if tok == nil {
		a.source = nil
		return
	}
	a.source = oauth2.ReuseTokenSource(tok, &refreshSource{
		client:       a.httpClient,
		tokenURL:     a.tokenURL,
		apiKey:       a.apiKey,
		refreshToken: tok.RefreshToken,
	})
}

func (a *Auth) dropSession() {
	a.setSession("", nil)
	if err := a.store.Clear(BackendName); err != nil {
		a.logger.Warn("failed to clear stale session", "err", err)
	}
}

// loadProfile reads the users/{uid} document, falling back to an identity
// derived from the email alone when the document is missing or unreadable.
func (a *Auth) loadProfile(ctx context.Context, uid, email string) models.User {
	fallback := models.User{ID: uid, Username: models.EmailHandle(email), Email: email}
	if a.profiles == nil {
		return fallback
	}

	body, found, err := a.profiles.GetDocument(ctx, profileCollection, uid)
	if err != nil || !found {
		if err != nil {
			a.logger.Warn("failed to load profile document", "uid", uid, "err", err)
		}
		return fallback
	}
	user, err := NewUserMapping().One(body)
	if err != nil {
		a.logger.Warn("failed to decode profile document", "uid", uid, "err", err)
		return fallback
	}
	if user.Email == "" {
		user.Email = email
		user.Username = models.EmailHandle(email)
	}
	return user
}

// provisionProfile writes the users/{uid} document for a fresh account.
func (a *Auth) provisionProfile(ctx context.Context, resp accountResponse, data auth.SignUpData) error {
	if a.profiles == nil {
		return fmt.Errorf("%w: no profile client bound", shared.ErrBackendError)
	}

	profile := models.User{
		Email:       resp.Email,
		Name:        data.Name,
		Surname:     data.Surname,
		DisplayName: data.Name + " " + data.Surname,
	}
	if data.Image != "" {
		profile.Image = &models.Image{URL: data.Image}
	}
	doc, err := NewUserMapping().CreatePayload(profile)
	if err != nil {
		return err
	}

	// The profiles client takes its bearer token from this service, so the
	// fresh ID token has to be installed before the write goes out.
	a.setSession(resp.LocalID, &oauth2.Token{AccessToken: resp.IDToken, Expiry: time.Now().Add(time.Hour)})

	if _, err := a.profiles.SetDocument(ctx, profileCollection, resp.LocalID, doc.(*Document)); err != nil {
		a.setSession("", nil)
		return fmt.Errorf("failed to provision profile: %w", err)
	}
	return nil
}

// deleteAccount removes a just-created account when profile provisioning
// fails, compensating for the non-atomic two-step registration.
func (a *Auth) deleteAccount(ctx context.Context, idToken string) error {
	var resp struct{}
	return a.post(ctx, "/accounts:delete", map[string]string{"idToken": idToken}, &resp)
}

// lookup verifies an ID token and returns the account it belongs to.
func (a *Auth) lookup(ctx context.Context, idToken string) (uid, email string, err error) {
	var resp lookupResponse
	if err := a.post(ctx, "/accounts:lookup", map[string]string{"idToken": idToken}, &resp); err != nil {
		return "", "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if len(resp.Users) == 0 {
		return "", "", fmt.Errorf("%w: token matches no account", shared.ErrNotAuthenticated)
	}
	return resp.Users[0].LocalID, resp.Users[0].Email, nil
}

func (a *Auth) post(ctx context.Context, path string, payload any, result any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	endpoint := a.authURL + path + "?key=" + url.QueryEscape(a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
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

// refreshSource exchanges a Firebase refresh token for a fresh ID token.
// It is always wrapped in oauth2.ReuseTokenSource, which caches the result
// until expiry, so every call here is a real network exchange.
type refreshSource struct {
	client       *http.Client
	tokenURL     string
	apiKey       string
	refreshToken string
}

func (s *refreshSource) Token() (*oauth2.Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {s.refreshToken},
	}
	endpoint := s.tokenURL + "?key=" + url.QueryEscape(s.apiKey)

	resp, err := s.client.PostForm(endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrRefreshFailed, resp.StatusCode, bytes.TrimSpace(body))
	}

	var payload struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	expiry := time.Now().Add(time.Hour)
	if secs, err := strconv.Atoi(payload.ExpiresIn); err == nil {
		expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}
	if payload.RefreshToken != "" {
		s.refreshToken = payload.RefreshToken
	}
	return &oauth2.Token{
		AccessToken:  payload.IDToken,
		RefreshToken: s.refreshToken,
		Expiry:       expiry,
	}, nil
}
