// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/repositories"
)

// MemoryRepository is an in-memory [repositories.Repository] double. Entity
// plumbing (id access, patch application, filterable fields) is injected per
// entity type; the prebuilt constructors below cover the domain models.
type MemoryRepository[T any, P any] struct {
	// FailWith, when set, makes every operation return this error.
	FailWith error

	getID  func(T) string
	withID func(T, string) T
	apply  func(T, P) T
	fields func(T) map[string][]string

	mu    sync.Mutex
	seq   int
	order []string
	items map[string]T
}

func NewMemoryRepository[T any, P any](
	getID func(T) string,
	withID func(T, string) T,
	apply func(T, P) T,
	fields func(T) map[string][]string,
) *MemoryRepository[T, P] {
	return &MemoryRepository[T, P]{
		getID:  getID,
		withID: withID,
		apply:  apply,
		fields: fields,
		items:  make(map[string]T),
	}
}

// Seed stores entities directly, assigning ids to any without one.
func (m *MemoryRepository[T, P]) Seed(entities ...T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entity := range entities {
		m.storeLocked(entity)
	}
}

func (m *MemoryRepository[T, P]) storeLocked(entity T) T {
	id := m.getID(entity)
	if id == "" {
		m.seq++
		id = fmt.Sprintf("mem-%d", m.seq)
		entity = m.withID(entity, id)
	}
	if _, exists := m.items[id]; !exists {
		m.order = append(m.order, id)
	}
	m.items[id] = entity
	return entity
}

func (m *MemoryRepository[T, P]) GetAll(ctx context.Context, page, pageSize int, filters repositories.SearchParams) (models.Page[T], error) {
	if m.FailWith != nil {
		return models.Page[T]{}, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]T, 0, len(m.order))
	for _, id := range m.order {
		if m.matchesLocked(m.items[id], filters) {
			matched = append(matched, m.items[id])
		}
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = len(matched)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	pages := (len(matched) + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}

	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return models.Page[T]{Page: page, PageSize: pageSize, Pages: pages, Items: matched[start:end]}, nil
}

func (m *MemoryRepository[T, P]) matchesLocked(entity T, filters repositories.SearchParams) bool {
	if len(filters) == 0 {
		return true
	}
	fields := m.fields(entity)
	for key, cond := range filters {
		hit := false
		for _, value := range fields[key] {
			if cond.Matches(value) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func (m *MemoryRepository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entity, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &entity, nil
}

func (m *MemoryRepository[T, P]) Add(ctx context.Context, entity T) (T, error) {
	var zero T
	if m.FailWith != nil {
		return zero, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeLocked(entity), nil
}

func (m *MemoryRepository[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	if m.FailWith != nil {
		return zero, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entity, ok := m.items[id]
	if !ok {
		return zero, fmt.Errorf("no entity with id %s", id)
	}
	entity = m.apply(entity, patch)
	m.items[id] = entity
	return entity, nil
}

func (m *MemoryRepository[T, P]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	if m.FailWith != nil {
		return zero, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entity, ok := m.items[id]
	if !ok {
		return zero, fmt.Errorf("no entity with id %s", id)
	}
	delete(m.items, id)
	for i, stored := range m.order {
		if stored == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return entity, nil
}

// NewSongRepository builds a memory double over songs.
func NewSongRepository() *MemoryRepository[models.Song, models.SongPatch] {
	return NewMemoryRepository(
		func(s models.Song) string { return s.ID },
		func(s models.Song, id string) models.Song { s.ID = id; return s },
		applySongPatch,
		func(s models.Song) map[string][]string {
			return map[string][]string{
				"id":     {s.ID},
				"name":   {s.Name},
				"author": {s.Author},
			}
		},
	)
}

func applySongPatch(s models.Song, p models.SongPatch) models.Song {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Author != nil {
		s.Author = *p.Author
	}
	if p.Album != nil {
		s.Album = *p.Album
	}
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
	if p.Image != nil {
		s.Image = p.Image
	}
	if p.PlaylistIDs != nil {
		s.PlaylistIDs = *p.PlaylistIDs
	}
	if p.ArtistIDs != nil {
		s.ArtistIDs = *p.ArtistIDs
	}
	return s
}

// NewPlaylistRepository builds a memory double over playlists. The "user"
// filter key matches any member, mirroring how both live backends answer
// "playlists of user X".
func NewPlaylistRepository() *MemoryRepository[models.Playlist, models.PlaylistPatch] {
	return NewMemoryRepository(
		func(p models.Playlist) string { return p.ID },
		func(p models.Playlist, id string) models.Playlist { p.ID = id; return p },
		applyPlaylistPatch,
		func(p models.Playlist) map[string][]string {
			return map[string][]string{
				"id":   {p.ID},
				"name": {p.Name},
				"user": p.UserIDs,
				"song": p.SongIDs,
			}
		},
	)
}

func applyPlaylistPatch(pl models.Playlist, p models.PlaylistPatch) models.Playlist {
	if p.Name != nil {
		pl.Name = *p.Name
	}
	if p.Author != nil {
		pl.Author = *p.Author
	}
	if p.Duration != nil {
		pl.Duration = *p.Duration
	}
	if p.SongIDs != nil {
		pl.SongIDs = *p.SongIDs
	}
	if p.UserIDs != nil {
		pl.UserIDs = *p.UserIDs
	}
	if p.Image != nil {
		pl.Image = p.Image
	}
	return pl
}

// NewUserRepository builds a memory double over users.
func NewUserRepository() *MemoryRepository[models.User, models.UserPatch] {
	return NewMemoryRepository(
		func(u models.User) string { return u.ID },
		func(u models.User, id string) models.User { u.ID = id; return u },
		applyUserPatch,
		func(u models.User) map[string][]string {
			return map[string][]string{
				"id":       {u.ID},
				"username": {u.Username},
				"email":    {u.Email},
			}
		},
	)
}

func applyUserPatch(u models.User, p models.UserPatch) models.User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Surname != nil {
		u.Surname = *p.Surname
	}
	if p.Image != nil {
		u.Image = p.Image
	}
	if p.Followers != nil {
		u.Followers = *p.Followers
	}
	if p.Following != nil {
		u.Following = *p.Following
	}
	if p.PlaylistIDs != nil {
		u.PlaylistIDs = *p.PlaylistIDs
	}
	return u
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// FakeAuth is an in-memory [auth.Service] and [auth.TokenProvider] double.
// The zero value is signed out; construct with [NewFakeAuth] to seed a
// signed-in user.
type FakeAuth struct {
	// Err, when set, makes SignIn and SignUp fail with this error.
	Err error
	// TokenValue is returned by Token while signed in.
	TokenValue string

	state *auth.State
	user  *models.User
}

func NewFakeAuth(user *models.User) *FakeAuth {
	f := &FakeAuth{TokenValue: "test-token", state: auth.NewState()}
	if user != nil {
		u := *user
		f.user = &u
		f.state.SetSession(u)
	}
	f.state.MarkReady()
	return f
}

func (f *FakeAuth) SignIn(ctx context.Context, creds auth.Credentials) (models.User, error) {
	if f.Err != nil {
		return models.User{}, f.Err
	}
	user := models.User{ID: "fake-user", Email: creds.Email, Username: models.EmailHandle(creds.Email)}
	if f.user != nil {
		user = *f.user
	}
	f.user = &user
	f.state.SetSession(user)
	return user, nil
}

func (f *FakeAuth) SignUp(ctx context.Context, data auth.SignUpData) (models.User, error) {
	if f.Err != nil {
		return models.User{}, f.Err
	}
	user := models.User{
		ID:          "fake-user",
		Email:       data.Email,
		Username:    models.EmailHandle(data.Email),
		Name:        data.Name,
		Surname:     data.Surname,
		DisplayName: data.Name + " " + data.Surname,
	}
	f.user = &user
	f.state.SetSession(user)
	return user, nil
}

func (f *FakeAuth) SignOut(ctx context.Context) error {
	f.user = nil
	f.state.Clear()
	return nil
}

func (f *FakeAuth) Restore(ctx context.Context) {}

func (f *FakeAuth) CurrentUser(ctx context.Context) (*models.User, error) {
	if err := f.state.WaitReady(ctx); err != nil {
		return nil, err
	}
	return f.state.User(), nil
}

func (f *FakeAuth) State() *auth.State { return f.state }

func (f *FakeAuth) Token() string {
	if f.user == nil {
		return ""
	}
	return f.TokenValue
}
