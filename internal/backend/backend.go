// package backend selects and assembles one backend's collaborators
package backend

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/firestore"
	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/repositories"
	"github.com/Rafamp34/soundstream/internal/shared"
	"github.com/Rafamp34/soundstream/internal/strapi"
)

// Kind identifies one supported backend.
type Kind string

const (
	KindStrapi   Kind = "strapi"
	KindFirebase Kind = "firebase"
)

// ParseKind validates a backend selection token. Unknown tokens fail here,
// at startup, rather than surfacing as broken repositories later.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindStrapi:
		return KindStrapi, nil
	case KindFirebase:
		return KindFirebase, nil
	}
	return "", fmt.Errorf("%w: %q", shared.ErrUnknownBackend, s)
}

// Container holds one backend's fully wired collaborators. Everything behind
// the interfaces is backend-specific; nothing above this package knows which
// backend is active.
//
// Media is nil for backends without an upload surface; callers must check.
type Container struct {
	Kind      Kind
	Songs     repositories.Repository[models.Song, models.SongPatch]
	Playlists repositories.Repository[models.Playlist, models.PlaylistPatch]
	Users     repositories.Repository[models.User, models.UserPatch]
	Auth      auth.Service
	Media     repositories.Uploader
}

// Opts contains construction options for [Build].
type Opts struct {
	Config *shared.Config
	Client *http.Client
	Store  *auth.Store // optional; nil disables session persistence
	Logger *log.Logger
}

// Build assembles the container for the configured backend. The auth service
// is probed for [auth.TokenProvider] before any repository is constructed;
// a service that cannot hand out tokens is a wiring error, not something to
// discover on the first authenticated request.
func Build(opts Opts) (*Container, error) {
	if opts.Config == nil {
		return nil, shared.ErrMissingConfig
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	kind, err := ParseKind(opts.Config.Backend)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindStrapi:
		return buildStrapi(opts)
	default:
		return buildFirebase(opts)
	}
}

func buildStrapi(opts Opts) (*Container, error) {
	cfg := opts.Config.Strapi

	authSvc := strapi.NewAuth(strapi.AuthOpts{
		Client:     opts.Client,
		APIURL:     cfg.APIURL,
		SignInPath: cfg.SignInPath,
		SignUpPath: cfg.SignUpPath,
		MePath:     cfg.MePath,
		Store:      opts.Store,
		Logger:     opts.Logger,
	})
	provider, err := probeToken(authSvc, KindStrapi)
	if err != nil {
		return nil, err
	}

	return &Container{
		Kind:      KindStrapi,
		Songs:     strapi.NewRepository(opts.Client, provider, cfg.APIURL, cfg.SongsResource, strapi.NewSongMapping(), opts.Logger),
		Playlists: strapi.NewRepository(opts.Client, provider, cfg.APIURL, cfg.PlaylistsResource, strapi.NewPlaylistMapping(), opts.Logger),
		Users:     strapi.NewRepository(opts.Client, provider, cfg.APIURL, cfg.UsersResource, strapi.NewUserMapping(), opts.Logger),
		Auth:      authSvc,
		Media:     strapi.NewMedia(opts.Client, cfg.APIURL+cfg.UploadPath, provider),
	}, nil
}

func buildFirebase(opts Opts) (*Container, error) {
	cfg := opts.Config.Firebase

	authSvc := firestore.NewAuth(firestore.AuthOpts{
		Client:   opts.Client,
		APIKey:   cfg.APIKey,
		AuthURL:  cfg.AuthURL,
		TokenURL: cfg.TokenURL,
		Store:    opts.Store,
		Logger:   opts.Logger,
	})
	provider, err := probeToken(authSvc, KindFirebase)
	if err != nil {
		return nil, err
	}

	client := firestore.NewClient(firestore.ClientOpts{
		Client:    opts.Client,
		ProjectID: cfg.ProjectID,
		BaseURL:   cfg.BaseURL,
		Token:     provider,
		Logger:    opts.Logger,
	})
	authSvc.BindProfiles(client)
	parent := client.Parent()

	// "id" filters address the document name itself; the repository turns
	// them into __name__ reference constraints.
	songHints := firestore.QueryHints{
		Fields: map[string]string{"id": "__name__"},
		Array:  map[string]bool{"playlistid_IDS": true, "artistid_IDS": true},
		Refs:   map[string]string{"playlistid_IDS": "playlists", "__name__": "songs"},
	}
	playlistHints := firestore.QueryHints{
		Fields: map[string]string{"id": "__name__", "user": "users_IDS"},
		Array:  map[string]bool{"users_IDS": true},
		Refs:   map[string]string{"__name__": "playlists"},
	}
	userHints := firestore.QueryHints{
		Fields: map[string]string{"id": "__name__"},
		Array:  map[string]bool{"followers": true, "following": true, "playlists_ids": true},
		Refs:   map[string]string{"__name__": "users"},
	}

	return &Container{
		Kind:      KindFirebase,
		Songs:     firestore.NewRepository(client, "songs", firestore.NewSongMapping(parent), songHints),
		Playlists: firestore.NewRepository(client, "playlists", firestore.NewPlaylistMapping(parent), playlistHints),
		Users:     firestore.NewRepository(client, "users", firestore.NewUserMapping(), userHints),
		Auth:      authSvc,
		// no upload surface on this backend; profile and playlist images
		// carry external URLs instead
	}, nil
}

// probeToken is the construction-time capability check for bearer tokens.
func probeToken(svc auth.Service, kind Kind) (auth.TokenProvider, error) {
	provider, ok := svc.(auth.TokenProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s auth service", shared.ErrMissingToken, kind)
	}
	return provider, nil
}
