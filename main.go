package main

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-press/internal/api"
	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/editor"
	"github.com/debemdeboas/the-press/internal/logger"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/publish"
	"github.com/debemdeboas/the-press/internal/render"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/debemdeboas/the-press/internal/routes"
	"github.com/debemdeboas/the-press/internal/sse"
	"github.com/debemdeboas/the-press/internal/storage"
	"github.com/debemdeboas/the-press/internal/theme"
	"github.com/debemdeboas/the-press/internal/upload"
	"github.com/debemdeboas/the-press/internal/util"
	"github.com/debemdeboas/the-press/internal/util/compression"
	"github.com/debemdeboas/the-press/internal/views"
)

//go:embed templates/*
var content embed.FS

const (
	draftSweepInterval = time.Minute
	draftMaxIdle       = 2 * time.Hour
)

type app struct {
	cfg *config.Config

	db        db.Db
	redis     *redis.Client
	posts     *repository.DBPostRepository
	publisher *publish.Controller
	drafts    *editor.MemoryRepository
	clients   *sse.SSEClients
	auth      auth.AuthProvider

	handler http.Handler
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	l := logger.New(cfg.Logging.Level)
	setLoggers(l)

	ctx := context.Background()
	a, err := newApp(ctx, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to start")
	}
	defer a.close()

	go a.warmCache(ctx)
	go a.sweepDrafts(ctx)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	l.Info().Str("addr", addr).Str("auth", cfg.Auth.Type).Str("storage", cfg.Storage.Driver).Msg("Listening")
	l.Fatal().Err(http.ListenAndServe(addr, a.handler)).Msg("Server stopped")
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l.With().Str("component", "config").Logger())
	db.SetLogger(l.With().Str("component", "db").Logger())
	repository.SetLogger(l.With().Str("component", "repository").Logger())
	publish.SetLogger(l.With().Str("component", "publish").Logger())
	editor.SetLogger(l.With().Str("component", "editor").Logger())
	upload.SetLogger(l.With().Str("component", "upload").Logger())
	storage.SetLogger(l.With().Str("component", "storage").Logger())
	views.SetLogger(l.With().Str("component", "views").Logger())
	render.SetLogger(l.With().Str("component", "render").Logger())
	auth.SetLogger(l.With().Str("component", "auth").Logger())
	api.SetLogger(l.With().Str("component", "api").Logger())
}

func newApp(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, clients: sse.NewSSEClients(), drafts: editor.NewMemoryRepository()}

	database, err := db.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := database.InitDb(); err != nil {
		return nil, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
	}
	a.db = database

	compressor, err := compression.ForName(cfg.Database.Compression)
	if err != nil {
		return nil, err
	}
	a.posts = repository.NewDBPostRepository(database, compressor)
	a.posts.SetReloadNotifier(a.clients.NotifyReload)
	a.publisher = publish.NewController(a.posts, cfg.Publishing.RefreshPublishedAt)
	users := repository.NewDBUserRepository(database)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	var counter views.Counter = views.NewSQLCounter(database)
	if cfg.Views.Driver == "redis" {
		a.redis = views.NewRedisClient(cfg.Views.RedisAddr, cfg.Views.RedisPassword, cfg.Views.RedisDB)
		rc := views.NewRedisCounter(a.redis)
		if err := rc.Ping(ctx); err != nil {
			return nil, err
		}
		counter = rc
	}

	mux := http.NewServeMux()

	switch cfg.Auth.Type {
	case "clerk":
		a.auth = auth.NewClerkAuthProvider(cfg.Auth.ClerkKey, users)
	default:
		p, err := auth.NewEd25519AuthProvider(cfg.Auth.Ed25519PublicKey, cfg.Auth.HeaderName, model.UserID(cfg.Auth.AdminUserID))
		if err != nil {
			return nil, fmt.Errorf(config.ErrCreateProviderFmt, err)
		}
		if err := users.Upsert(ctx, model.User{ID: p.UserID(), Username: cfg.Auth.AdminUserID}); err != nil {
			return nil, err
		}
		if err := auth.RegisterEd25519AuthRoutes(mux, p); err != nil {
			return nil, err
		}
		a.auth = p
	}

	api.New(api.Deps{
		Publisher: a.publisher,
		Posts:     a.posts,
		Users:     users,
		Drafts:    a.drafts,
		Uploader:  upload.NewUploader(store, cfg.Uploads.MaxBytes, cfg.Uploads.AllowedMIME, cfg.Uploads.Prefix),
		Store:     store,
		Views:     counter,
		Auth:      a.auth,
		Config:    cfg,
	}).Register(mux)

	adminPage, err := template.ParseFS(content, config.TemplatesLocalDir+"/"+config.TemplateAdmin)
	if err != nil {
		return nil, err
	}

	mux.HandleFunc(routes.RobotsPath, serveRobots)
	mux.HandleFunc(routes.SyntaxCSS, serveSyntaxCSS)
	mux.HandleFunc(routes.SSEPath, sse.EventsHandler(a.clients))
	mux.HandleFunc(routes.WebhookUser, a.auth.HandleWebhookUser)
	mux.Handle(routes.AdminPath, auth.RequireLogin(a.auth)(a.serveAdmin(adminPage)))
	if fsStore, ok := store.(*storage.FSStore); ok {
		mux.Handle(routes.Uploads, http.StripPrefix(routes.Uploads, http.FileServer(http.Dir(fsStore.Root()))))
	}

	authed := a.auth.WithHeaderAuthorization()(secureHeaders(cacheIt(cfg.Uploads.CacheControl, mux)))
	a.handler = logger.Middleware(l)(authed)
	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// warmCache renders every published article once so first readers hit the cache.
func (a *app) warmCache(ctx context.Context) {
	posts, err := a.posts.ListPublished(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to warm render cache")
		return
	}
	for _, p := range posts {
		render.WarmCache(p, theme.GetDefaultSyntaxTheme())
	}
}

func (a *app) sweepDrafts(ctx context.Context) {
	ticker := time.NewTicker(draftSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.drafts.Sweep(draftMaxIdle)
		case <-ctx.Done():
			return
		}
	}
}

// serveAdmin renders the author's post list.
func (a *app) serveAdmin(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.auth.GetUserIdFromSession(r)
		if err != nil {
			http.Error(w, config.ErrNotAuthenticated, http.StatusUnauthorized)
			return
		}

		posts, err := a.publisher.List(r.Context(), userID)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to list posts")
			http.Error(w, config.ErrFetchPosts, http.StatusInternalServerError)
			return
		}

		data := struct {
			SiteName string
			Posts    []model.Post
		}{
			SiteName: a.cfg.Site.Name,
			Posts:    posts,
		}

		w.Header().Set(config.HCType, config.CTypeHTML)
		if err := tmpl.ExecuteTemplate(w, config.TemplateNameAdmin, data); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to render admin page")
		}
	}
}

func serveRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User-agent: *\nDisallow: /admin/\nDisallow: /api/"))
}

// serveSyntaxCSS returns the stylesheet of the request's syntax theme.
func serveSyntaxCSS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	themeStyle := []byte(theme.GenerateSyntaxCSS(theme.GetSyntaxThemeFromRequest(r)))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.WriteHeader(http.StatusOK)
	w.Write(themeStyle)
}

// cacheIt marks API answers as uncacheable and lets uploaded files be cached.
func cacheIt(uploadsCacheControl string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, routes.Uploads):
			w.Header().Set(config.HCacheControl, uploadsCacheControl)
			w.Header().Set(config.HContentSecurityPolicy, "default-src 'none'; sandbox")
		case r.URL.Path == routes.SyntaxCSS:
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set("Vary", "Cookie")
		default:
			w.Header().Set(config.HCacheControl, "no-store")
		}
		h.ServeHTTP(w, r)
	})
}

func secureHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routes.RobotsPath {
			h.ServeHTTP(w, r)
			return
		}
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		h.ServeHTTP(w, r)
	})
}
