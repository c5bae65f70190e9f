package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/easel/internal/auth"
	"github.com/inamate/easel/internal/collab"
	"github.com/inamate/easel/internal/config"
	mw "github.com/inamate/easel/internal/middleware"
	"github.com/inamate/easel/internal/store"
	"github.com/inamate/easel/internal/studio"
	"github.com/inamate/easel/internal/typeid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := store.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	queries := store.New(pool)

	hub := collab.NewHub(
		func(ctx context.Context, studioID string) ([]string, error) {
			return queries.ListOpcodes(ctx, studioID)
		},
		func(ctx context.Context, studioID string, ops []string) error {
			return store.ReplaceOpcodes(ctx, pool, studioID, ops)
		},
		cfg.HistoryLimit,
	)
	go hub.Run()

	authService := auth.NewService(queries, cfg.JWTSecret)
	studioService := studio.NewService(queries, authService)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      newRouter(cfg, hub, authService, studioService),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		hub.Stop()
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	// The hub flushes dirty opcode logs before the pool closes.
	hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newRouter(cfg *config.Config, hub *collab.Hub, authService *auth.Service, studioService *studio.Service) http.Handler {
	authHandler := auth.NewHandler(authService)
	studioHandler := studio.NewHandler(studioService, func(studioID string) ([]string, bool) {
		room, ok := hub.Room(studioID)
		if !ok {
			return nil, false
		}
		ops, _ := room.State().Log()
		return ops, true
	})

	r := mux.NewRouter()
	r.Use(mw.Recovery, mw.Logger, mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost, http.MethodOptions)

	// Viewers join without an account.
	r.HandleFunc("/studios/{studioId}", studioHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/studios/{studioId}/opcodes", studioHandler.Opcodes).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)
	api.HandleFunc("/studios", studioHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/studios", studioHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/studios/{studioId}", studioHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/studios/{studioId}/host", studioHandler.Host).Methods(http.MethodPost)

	r.HandleFunc("/ws/studio/{studioId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, studioService, cfg.OriginPatterns())
	})
	return r
}

// handleWebSocket admits a studio connection. A studio host token in the
// token query param makes the client the host; without one the client joins
// as an anonymous viewer.
func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, studios *studio.Service, origins []string) {
	studioID := mux.Vars(r)["studioId"]
	if err := typeid.Validate(studioID, typeid.PrefixStudio); err != nil {
		http.Error(w, "studio not found", http.StatusNotFound)
		return
	}

	if _, err := studios.Get(r.Context(), studioID); err != nil {
		if errors.Is(err, studio.ErrNotFound) {
			http.Error(w, "studio not found", http.StatusNotFound)
			return
		}
		slog.Error("lookup studio", "studio", studioID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	userID := "anon-" + uuid.New().String()[:8]
	displayName := "Viewer"
	role := auth.RoleViewer

	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := authSvc.ValidateStudioToken(token)
		if err != nil || claims.StudioID != studioID {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.Subject
		role = claims.Role
		displayName = "Host"
		if user, err := authSvc.GetUser(r.Context(), userID); err == nil {
			displayName = user.DisplayName
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(hub, conn, userID, displayName, studioID, typeid.NewClientID(), role)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
