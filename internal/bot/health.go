package bot

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"musicsearcher/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func healthRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	ok := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "service": "musicsearcher"})
	}
	r.Get("/", ok)
	r.Get("/health", ok)
	return r
}

// StartHealthServer serves liveness probes until ctx is done.
func StartHealthServer(ctx context.Context, port string) {
	srv := &http.Server{
		Addr:              net.JoinHostPort("0.0.0.0", port),
		Handler:           healthRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server", logger.Err(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
