package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapin-insights/richness-cli/internal/boundary"
	"github.com/mapin-insights/richness-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scores, runs, and the boundary to the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
		}))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/scores", func(w http.ResponseWriter, r *http.Request) {
			scores, err := st.LatestScores(r.Context())
			if err != nil {
				zap.L().Error("latest scores query failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
				return
			}
			if scores == nil {
				scores = []store.ScoreRow{}
			}
			writeJSON(w, http.StatusOK, scores)
		})

		r.Get("/api/scores/{group}", func(w http.ResponseWriter, r *http.Request) {
			group := chi.URLParam(r, "group")
			scores, err := st.LatestScores(r.Context())
			if err != nil {
				zap.L().Error("latest scores query failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
				return
			}
			matched := []store.ScoreRow{}
			for _, sc := range scores {
				if sc.GroupValue == group {
					matched = append(matched, sc)
				}
			}
			if len(matched) == 0 {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "group not found"})
				return
			}
			writeJSON(w, http.StatusOK, matched)
		})

		r.Get("/api/runs", func(w http.ResponseWriter, r *http.Request) {
			runs, err := st.ListRuns(r.Context(), 50)
			if err != nil {
				zap.L().Error("run list query failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
				return
			}
			if runs == nil {
				runs = []store.Run{}
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/api/boundary", func(w http.ResponseWriter, r *http.Request) {
			fc, err := boundary.Load(cfg.Inputs.Boundary)
			if err != nil {
				zap.L().Error("boundary load failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boundary unavailable"})
				return
			}
			writeJSON(w, http.StatusOK, fc)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
