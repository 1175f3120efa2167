package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cloudspanner "cloud.google.com/go/spanner"
	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/gangerdermatology/auth"
	"github.com/gangerdermatology/auth/config"
	"github.com/gangerdermatology/auth/guard"
	"github.com/gangerdermatology/auth/profilestore"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/errors/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session endpoints and a guarded demo API",
		Long: `Serve mounts the session endpoints under /auth, every guard preset under
/api, and Prometheus metrics under /metrics.

Profiles are kept in memory unless database_url names a Postgres database
(postgres://...) or a Spanner database (projects/.../databases/...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(configPath)
			if err != nil {
				return errors.Wrap(err, "config.Load()")
			}

			return serve(ctx, addr, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file; the environment overrides it")

	return cmd
}

func serve(ctx context.Context, addr string, cfg *config.Config) error {
	profiles, closeStore, err := openProfileStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	a, err := auth.New(cfg, profiles, auth.WithMetrics(guard.NewMetrics(reg)))
	if err != nil {
		return errors.Wrap(err, "auth.New()")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router(a, reg),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.FromCtx(ctx).Infof("gangerauth listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "http.Server.ListenAndServe()")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http.Server.Shutdown()")
	}

	return nil
}

func openProfileStore(ctx context.Context, databaseURL string) (profilestore.Store, func(), error) {
	switch {
	case databaseURL == "":
		return profilestore.NewMemory(), func() {}, nil
	case strings.HasPrefix(databaseURL, "projects/"):
		client, err := cloudspanner.NewClient(ctx, databaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "spanner.NewClient()")
		}

		return profilestore.NewSpanner(client), client.Close, nil
	default:
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "pgxpool.New()")
		}

		return profilestore.NewPostgres(pool), pool.Close, nil
	}
}

func router(a *auth.Auth, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Mount("/auth", a.Routes())
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.With(a.WithAuth).Get("/me", whoami)
		r.With(a.WithStaffAuth).Get("/inventory", whoami)
		r.With(a.WithManagerAuth).Get("/reports", whoami)
		r.With(a.WithAdminAuth).Get("/admin/users", whoami)
		r.With(a.WithSuperAdminAuth).Get("/admin/settings", whoami)
		r.With(a.WithHIPAACompliance).Get("/patients/{patientID}", whoami)
		r.With(a.WithRateLimitedAuth(time.Minute, 30)).Post("/call-center/dial", whoami)
		r.Method(http.MethodGet, "/handouts", a.HandleStaff(func(r *http.Request) (*guard.Response, error) {
			profile, _ := sessioninfo.ProfileFromRequest(r)

			return guard.JSON(http.StatusOK, profile), nil
		}))
	})

	r.With(a.LoadSession).Get("/", func(w http.ResponseWriter, r *http.Request) {
		_ = httpio.NewEncoder(w).Ok(auth.Provider(r).State())
	})

	return r
}

func whoami(w http.ResponseWriter, r *http.Request) {
	_ = httpio.NewEncoder(w).Ok(sessioninfo.UserFromRequest(r))
}
