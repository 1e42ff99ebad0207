// cmd/web/main.go
//
// forecast – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Install a console logger so config errors are visible.
//
//  2. Load bootstrap config (defaults → conf/.env → conf/global.yaml →
//     FORECAST_* env).
//
//  3. Start the daily rotating logger (tees to console in a TTY).
//
//  4. Assemble the settings providers in merge order: host defaults, JSON
//     or YAML file, dotenv, SQL table, Vault secret, environment.
//
//  5. Build the allow list (SQL table or static list).
//
//  6. Create the AppSettings resolver.  Under the singleton policy the first
//     cycle runs here and any failure aborts the boot with an itemized
//     report.
//
//  7. Mount the forecast routes and /metrics, then serve until SIGINT or
//     SIGTERM.  The reload endpoint gets its own listener on
//     http.admin_addr, and SIGHUP re-runs the settings cycle too.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/forecast/internal/allowlist"
	"github.com/yanizio/forecast/internal/appsettings"
	"github.com/yanizio/forecast/internal/config"
	"github.com/yanizio/forecast/internal/database"
	"github.com/yanizio/forecast/internal/forecast"
	"github.com/yanizio/forecast/internal/logger"
	"github.com/yanizio/forecast/internal/middleware"
	"github.com/yanizio/forecast/internal/resolver"
	"github.com/yanizio/forecast/internal/server"
	"github.com/yanizio/forecast/internal/source"
	"github.com/yanizio/forecast/internal/vault"
)

const shutdownGrace = 10 * time.Second

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	boot := logger.Bootstrap()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatalw("load config", "err", err)
	}

	log, err := logger.New(logger.Options{
		Root:  cfg.Paths.Root,
		Tee:   runningInTTY(),
		Level: cfg.Log.Level,
	})
	if err != nil {
		boot.Fatalw("start logger", "err", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Optional settings DB ────────────────────────────────────────
	//
	var db *sqlx.DB
	if dsn := cfg.Settings.DSN; dsn != "" {
		db, err = database.Open(ctx, dsn)
		if err != nil {
			log.Fatalw("connect settings DB", "err", err)
		}
		defer db.Close()
		log.Infow("settings DB online")
	}

	//
	// ── 2.  Providers and allow list ────────────────────────────────────
	//
	providers, err := buildProviders(ctx, cfg, db)
	if err != nil {
		log.Fatalw("settings providers", "err", err)
	}

	checker, err := buildAllowList(ctx, cfg, db)
	if err != nil {
		log.Fatalw("allow list", "err", err)
	}

	//
	// ── 3.  Resolver ─────────────────────────────────────────────────────
	//
	policy, err := resolver.ParsePolicy(cfg.Settings.Policy)
	if err != nil {
		log.Fatalw("settings policy", "err", err)
	}
	res, err := appsettings.NewResolver(ctx, policy, checker,
		logger.NewEventReporter(log), providers...)
	if err != nil {
		// Itemized, one failed rule per line.
		log.Fatalf("settings failed at startup:\n%v", err)
	}
	log.Infow("settings resolver ready", "policy", policy, "providers", len(providers))

	go reloadOnHUP(ctx, res)

	//
	// ── 4.  Routes ───────────────────────────────────────────────────────
	//
	fh := forecast.New(res)
	timeouts := server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	}

	r := chi.NewRouter()
	r.Use(middleware.Scope, middleware.Security)
	r.Mount("/", fh.Routes())
	r.Handle("/metrics", promhttp.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, server.New(cfg.HTTP.ListenAddr, r, timeouts), shutdownGrace)
	})

	if addr := cfg.HTTP.AdminAddr; addr != "" {
		ar := chi.NewRouter()
		ar.Use(middleware.Scope, middleware.Security)
		ar.Mount("/", fh.AdminRoutes())
		g.Go(func() error {
			return server.Run(gctx, server.New(addr, ar, timeouts), shutdownGrace)
		})
	} else {
		log.Infow("admin endpoints disabled")
	}

	if err := g.Wait(); err != nil {
		log.Fatalw("http server", "err", err)
	}
}

// buildProviders lists sources lowest precedence first.
func buildProviders(ctx context.Context, cfg *config.Config, db *sqlx.DB) ([]source.Provider, error) {
	s := cfg.Settings
	ps := []source.Provider{appsettings.HostDefaults()}

	if s.File != "" {
		ps = append(ps, source.File(cfg.Abs(s.File), s.FileOptional))
	}
	if s.Dotenv != "" {
		ps = append(ps, source.Dotenv(cfg.Abs(s.Dotenv), true))
	}
	if s.Table != "" {
		ps = append(ps, source.SQL(db, s.Table))
	}
	if s.VaultPath != "" {
		vc, err := vault.New(ctx, zap.S().Infof)
		if err != nil {
			return nil, err
		}
		ps = append(ps, source.Secrets(vc, s.VaultPath, s.VaultTTL))
	}
	if s.EnvPrefix != "" {
		ps = append(ps, source.Env(s.EnvPrefix))
	}
	return ps, nil
}

func buildAllowList(ctx context.Context, cfg *config.Config, db *sqlx.DB) (allowlist.Checker, error) {
	if t := cfg.Settings.AllowTable; t != "" {
		return allowlist.FromSQL(ctx, db, t)
	}
	if len(cfg.Settings.AllowedIPs) == 0 {
		return allowlist.NewStatic(allowlist.DefaultAddresses...), nil
	}
	return allowlist.NewStatic(cfg.Settings.AllowedIPs...), nil
}

// reloadOnHUP re-runs the settings cycle on SIGHUP.  A failed reload keeps
// the previous value.
func reloadOnHUP(ctx context.Context, res *appsettings.Resolver) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			_ = res.Reload(ctx)
		}
	}
}
