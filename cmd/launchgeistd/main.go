// Command launchgeistd is the launchgeist coordinator daemon.
// It loads the configuration and resource catalog, serves launch, relaunch
// and status requests on the configured control interfaces (unix/tcp) and
// optionally exposes session metrics for Prometheus. Termination is gated
// on running sessions; SIGHUP reloads the resource catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfulz/launchgeist/internal/auth"
	"github.com/mfulz/launchgeist/internal/configd"
	"github.com/mfulz/launchgeist/internal/control"
	"github.com/mfulz/launchgeist/internal/lifecycle"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/internal/manager"
	"github.com/mfulz/launchgeist/internal/resource"
	"github.com/mfulz/launchgeist/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	_ "github.com/mfulz/launchgeist/internal/runner"
)

var version = "dev"

var (
	configPath string
	force      bool
)

var rootCmd = &cobra.Command{
	Use:          "launchgeistd",
	Short:        "Coordinator daemon for launchgeist sessions",
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to launchgeistd.yaml")
	rootCmd.Flags().BoolVar(&force, "force", false, "Exit on the first signal even if sessions are running")
}

func run() error {
	cfg, err := configd.LoadConfig(configPath)
	if err != nil {
		logging.Log.Errorf("[launchgeistd] Failed to load config: %v", err)
		return err
	}
	defer logging.Sync()
	defer lifecycle.Default.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := resource.Build(ctx, cfg.Resources, cfg.Discover)
	if err != nil {
		return fmt.Errorf("load resources: %w", err)
	}
	logging.Log.Infof("[launchgeistd] %d app(s), %d jdk(s), %d userdir(s), %d plugin(s) available",
		len(catalog.Apps), len(catalog.Jdks), len(catalog.UserDirs), len(catalog.Plugins))

	planOpts, err := cfg.Launch.Options(lifecycle.Default)
	if err != nil {
		return err
	}

	engine, err := auth.New(cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	opts := []manager.Option{manager.WithContext(ctx)}
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		collector := session.NewPrometheusMetricsCollector(cfg.Metrics.Namespace)
		opts = append(opts, manager.WithMetrics(collector))
		metricsSrv = serveMetrics(cfg.Metrics, collector)
	}
	mgr := manager.New(catalog, planOpts, opts...)

	servers, err := control.StartAll(ctx, cfg.Control.Instances, control.NewDispatcher(mgr, engine, cfg.AppRules, version))
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		logging.Log.Warnln("[launchgeistd] no control instance enabled")
	}

	logging.Log.Infoln("[launchgeistd] Daemon is running. Waiting for control events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	gate := &lifecycle.ShutdownGate{Busy: mgr.Running, Force: force}
	for sig := range sigChan {
		if sig == syscall.SIGHUP {
			reload(ctx, cfg, mgr)
			continue
		}
		if gate.Signal(sig) {
			break
		}
	}

	logging.Log.Infoln("[launchgeistd] Termination signal received. Shutting down...")
	cancel()
	for _, srv := range servers {
		_ = srv.Close()
	}
	if metricsSrv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		done()
	}
	logging.Log.Infoln("[launchgeistd] Shutdown complete. Exiting.")
	return nil
}

// reload rebuilds the catalog. Running sessions keep their configuration.
func reload(ctx context.Context, cfg *configd.Config, mgr *manager.Manager) {
	catalog, err := resource.Build(ctx, cfg.Resources, cfg.Discover)
	if err != nil {
		logging.Log.Errorf("[launchgeistd] reload failed, keeping the current catalog: %v", err)
		return
	}
	mgr.SetCatalog(catalog)
	logging.Log.Infof("[launchgeistd] catalog reloaded (%d apps)", len(catalog.Apps))
}

func serveMetrics(cfg configd.MetricsConfig, collector *session.PrometheusMetricsCollector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Log.Infof("[launchgeistd] metrics on http://%s%s", cfg.Listen, cfg.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.Errorf("[launchgeistd] metrics server: %v", err)
		}
	}()
	return srv
}
