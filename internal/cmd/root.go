// Package cmd wires the control station's configuration, logging, and
// long-lived task set together, the way DMRHub's internal/cmd/root.go
// wires its HTTP/DMR/scheduler startup: one Cobra command, one config
// load, and an errgroup of supervised goroutines sharing a single
// cancellation.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/config"
	"github.com/keystone-rf/p25ctrl/internal/kv"
	"github.com/keystone-rf/p25ctrl/internal/logging"
	"github.com/keystone-rf/p25ctrl/internal/metrics"
	"github.com/keystone-rf/p25ctrl/internal/p25/control"
	"github.com/keystone-rf/p25ctrl/internal/pubsub"
	"github.com/USA-RedDragon/configulator"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"golang.org/x/sync/errgroup"
)

// NewCommand builds the root Cobra command, the same cobra.Command +
// Annotations["version"/"commit"] shape the teacher builds.
func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "p25ctrl",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	fmt.Printf("p25ctrl - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return fmt.Errorf("failed to get config from context: %w", err)
	}
	cfg, err := c.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelInfo:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	}
	slog.SetDefault(logger)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.CreateMetricsServer(&cfg); err != nil {
				logging.Errorf("metrics server: %s", err)
			}
		}()
	}

	kvStore, err := kv.MakeKV(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("failed to build key-value store: %w", err)
	}
	ps, err := pubsub.MakePubSub(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("failed to build pubsub: %w", err)
	}

	siteData := buildSiteData(cfg.Site)
	identities := buildIdentityTable(cfg.Channels)
	channels := channelPool(cfg)

	engineCfg := control.DefaultConfig()
	engineCfg.GrantTimer = cfg.Timers.GrantDuration
	engineCfg.TalkgroupHangTimer = cfg.Timers.HangTime
	engineCfg.SNDCPReadyTimeout = cfg.Timers.SNDCPReadyTimeout
	engineCfg.SNDCPStandbyTimeout = cfg.Timers.SNDCPStandbyTimeout

	// A nil key lookup disables voice decryption; key provisioning is a
	// separate operational concern from process startup.
	engine := control.New(siteData, identities, channels, nil, engineCfg)
	engine.IsControlChannel = cfg.Site.ControlChannel

	transport, err := buildModemTransport(cfg.Modem)
	if err != nil {
		return fmt.Errorf("failed to build modem transport: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if transport != nil {
		g.Go(func() error { return runModemTask(gctx, transport, engine) })
	} else {
		logging.Messagef("modem transport disabled, running network-linking-only")
	}

	if cfg.Peer.Enabled {
		g.Go(func() error { return runPeerTask(gctx, cfg.Peer, cfg.Site, engine) })
	}

	g.Go(func() error { return runTickLoop(gctx, cfg.Timers.Tick, engine) })
	g.Go(func() error { return runStatusPublisher(gctx, cfg.Site.SiteID, engine, ps, kvStore) })

	taskErr := make(chan error, 1)
	go func() { taskErr <- g.Wait() }()

	stop := func(sig os.Signal) {
		logging.Errorf("shutting down due to signal %s", sig)
		cancel()

		wg := new(sync.WaitGroup)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := <-taskErr; err != nil {
				logging.Errorf("task group exited with error: %s", err)
			}
		}()

		const timeout = 10 * time.Second
		done := make(chan struct{})
		go func() {
			defer close(done)
			wg.Wait()
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			logging.Errorf("shutdown timed out waiting for tasks")
		}

		if err := ps.Close(); err != nil {
			logging.Errorf("failed to close pubsub: %s", err)
		}
		if err := kvStore.Close(); err != nil {
			logging.Errorf("failed to close key-value store: %s", err)
		}
		logging.Errorf("shutdown safely completed")
		logging.Close()
		os.Exit(0)
	}

	shutdown.AddWithParam(stop)
	shutdown.Listen(syscall.SIGINT, syscall.SIGKILL, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	return nil
}
