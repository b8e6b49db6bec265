// Package main wires the Sentinel delivery core into a small CLI: it
// builds a routing tree from configuration, runs the demo producers
// against it, and optionally serves prometheus metrics.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sentinel/audit"
	"sentinel/config"
	"sentinel/core"
	"sentinel/monitor"
	"sentinel/sink"
)

// initLogger initializes the zap logger with colored console output.
func initLogger() (*zap.Logger, *zap.SugaredLogger) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	zapCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapcore.InfoLevel,
	)
	logger := zap.New(zapCore, zap.AddCaller())
	return logger, logger.Sugar()
}

// buildTree assembles the demo routing tree: two regional groups plus a
// severity-filtered on-call group, all under one root.
func buildTree(cfg *config.Config, factory *sink.Factory) (*sink.Composite, error) {
	elastic, err := factory.Create(sink.VendorElastic)
	if err != nil {
		return nil, err
	}
	splunk, err := factory.Create(sink.VendorSplunk)
	if err != nil {
		return nil, err
	}

	eu := sink.NewComposite("eu", elastic)
	us := sink.NewComposite("us", splunk)
	oncall := sink.NewFilteredComposite("oncall-high",
		[]core.Severity{core.SeverityHigh}, nil, splunk)

	root := sink.NewComposite("root", eu, us, oncall)
	if cfg.FanoutIsolation {
		root.WithIsolation()
	}
	return root, nil
}

// serveMetrics exposes /metrics on the configured listener.
func serveMetrics(listen string, sugar *zap.SugaredLogger) {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		sugar.Infow("Serving metrics", "listen", listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Errorw("Metrics server stopped", "error", err)
		}
	}()
}

// runDemo drives the routing tree with the demo producers and shows the
// guarded path and the audited path.
func runDemo(ctx context.Context, cfg *config.Config, factory *sink.Factory, sugar *zap.SugaredLogger) error {
	root, err := buildTree(cfg, factory)
	if err != nil {
		return err
	}

	auth := monitor.NewAuthMonitor(root)
	firewall := monitor.NewFirewallMonitor(root)

	if err := auth.RecordFailedLogin(ctx, "alice", "203.0.113.25"); err != nil {
		sugar.Errorw("Failed to route auth event", "error", err)
	}
	if err := firewall.RecordPortScan(ctx, "198.51.100.10", "10.0.0.5"); err != nil {
		sugar.Errorw("Failed to route network event", "error", err)
	}

	// Guarded path: credential + rate budget in front of a lazily dialed
	// transport for the configured vendor.
	guarded := sink.NewGuarded("siem-proxy", cfg.Guard.Endpoint, cfg.Guard.Token,
		cfg.Guard.RateLimit,
		func(context.Context, string, string) (sink.Sink, error) {
			return factory.Create("")
		},
		sugar)
	guardedAuth := monitor.NewAuthMonitor(guarded)
	if err := guardedAuth.RecordFailedLogin(ctx, "bob", "198.51.100.23"); err != nil {
		sugar.Warnw("Guarded delivery refused", "error", err)
	}

	// Audited path: one JSONL record per wrapped operation.
	emitter := audit.NewFileEmitter(cfg.Audit.LogPath)
	err = audit.Run(ctx, emitter, sugar, "record_failed_login", audit.Fields{
		Kind:     "auth",
		Severity: core.SeverityMedium,
		Message:  "Failed login detected",
		Username: "alice",
		IP:       "203.0.113.25",
	}, func(context.Context) error {
		return nil
	})
	if err != nil {
		sugar.Errorw("Audited operation failed", "error", err)
	}
	sugar.Infow("Audit log written", "path", emitter.Path())
	return nil
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		vendor     string
	)

	cmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Composable security event delivery core",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, sugar := initLogger()
			defer logger.Sync()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if vendor != "" {
				cfg.Vendor = vendor
			}

			if cfg.Metrics.Enabled {
				serveMetrics(cfg.Metrics.Listen, sugar)
			}

			factory := sink.NewFactory(cfg, sugar)
			sugar.Infow("Sentinel starting", "vendors", factory.Vendors(), "default_vendor", cfg.Vendor)
			return runDemo(cmd.Context(), cfg, factory, sugar)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&vendor, "vendor", "", "default SIEM vendor (elastic|splunk|redis|stdout)")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
