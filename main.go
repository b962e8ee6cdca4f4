package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/lslview/lslview/cmd"
	"github.com/lslview/lslview/internal/api"
	"github.com/lslview/lslview/internal/config"
	"github.com/lslview/lslview/internal/events"
	"github.com/lslview/lslview/internal/logging"
	"github.com/lslview/lslview/internal/lsl"
	"github.com/lslview/lslview/internal/lsl/sim"
	"github.com/lslview/lslview/internal/metrics"
	"github.com/lslview/lslview/internal/record"
	"github.com/lslview/lslview/internal/relay"
	"github.com/lslview/lslview/internal/streams"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Discovery settings
	ResolveTimeout float64 `help:"Default stream discovery timeout in seconds" default:"2" toml:"resolve.timeout" env:"RESOLVE_TIMEOUT"`

	// Recording settings
	RecordingsDir string `help:"Directory for recording sessions" default:"recordings" toml:"recording.dir" env:"RECORDINGS_DIR"`

	// Metrics settings
	MetricsEnabled bool `help:"Expose Prometheus metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingResolver string `help:"Resolver logging level" default:"info" toml:"logging.resolver" env:"LOGGING_RESOLVER"`
	LoggingRelay    string `help:"Relay logging level" default:"info" toml:"logging.relay" env:"LOGGING_RELAY"`
	LoggingRecord   string `help:"Recording logging level" default:"info" toml:"logging.record" env:"LOGGING_RECORD"`
	LoggingAPI      string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"resolver": opts.LoggingResolver,
				"relay":    opts.LoggingRelay,
				"record":   opts.LoggingRecord,
				"api":      opts.LoggingAPI,
			},
		})
		logger := logging.GetLogger("main")

		eventBus := events.New()

		resolver := streams.NewResolver(sim.New(), logging.GetLogger("resolver"))
		relayMgr := relay.NewManager(logging.GetLogger("relay"))
		recorder := record.NewManager(relayMgr, opts.RecordingsDir, logging.GetLogger("record"))

		// Inlet lifecycle callbacks feed the SSE event stream. The relay
		// package cannot publish directly without importing events, which
		// imports record, which imports relay.
		relayMgr.SetOnInletOpened(func(info lsl.StreamInfo) {
			eventBus.Publish(events.InletOpenedEvent{
				UID:       info.UID,
				Name:      info.Name,
				Timestamp: time.Now().Format(time.RFC3339),
			})
		})
		relayMgr.SetOnInletClosed(func(uid string) {
			eventBus.Publish(events.InletClosedEvent{
				UID:       uid,
				Timestamp: time.Now().Format(time.RFC3339),
			})
		})

		apiOpts := &api.Options{
			Resolver: resolver,
			Relay:    relayMgr,
			Recorder: recorder,
			EventBus: eventBus,
		}
		if opts.MetricsEnabled {
			apiOpts.PrometheusHandler = metrics.Handler()
		}
		server := api.NewServer(apiOpts)

		watcher := config.NewWatcher(opts.Config, logger)

		hooks.OnStart(func() {
			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Failed to start config watcher", "error", watchErr)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			// Finalize archives before exit; active sessions still flush
			// their buffered samples.
			recorder.StopAll()
			watcher.Stop()
		})
	})

	cli.Root().AddCommand(cmd.CreateResolveCmd())
	cli.Root().AddCommand(cmd.CreateRecordCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
