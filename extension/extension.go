// Package extension mounts a netqueue.Queue into a Forge application.
//
// The queue is built on Register, provided to the DI container as
// *netqueue.Queue, and drained on Stop. Configuration comes from Option
// functions or from the "extensions.netqueue" or "netqueue" config keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/netqueue"
	"github.com/xraph/netqueue/api"
	"github.com/xraph/netqueue/observability"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "netqueue"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Bounded-concurrency dispatch queue for outbound network requests"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

var _ forge.Extension = (*Extension)(nil)

// Extension adapts netqueue as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	queue      *netqueue.Queue
	apiHandler *api.API
	logger     *slog.Logger
	queueOpts []netqueue.Option
}

// New creates the extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
		config:        DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Queue returns the queue. It is nil until Register is called.
func (e *Extension) Queue() *netqueue.Queue { return e.queue }

// API returns the HTTP API. It is nil until Register is called.
func (e *Extension) API() *api.API { return e.apiHandler }

// Handler returns the API routes as an http.Handler for use outside
// Forge.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// Register implements [forge.Extension]. It builds the queue and provides
// it to the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}
	if err := e.loadConfiguration(); err != nil {
		return err
	}

	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := e.config.queueOptions()
	opts = append(opts, netqueue.WithLogger(logger))
	if !e.config.DisableMetrics {
		opts = append(opts,
			netqueue.WithExtension(observability.NewMetricsExtensionWithFactory(fapp.Metrics())),
			netqueue.WithExtension(observability.NewGauges()),
		)
	}
	opts = append(opts, e.queueOpts...)

	q, err := netqueue.New(opts...)
	if err != nil {
		return fmt.Errorf("netqueue: create queue: %w", err)
	}
	e.queue = q

	e.apiHandler = api.New(q, fapp.Router())
	if !e.config.DisableRoutes {
		e.apiHandler.RegisterRoutes(fapp.Router())
	}

	if err := vessel.Provide(fapp.Container(), func() (*netqueue.Queue, error) {
		return e.queue, nil
	}); err != nil {
		return fmt.Errorf("netqueue: register queue in container: %w", err)
	}
	return nil
}

// Start implements [forge.Extension]. The queue runs tasks as soon as
// they are enqueued, so there is nothing to start beyond checking it
// exists.
func (e *Extension) Start(_ context.Context) error {
	if e.queue == nil {
		return errors.New("netqueue: extension not initialized")
	}
	e.MarkStarted()
	return nil
}

// Stop drains the queue.
func (e *Extension) Stop(ctx context.Context) error {
	if e.queue == nil {
		e.MarkStopped()
		return nil
	}
	err := e.queue.Close(ctx)
	e.MarkStopped()
	return err
}

// Health implements [forge.Extension].
func (e *Extension) Health(_ context.Context) error {
	if e.queue == nil {
		return errors.New("netqueue: extension not initialized")
	}
	if e.queue.Closed() {
		return netqueue.ErrQueueClosed
	}
	return nil
}

func (e *Extension) loadConfiguration() error {
	programmatic := e.config

	fileConfig, loaded := e.tryLoadFromConfigFile()
	switch {
	case loaded:
		e.config = mergeConfigurations(fileConfig, programmatic)
	case programmatic.RequireConfig:
		return errors.New("netqueue: configuration is required but not found in config files; " +
			"ensure 'extensions.netqueue' or 'netqueue' key exists in your config")
	default:
		e.config = mergeWithDefaults(programmatic)
	}

	e.Logger().Debug("netqueue: configuration loaded",
		forge.F("name", e.config.Name),
		forge.F("concurrency", e.config.Concurrency),
		forge.F("disable_activity_signal", e.config.DisableActivitySignal),
		forge.F("disable_routes", e.config.DisableRoutes),
	)
	return nil
}

func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.netqueue", "netqueue"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("netqueue: loaded config from file", forge.F("key", key))
			return cfg, true
		}
		e.Logger().Warn("netqueue: failed to bind config", forge.F("key", key))
	}
	return Config{}, false
}

func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = defaults.Name
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	return cfg
}

// mergeConfigurations lets file values win and fills gaps from the
// programmatic config.
func mergeConfigurations(file, programmatic Config) Config {
	if programmatic.DisableActivitySignal {
		file.DisableActivitySignal = true
	}
	if programmatic.DisableMetrics {
		file.DisableMetrics = true
	}
	if programmatic.DisableRoutes {
		file.DisableRoutes = true
	}
	if file.Name == "" {
		file.Name = programmatic.Name
	}
	if file.Concurrency == 0 {
		file.Concurrency = programmatic.Concurrency
	}
	if file.ShutdownTimeout == 0 {
		file.ShutdownTimeout = programmatic.ShutdownTimeout
	}
	return mergeWithDefaults(file)
}
