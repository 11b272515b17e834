package cli

import (
	"context"
	"time"

	"github.com/neubot/nbwatch/internal/api"
	"github.com/neubot/nbwatch/internal/config"
	"github.com/neubot/nbwatch/internal/errors"
	"github.com/neubot/nbwatch/internal/logger"
	"github.com/neubot/nbwatch/internal/statesync"
	"github.com/neubot/nbwatch/internal/telemetry"
)

// WorkflowOptions holds per-command overrides applied on top of the config.
type WorkflowOptions struct {
	Endpoint string
	Output   string
	// Telemetry starts trace export when the config enables it.
	Telemetry bool
}

// WorkflowContext carries what every agent-facing command needs.
type WorkflowContext struct {
	Config     *config.Config
	ConfigPath string
	Client     *api.Client
	Log        logger.Logger

	shutdown func(context.Context) error
}

// SetupWorkflow loads and validates config, applies flag overrides, and
// builds the agent client. The context must be closed to flush telemetry.
func SetupWorkflow(ctx context.Context, opts WorkflowOptions) (*WorkflowContext, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}

	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	log := logger.NewEnvLogger("[nbwatch]")
	if path != "" {
		log.Debug("using config %s", path)
	}

	client, err := api.NewClient(cfg.Endpoint,
		api.WithStatePath(cfg.StatePath),
		api.WithRequestTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.NewEnvLogger("[api]")),
	)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't use endpoint "+cfg.Endpoint,
			"Use a URL like http://127.0.0.1:9774")
	}

	wc := &WorkflowContext{
		Config:     cfg,
		ConfigPath: path,
		Client:     client,
		Log:        log,
	}

	if opts.Telemetry && cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Initialize(ctx, telemetry.Config{
			ServiceVersion: version,
			Endpoint:       cfg.Telemetry.Endpoint,
			Insecure:       cfg.Telemetry.Insecure,
		})
		if err != nil {
			// Tracing is optional; keep watching without it.
			log.Warn("telemetry disabled: %v", err)
		} else {
			wc.shutdown = shutdown
			log.Debug("exporting traces to %s (session %s)", cfg.Telemetry.Endpoint, telemetry.SessionID())
		}
	}

	return wc, nil
}

// SyncOptions returns the poll loop options derived from the config.
func (wc *WorkflowContext) SyncOptions() []statesync.Option {
	return []statesync.Option{
		statesync.WithLogger(logger.NewEnvLogger("[sync]")),
		statesync.WithRetryPolicy(wc.Config.RetryPolicy()),
	}
}

// Close flushes pending spans.
func (wc *WorkflowContext) Close() {
	if wc.shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wc.shutdown(ctx); err != nil {
		wc.Log.Warn("telemetry shutdown: %v", err)
	}
	wc.shutdown = nil
}
