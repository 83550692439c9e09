// Package app wires settings, logging, metrics and clients together for
// processes using the staking client.
package app

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/bert-labs/bert-staking-client/pkg/metrics"
	"github.com/bert-labs/bert-staking-client/pkg/rate"
	"github.com/bert-labs/bert-staking-client/pkg/solana"
	"github.com/bert-labs/bert-staking-client/pkg/solana/bertstaking"
	"github.com/bert-labs/bert-staking-client/pkg/staking"
)

const shutdownTimeout = 5 * time.Second

// Environment holds everything built from Settings. It is passed explicitly
// to whatever needs it.
type Environment struct {
	Settings *Settings

	// Metrics is nil when no New Relic license key is configured.
	Metrics *newrelic.Application

	RPC     solana.Client
	Program bertstaking.Program
	Staking *staking.Client
}

// New configures logging and metrics and constructs the clients described by
// settings. Nothing is sent over the network.
func New(settings *Settings) (*Environment, error) {
	metricsProvider, err := NewMetricsProvider(settings)
	if err != nil {
		return nil, err
	}

	ConfigureLogger(settings, metricsProvider)

	program, err := NewProgram(settings)
	if err != nil {
		return nil, err
	}

	rpc, err := NewRPCClient(settings)
	if err != nil {
		return nil, err
	}

	return &Environment{
		Settings: settings,
		Metrics:  metricsProvider,
		RPC:      rpc,
		Program:  program,
		Staking:  staking.NewClient(rpc, program, StakingConfigProvider(settings)),
	}, nil
}

// Context returns ctx carrying the metrics application, if any.
func (e *Environment) Context(ctx context.Context) context.Context {
	if e.Metrics == nil {
		return ctx
	}
	return metrics.WithApplication(ctx, e.Metrics)
}

// Shutdown flushes pending metrics.
func (e *Environment) Shutdown() {
	if e.Metrics != nil {
		e.Metrics.Shutdown(shutdownTimeout)
	}
}

// NewMetricsProvider returns nil, nil when metrics are disabled.
func NewMetricsProvider(settings *Settings) (*newrelic.Application, error) {
	if len(settings.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	nr, err := newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(settings.AppName),
		newrelic.ConfigLicense(settings.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to new relic")
	}
	return nr, nil
}

// ConfigureLogger sets the standard logger's format and level. Entries are
// forwarded to New Relic when metricsProvider is set.
func ConfigureLogger(settings *Settings, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(settings.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", settings.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stdout)
}

// NewProgram returns the configured staking program deployment.
func NewProgram(settings *Settings) (bertstaking.Program, error) {
	if len(settings.ProgramID) == 0 {
		return bertstaking.DefaultProgram, nil
	}

	id, err := base58.Decode(settings.ProgramID)
	if err != nil {
		return bertstaking.Program{}, errors.Wrap(err, "invalid program id")
	}
	return bertstaking.NewProgram(id)
}

// NewRPCClient returns a throttled RPC client for the configured endpoint.
func NewRPCClient(settings *Settings) (solana.Client, error) {
	endpoint, err := solana.ResolveEndpoint(settings.RPCEndpoint)
	if err != nil {
		return nil, err
	}

	var limiter rate.Limiter = &rate.NoLimiter{}
	if settings.RequestsPerSecond > 0 {
		limiter = rate.NewLocalRateLimiter(xrate.Limit(settings.RequestsPerSecond))
	}

	opts := []solana.Option{
		solana.WithRateLimiter(limiter),
		solana.WithLogger(logrus.StandardLogger().WithField("type", "solana/client")),
	}
	if settings.RequestTimeout > 0 {
		opts = append(opts, solana.WithTimeout(settings.RequestTimeout))
	}

	return solana.New(endpoint, opts...), nil
}

// StakingConfigProvider uses settings as defaults for the staking client's
// environment driven configuration.
func StakingConfigProvider(settings *Settings) staking.ConfigProvider {
	return staking.WithEnvConfigsAndDefaults(&staking.Defaults{
		Commitment:          settings.Commitment,
		ConfirmationTimeout: settings.ConfirmationTimeout,
		ComputeUnitLimit:    settings.ComputeUnitLimit,
		ComputeUnitPrice:    settings.ComputeUnitPrice,
	})
}
