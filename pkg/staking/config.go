package staking

import (
	"time"

	"github.com/bert-labs/bert-staking-client/pkg/config"
	"github.com/bert-labs/bert-staking-client/pkg/config/env"
	"github.com/bert-labs/bert-staking-client/pkg/config/memory"
	"github.com/bert-labs/bert-staking-client/pkg/config/wrapper"
)

const (
	envConfigPrefix = "STAKING_CLIENT_"

	CommitmentConfigEnvName = envConfigPrefix + "COMMITMENT"
	defaultCommitment       = "confirmed"

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = time.Minute

	ComputeUnitLimitConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_LIMIT"
	ComputeUnitPriceConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_PRICE"

	MaxPositionsPerScanConfigEnvName = envConfigPrefix + "MAX_POSITIONS_PER_SCAN"
	defaultMaxPositionsPerScan       = 10_000
)

type conf struct {
	commitment          config.String
	confirmationTimeout config.Duration
	computeUnitLimit    config.Uint64
	computeUnitPrice    config.Uint64 // micro lamports
	maxPositionsPerScan config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// Defaults are used for any value whose environment variable is unset.
// Zero fields fall back to the package defaults.
type Defaults struct {
	Commitment          string
	ConfirmationTimeout time.Duration
	ComputeUnitLimit    uint64
	ComputeUnitPrice    uint64
	MaxPositionsPerScan uint64
}

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return WithEnvConfigsAndDefaults(&Defaults{})
}

// WithEnvConfigsAndDefaults is WithEnvConfigs with caller supplied defaults
func WithEnvConfigsAndDefaults(defaults *Defaults) ConfigProvider {
	return func() *conf {
		commitment := defaults.Commitment
		if commitment == "" {
			commitment = defaultCommitment
		}

		confirmationTimeout := defaults.ConfirmationTimeout
		if confirmationTimeout == 0 {
			confirmationTimeout = defaultConfirmationTimeout
		}

		maxPositionsPerScan := defaults.MaxPositionsPerScan
		if maxPositionsPerScan == 0 {
			maxPositionsPerScan = defaultMaxPositionsPerScan
		}

		return &conf{
			commitment:          env.NewStringConfig(CommitmentConfigEnvName, commitment),
			confirmationTimeout: env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, confirmationTimeout),
			computeUnitLimit:    env.NewUint64Config(ComputeUnitLimitConfigEnvName, defaults.ComputeUnitLimit),
			computeUnitPrice:    env.NewUint64Config(ComputeUnitPriceConfigEnvName, defaults.ComputeUnitPrice),
			maxPositionsPerScan: env.NewUint64Config(MaxPositionsPerScanConfigEnvName, maxPositionsPerScan),
		}
	}
}

type testOverrides struct {
	commitment          string
	confirmationTimeout time.Duration
	computeUnitLimit    uint64
	computeUnitPrice    uint64
	maxPositionsPerScan uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		commitment := overrides.commitment
		if commitment == "" {
			commitment = defaultCommitment
		}

		confirmationTimeout := overrides.confirmationTimeout
		if confirmationTimeout == 0 {
			confirmationTimeout = time.Second
		}

		maxPositionsPerScan := overrides.maxPositionsPerScan
		if maxPositionsPerScan == 0 {
			maxPositionsPerScan = defaultMaxPositionsPerScan
		}

		return &conf{
			commitment:          wrapper.NewStringConfig(memory.NewConfig(commitment), commitment),
			confirmationTimeout: wrapper.NewDurationConfig(memory.NewConfig(confirmationTimeout), confirmationTimeout),
			computeUnitLimit:    wrapper.NewUint64Config(memory.NewConfig(overrides.computeUnitLimit), overrides.computeUnitLimit),
			computeUnitPrice:    wrapper.NewUint64Config(memory.NewConfig(overrides.computeUnitPrice), overrides.computeUnitPrice),
			maxPositionsPerScan: wrapper.NewUint64Config(memory.NewConfig(maxPositionsPerScan), maxPositionsPerScan),
		}
	}
}
