package app

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Settings configures the process hosting the staking client.
type Settings struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// RPCEndpoint is an RPC URL or a cluster name (localnet, devnet, testnet,
	// mainnet).
	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	// ProgramID is the base58 address of the staking program. The mainnet
	// deployment is used when empty.
	ProgramID string `mapstructure:"program_id"`

	Commitment          string        `mapstructure:"commitment"`
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`

	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`

	ComputeUnitLimit uint64 `mapstructure:"compute_unit_limit"`
	ComputeUnitPrice uint64 `mapstructure:"compute_unit_price"` // micro lamports

	// Metrics are only reported when set
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultSettings = Settings{
	LogLevel: "info",
	AppName:  "bert-staking-client",

	RPCEndpoint: "mainnet",

	Commitment:          "confirmed",
	ConfirmationTimeout: time.Minute,

	RequestTimeout:    30 * time.Second,
	RequestsPerSecond: 10,
}

var settingsEnv = map[string]string{
	"log_level":             "LOG_LEVEL",
	"app_name":              "APP_NAME",
	"rpc_endpoint":          "RPC_ENDPOINT",
	"program_id":            "PROGRAM_ID",
	"commitment":            "COMMITMENT",
	"confirmation_timeout":  "CONFIRMATION_TIMEOUT",
	"request_timeout":       "REQUEST_TIMEOUT",
	"requests_per_second":   "REQUESTS_PER_SECOND",
	"compute_unit_limit":    "COMPUTE_UNIT_LIMIT",
	"compute_unit_price":    "COMPUTE_UNIT_PRICE",
	"new_relic_license_key": "NEW_RELIC_LICENSE_KEY",
}

// LoadSettings reads settings from the environment and, if it exists, the
// config file at path. Environment variables take precedence.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	for key, env := range settingsEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", env)
		}
	}

	// viper only reports a missing file when it searched for one itself, so
	// an explicit path is checked here.
	if len(path) > 0 {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrap(err, "failed to load config")
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to check if config exists")
		}
	}

	settings := defaultSettings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(settings.AppName) == 0 {
		return nil, errors.New("must specify an application name")
	}
	if settings.RequestsPerSecond < 0 {
		return nil, errors.New("requests per second cannot be negative")
	}
	if settings.ComputeUnitLimit > uint64(^uint32(0)) {
		return nil, errors.New("compute unit limit must fit in 32 bits")
	}

	return &settings, nil
}
