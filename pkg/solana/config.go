package solana

import (
	"strings"

	"github.com/pkg/errors"
)

// Environment is a cluster's public RPC endpoint.
type Environment string

const (
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

// ResolveEndpoint maps a cluster name (localnet, devnet, testnet, mainnet)
// to its public endpoint. Anything that looks like a URL is returned as is.
func ResolveEndpoint(nameOrURL string) (string, error) {
	value := strings.TrimSpace(nameOrURL)

	switch strings.ToLower(value) {
	case "localnet", "localhost", "local":
		return string(EnvironmentLocal), nil
	case "devnet", "dev":
		return string(EnvironmentDev), nil
	case "testnet", "test":
		return string(EnvironmentTest), nil
	case "mainnet", "mainnet-beta", "prod":
		return string(EnvironmentProd), nil
	}

	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value, nil
	}
	return "", errors.Errorf("unknown cluster: %q", nameOrURL)
}
