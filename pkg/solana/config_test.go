package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEndpoint(t *testing.T) {
	for in, expected := range map[string]string{
		"devnet":                    string(EnvironmentDev),
		"Mainnet-Beta":              string(EnvironmentProd),
		"testnet":                   string(EnvironmentTest),
		"localnet":                  string(EnvironmentLocal),
		"https://rpc.example.com/x": "https://rpc.example.com/x",
		" http://10.0.0.1:8899 ":    "http://10.0.0.1:8899",
	} {
		actual, err := ResolveEndpoint(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, actual)
	}

	_, err := ResolveEndpoint("moonnet")
	assert.Error(t, err)
}
