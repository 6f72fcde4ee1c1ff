package solana

import (
	"strings"
)

type Environment string

const (
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
)

// ParseEnvironment maps a cluster moniker to its RPC endpoint. Anything that
// isn't a known moniker is treated as a custom endpoint.
func ParseEnvironment(value string) Environment {
	switch strings.ToLower(value) {
	case "", "devnet", "dev":
		return EnvironmentDev
	case "testnet", "test":
		return EnvironmentTest
	case "mainnet", "mainnet-beta", "prod":
		return EnvironmentProd
	case "localnet", "local":
		return EnvironmentLocal
	default:
		return Environment(value)
	}
}
