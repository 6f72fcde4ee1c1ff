package engine

import (
	"crypto/ed25519"

	"github.com/code-payments/bounty-server/pkg/config"
	"github.com/code-payments/bounty-server/pkg/config/env"
	"github.com/code-payments/bounty-server/pkg/config/memory"
	"github.com/code-payments/bounty-server/pkg/config/wrapper"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
)

const (
	envConfigPrefix = "BOUNTY_ENGINE_"

	FeePolicyEnvName = envConfigPrefix + "FEE_POLICY"
	defaultFeePolicy = string(FeePolicyTreasury)

	TreasuryWalletEnvName = envConfigPrefix + "TREASURY_WALLET"

	CreationFeeAmountEnvName = envConfigPrefix + "CREATION_FEE_AMOUNT"
	defaultCreationFeeAmount = 1

	AccountLockStripesEnvName = envConfigPrefix + "ACCOUNT_LOCK_STRIPES"
	defaultAccountLockStripes = 1024
)

// FeePolicy selects where the creation fee of a bounty is sent
type FeePolicy string

const (
	// FeePolicyTreasury routes fees to the configured treasury wallet's
	// associated token account.
	FeePolicyTreasury FeePolicy = "treasury"

	// FeePolicySelf keeps fees in the bounty account's own associated token
	// account, created on demand.
	FeePolicySelf FeePolicy = "self"
)

func (p FeePolicy) IsValid() bool {
	return p == FeePolicyTreasury || p == FeePolicySelf
}

type conf struct {
	feePolicy          config.String
	treasuryWallet     config.PublicKey
	creationFeeAmount  config.Uint64
	accountLockStripes config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			feePolicy:          env.NewStringConfig(FeePolicyEnvName, defaultFeePolicy),
			treasuryWallet:     env.NewPublicKeyConfig(TreasuryWalletEnvName, bounty.TREASURY_WALLET),
			creationFeeAmount:  env.NewUint64Config(CreationFeeAmountEnvName, defaultCreationFeeAmount),
			accountLockStripes: env.NewUint64Config(AccountLockStripesEnvName, defaultAccountLockStripes),
		}
	}
}

type testOverrides struct {
	feePolicy         FeePolicy
	treasuryWallet    ed25519.PublicKey
	creationFeeAmount uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		feePolicy := overrides.feePolicy
		if len(feePolicy) == 0 {
			feePolicy = FeePolicyTreasury
		}

		treasuryWallet := overrides.treasuryWallet
		if treasuryWallet == nil {
			treasuryWallet = bounty.TREASURY_WALLET
		}

		creationFeeAmount := overrides.creationFeeAmount
		if creationFeeAmount == 0 {
			creationFeeAmount = defaultCreationFeeAmount
		}

		return &conf{
			feePolicy:          wrapper.NewStringConfig(memory.NewConfig(string(feePolicy)), defaultFeePolicy),
			treasuryWallet:     wrapper.NewPublicKeyConfig(memory.NewConfig(treasuryWallet), bounty.TREASURY_WALLET),
			creationFeeAmount:  wrapper.NewUint64Config(memory.NewConfig(creationFeeAmount), defaultCreationFeeAmount),
			accountLockStripes: wrapper.NewUint64Config(memory.NewConfig(uint64(64)), defaultAccountLockStripes),
		}
	}
}
