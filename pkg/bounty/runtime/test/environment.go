// Package test provides an in-memory runtime seeded with wallets, mints and
// token accounts for tests of programs running on it.
package test

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/bounty-server/pkg/bounty/data"
	"github.com/code-payments/bounty-server/pkg/bounty/runtime"
	"github.com/code-payments/bounty-server/pkg/solana/token"
	"github.com/code-payments/bounty-server/pkg/solana/transferhook"
	"github.com/code-payments/bounty-server/pkg/testutil"
)

// DefaultWalletLamports is what FundedWallet deposits, 10 SOL.
const DefaultWalletLamports = 10_000_000_000

type Environment struct {
	Ctx     context.Context
	Data    data.DatabaseData
	Runtime *runtime.Runtime
}

func NewEnvironment(t *testing.T) *Environment {
	data := data.NewTestDatabaseProvider()
	return &Environment{
		Ctx:     context.Background(),
		Data:    data,
		Runtime: runtime.New(data),
	}
}

// FundedWallet returns a new system account holding DefaultWalletLamports
func (e *Environment) FundedWallet(t *testing.T) ed25519.PublicKey {
	wallet := testutil.GenerateSolanaKey(t)
	require.NoError(t, e.Runtime.Fund(e.Ctx, wallet, DefaultWalletLamports))
	return wallet
}

type MintOption func(address ed25519.PublicKey, mint *token.Mint)

// WithPermanentDelegate sets the mint's permanent delegate
func WithPermanentDelegate(delegate ed25519.PublicKey) MintOption {
	return func(_ ed25519.PublicKey, mint *token.Mint) {
		mint.PermanentDelegate = delegate
	}
}

// WithSelfPermanentDelegate makes the mint its own permanent delegate
func WithSelfPermanentDelegate() MintOption {
	return func(address ed25519.PublicKey, mint *token.Mint) {
		mint.PermanentDelegate = address
	}
}

// WithTransferHook sets the program invoked on every checked transfer
func WithTransferHook(authority, program ed25519.PublicKey) MintOption {
	return func(_ ed25519.PublicKey, mint *token.Mint) {
		mint.TransferHook = &token.TransferHook{
			Authority: authority,
			ProgramID: program,
		}
	}
}

// CreateMint creates a Token-2022 mint paid for by payer
func (e *Environment) CreateMint(t *testing.T, payer ed25519.PublicKey, decimals byte, opts ...MintOption) ed25519.PublicKey {
	address := testutil.GenerateSolanaKey(t)

	mint := &token.Mint{
		MintAuthority: payer,
		Decimals:      decimals,
	}
	for _, opt := range opts {
		opt(address, mint)
	}

	require.NoError(t, e.Runtime.InitializeMint(e.Ctx, payer, address, mint))
	return address
}

// CreateTokenAccount creates the associated token account of owner for mint
// holding amount tokens. The payer covers rent.
func (e *Environment) CreateTokenAccount(t *testing.T, payer, owner, mint ed25519.PublicKey, amount uint64) ed25519.PublicKey {
	address, err := token.GetAssociatedAccount(owner, mint)
	require.NoError(t, err)

	require.NoError(t, e.Runtime.InitializeTokenAccount(e.Ctx, payer, address, &token.Account{
		Mint:  mint,
		Owner: owner,
	}))
	if amount > 0 {
		require.NoError(t, e.Runtime.MintTo(e.Ctx, mint, address, amount))
	}
	return address
}

// SetupTransferHook writes the hook's validation account for mint
func (e *Environment) SetupTransferHook(t *testing.T, payer, hookProgram, mint ed25519.PublicKey, metas transferhook.ExtraAccountMetaList) ed25519.PublicKey {
	address, err := e.Runtime.InitializeExtraAccountMetas(e.Ctx, payer, hookProgram, mint, metas)
	require.NoError(t, err)
	return address
}

// TokenBalance returns the amount held by a token account
func (e *Environment) TokenBalance(t *testing.T, address ed25519.PublicKey) uint64 {
	_, state, err := e.Runtime.GetTokenAccount(e.Ctx, address)
	require.NoError(t, err)
	return state.Amount
}

// Supply returns the supply of a mint
func (e *Environment) Supply(t *testing.T, mint ed25519.PublicKey) uint64 {
	_, state, err := e.Runtime.GetMint(e.Ctx, mint)
	require.NoError(t, err)
	return state.Supply
}

// Lamports returns the lamports held at address, zero when it doesn't exist
func (e *Environment) Lamports(t *testing.T, address ed25519.PublicKey) uint64 {
	balance, err := e.Runtime.GetBalance(e.Ctx, address)
	require.NoError(t, err)
	return balance
}
