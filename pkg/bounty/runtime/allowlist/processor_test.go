package allowlist

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	runtimetest "github.com/code-payments/bounty-server/pkg/bounty/runtime/test"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/system"
	"github.com/code-payments/bounty-server/pkg/solana/token"
	"github.com/code-payments/bounty-server/pkg/testutil"
)

type testEnv struct {
	*runtimetest.Environment

	program    ed25519.PublicKey
	authority  ed25519.PublicKey
	mint       ed25519.PublicKey
	config     ed25519.PublicKey
	validation ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	env := &testEnv{
		Environment: runtimetest.NewEnvironment(t),
		program:     DefaultProgramID,
	}
	Register(env.Runtime, env.program)

	env.authority = env.FundedWallet(t)
	env.mint = env.CreateMint(t, env.authority, 0, runtimetest.WithTransferHook(env.authority, env.program))
	env.validation = env.SetupTransferHook(t, env.authority, env.program, env.mint, ExtraAccountMetas())

	var err error
	env.config, _, err = GetConfigAddress(env.program, env.mint)
	require.NoError(t, err)

	require.NoError(t, env.Runtime.Invoke(env.Ctx, NewInitConfigInstruction(env.program, &InitConfigInstructionAccounts{
		Payer:  env.authority,
		Config: env.config,
		Mint:   env.mint,
	})))

	return env
}

// holder creates a token account for a new owner and, unless status is nil,
// its list entry.
func (e *testEnv) holder(t *testing.T, amount uint64, status *WalletStatus) (tokenAccount, wallet ed25519.PublicKey) {
	owner := testutil.GenerateSolanaKey(t)
	tokenAccount = e.CreateTokenAccount(t, e.authority, owner, e.mint, amount)

	wallet, _, err := GetWalletAddress(e.program, tokenAccount)
	require.NoError(t, err)

	if status != nil {
		require.NoError(t, e.Runtime.Invoke(e.Ctx, e.initWallet(tokenAccount, wallet, e.authority, *status)))
	}
	return tokenAccount, wallet
}

func (e *testEnv) initWallet(tokenAccount, wallet, authority ed25519.PublicKey, status WalletStatus) solana.Instruction {
	return NewInitWalletInstruction(
		e.program,
		&InitWalletInstructionAccounts{
			Payer:        e.authority,
			Wallet:       wallet,
			Config:       e.config,
			Authority:    authority,
			TokenAccount: tokenAccount,
		},
		&InitWalletInstructionArgs{Status: status},
	)
}

func (e *testEnv) transfer(t *testing.T, source, sourceWallet, destination, destinationWallet ed25519.PublicKey) error {
	_, sourceState, err := e.Runtime.GetTokenAccount(e.Ctx, source)
	require.NoError(t, err)

	return e.Runtime.Invoke(e.Ctx, token.TransferChecked(
		source,
		e.mint,
		destination,
		sourceState.Owner,
		1,
		0,
		solana.AccountMeta{PublicKey: e.program},
		solana.AccountMeta{PublicKey: e.validation},
		solana.AccountMeta{PublicKey: sourceWallet},
		solana.AccountMeta{PublicKey: destinationWallet},
	))
}

func statusPtr(s WalletStatus) *WalletStatus {
	return &s
}

func TestConfig(t *testing.T) {
	env := setup(t)

	record, err := env.Runtime.GetAccount(env.Ctx, env.config)
	require.NoError(t, err)

	var config ConfigAccount
	require.NoError(t, config.Unmarshal(record.Data))
	assert.EqualValues(t, env.authority, config.Authority)
	assert.EqualValues(t, env.mint, config.Mint)

	err = env.Runtime.Invoke(env.Ctx, NewInitConfigInstruction(env.program, &InitConfigInstructionAccounts{
		Payer:  env.authority,
		Config: env.config,
		Mint:   env.mint,
	}))
	testutil.AssertCustomError(t, err, system.ErrorAccountAlreadyInUse)
}

func TestInitWallet(t *testing.T) {
	env := setup(t)

	tokenAccount, wallet := env.holder(t, 0, statusPtr(WalletStatusBlock))

	record, err := env.Runtime.GetAccount(env.Ctx, wallet)
	require.NoError(t, err)
	assert.EqualValues(t, WalletStatusBlock, record.Data[8])

	var decoded WalletAccount
	require.NoError(t, decoded.Unmarshal(record.Data))
	assert.Equal(t, WalletStatusBlock, decoded.Status)
	assert.EqualValues(t, tokenAccount, decoded.TokenAccount)

	other, otherWallet := env.holder(t, 0, nil)

	stranger := env.FundedWallet(t)
	err = env.Runtime.Invoke(env.Ctx, env.initWallet(other, otherWallet, stranger, WalletStatusAllow))
	testutil.AssertCustomError(t, err, ErrorUnauthorized)

	err = env.Runtime.Invoke(env.Ctx, env.initWallet(other, wallet, env.authority, WalletStatusAllow))
	assert.True(t, errors.Is(err, solana.ErrInvalidSeeds))

	err = env.Runtime.Invoke(env.Ctx, env.initWallet(other, otherWallet, env.authority, WalletStatus(3)))
	assert.True(t, errors.Is(err, solana.ErrInvalidInstructionData))

	_, err = env.Runtime.GetAccount(env.Ctx, otherWallet)
	assert.Error(t, err)
}

func TestExecute(t *testing.T) {
	env := setup(t)

	source, sourceWallet := env.holder(t, 10, statusPtr(WalletStatusAllow))
	allowed, allowedWallet := env.holder(t, 0, statusPtr(WalletStatusAllow))
	blocked, blockedWallet := env.holder(t, 10, statusPtr(WalletStatusBlock))
	none, noneWallet := env.holder(t, 0, statusPtr(WalletStatusNone))
	unlisted, unlistedWallet := env.holder(t, 10, nil)

	require.NoError(t, env.transfer(t, source, sourceWallet, allowed, allowedWallet))
	assert.EqualValues(t, 1, env.TokenBalance(t, allowed))

	// Unlisted sources can still send to allowed wallets
	require.NoError(t, env.transfer(t, unlisted, unlistedWallet, allowed, allowedWallet))

	testutil.AssertCustomError(t, env.transfer(t, source, sourceWallet, blocked, blockedWallet), ErrorWalletBlocked)
	testutil.AssertCustomError(t, env.transfer(t, blocked, blockedWallet, allowed, allowedWallet), ErrorWalletBlocked)
	testutil.AssertCustomError(t, env.transfer(t, source, sourceWallet, none, noneWallet), ErrorWalletNotAllowed)
	testutil.AssertCustomError(t, env.transfer(t, source, sourceWallet, unlisted, unlistedWallet), ErrorWalletNotAllowed)

	// Entries of the wrong account don't count
	err := env.transfer(t, source, sourceWallet, none, allowedWallet)
	assert.Error(t, err)
}
