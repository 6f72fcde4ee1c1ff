package engine

import (
	"context"
	"crypto/ed25519"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bounty-server/pkg/bounty/data"
	"github.com/code-payments/bounty-server/pkg/bounty/data/account"
	"github.com/code-payments/bounty-server/pkg/bounty/runtime"
	"github.com/code-payments/bounty-server/pkg/bounty/runtime/allowlist"
	runtimetest "github.com/code-payments/bounty-server/pkg/bounty/runtime/test"
	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/bounty"
	"github.com/code-payments/bounty-server/pkg/solana/token"
	"github.com/code-payments/bounty-server/pkg/testutil"
)

const testDecimals = 6

var testStartTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	*runtimetest.Environment

	engine *Engine
	clock  *clockwork.FakeClock

	authority ed25519.PublicKey
	mint      ed25519.PublicKey
	config    ed25519.PublicKey

	treasury             ed25519.PublicKey
	treasuryTokenAccount ed25519.PublicKey
}

type testCreator struct {
	owner        ed25519.PublicKey
	tokenAccount ed25519.PublicKey
}

func setup(t *testing.T, overrides *testOverrides, mintOpts ...runtimetest.MintOption) *testEnv {
	env := &testEnv{
		Environment: runtimetest.NewEnvironment(t),
		clock:       clockwork.NewFakeClockAt(testStartTime),
		treasury:    testutil.GenerateSolanaKey(t),
	}

	if overrides.treasuryWallet == nil {
		overrides.treasuryWallet = env.treasury
	}
	env.engine = New(env.Data, env.Runtime, env.clock, withManualTestOverrides(overrides))

	env.authority = env.FundedWallet(t)
	if len(mintOpts) == 0 {
		mintOpts = []runtimetest.MintOption{runtimetest.WithSelfPermanentDelegate()}
	}
	env.mint = env.CreateMint(t, env.authority, testDecimals, mintOpts...)
	env.treasuryTokenAccount = env.CreateTokenAccount(t, env.authority, overrides.treasuryWallet, env.mint, 0)

	var err error
	env.config, _, err = bounty.GetProgramConfigAddress()
	require.NoError(t, err)

	return env
}

// setupWithConfig returns an environment with the program config initialized
// by env.authority for env.mint.
func setupWithConfig(t *testing.T, overrides *testOverrides, mintOpts ...runtimetest.MintOption) *testEnv {
	env := setup(t, overrides, mintOpts...)
	require.NoError(t, env.engine.Execute(env.Ctx, env.initializeConfig(env.authority, env.mint)))
	return env
}

func (e *testEnv) initializeConfig(authority, mint ed25519.PublicKey) solana.Instruction {
	return bounty.NewInitializeConfigInstruction(
		&bounty.InitializeConfigInstructionAccounts{
			Authority: authority,
			Config:    e.config,
		},
		&bounty.InitializeConfigInstructionArgs{
			RequiredTokenMint: mint,
		},
	)
}

func (e *testEnv) creator(t *testing.T, amount uint64) *testCreator {
	owner := e.FundedWallet(t)
	return &testCreator{
		owner:        owner,
		tokenAccount: e.CreateTokenAccount(t, owner, owner, e.mint, amount),
	}
}

func (e *testEnv) createBounty(creator *testCreator, bountyAccount ed25519.PublicKey, address ed25519.PublicKey, memo string, extra ...solana.AccountMeta) solana.Instruction {
	return bounty.NewCreateBountyInstruction(
		&bounty.CreateBountyInstructionAccounts{
			Signer:                  creator.owner,
			BountyAccount:           bountyAccount,
			Config:                  e.config,
			Mint:                    e.mint,
			UserTokenAccount:        creator.tokenAccount,
			Treasury:                e.treasury,
			DestinationTokenAccount: e.treasuryTokenAccount,
			RemainingAccounts:       extra,
		},
		&bounty.CreateBountyInstructionArgs{
			Address: address,
			Memo:    memo,
		},
	)
}

func (e *testEnv) updateBounty(signer, owner, bountyAccount, address ed25519.PublicKey, memo string) solana.Instruction {
	return bounty.NewUpdateBountyInstruction(
		&bounty.UpdateBountyInstructionAccounts{
			Signer:        signer,
			BountyAccount: bountyAccount,
			Owner:         owner,
		},
		&bounty.UpdateBountyInstructionArgs{
			Address: address,
			Memo:    memo,
		},
	)
}

func (e *testEnv) deleteBounty(signer, owner, bountyAccount ed25519.PublicKey) solana.Instruction {
	return bounty.NewDeleteBountyInstruction(&bounty.DeleteBountyInstructionAccounts{
		Signer:        signer,
		BountyAccount: bountyAccount,
		Owner:         owner,
	})
}

func (e *testEnv) burnTokens(authority, targetOwner, targetTokenAccount ed25519.PublicKey, amount uint64) solana.Instruction {
	return bounty.NewBurnTokensInstruction(
		&bounty.BurnTokensInstructionAccounts{
			Authority:          authority,
			Config:             e.config,
			Mint:               e.mint,
			TargetOwner:        targetOwner,
			TargetTokenAccount: targetTokenAccount,
		},
		&bounty.BurnTokensInstructionArgs{
			Amount: amount,
		},
	)
}

func (e *testEnv) assertBountyNotFound(t *testing.T, address ed25519.PublicKey) {
	_, err := e.engine.GetBounty(e.Ctx, address)
	assert.Equal(t, bounty.ErrBountyNotFound, err)
}

func TestInitializeConfig_HappyPath(t *testing.T) {
	env := setup(t, &testOverrides{})

	_, _, err := env.engine.GetProgramConfig(env.Ctx)
	assert.Equal(t, bounty.ErrProgramConfigNotFound, err)

	before := env.Lamports(t, env.authority)
	require.NoError(t, env.engine.Execute(env.Ctx, env.initializeConfig(env.authority, env.mint)))

	config, address, err := env.engine.GetProgramConfig(env.Ctx)
	require.NoError(t, err)
	assert.EqualValues(t, env.config, address)
	assert.EqualValues(t, env.authority, config.Authority)
	assert.EqualValues(t, env.mint, config.RequiredTokenMint)

	rent := solana.RentExemptBalance(bounty.ProgramConfigAccountSize)
	assert.Equal(t, before-rent, env.Lamports(t, env.authority))
	assert.Equal(t, rent, env.Lamports(t, env.config))

	err = env.engine.Execute(env.Ctx, env.initializeConfig(env.authority, env.mint))
	testutil.AssertCustomError(t, err, bounty.ErrorAlreadyExists)
}

func TestInitializeConfig_ConcurrentSingleWinner(t *testing.T) {
	env := setup(t, &testOverrides{})

	const callers = 16

	authorities := make([]ed25519.PublicKey, callers)
	for i := range authorities {
		authorities[i] = env.FundedWallet(t)
	}

	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = env.engine.Execute(env.Ctx, env.initializeConfig(authorities[i], env.mint))
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "more than one initialization succeeded")
			winner = i
			continue
		}
		testutil.AssertCustomError(t, err, bounty.ErrorAlreadyExists)
	}
	require.NotEqual(t, -1, winner)

	config, _, err := env.engine.GetProgramConfig(env.Ctx)
	require.NoError(t, err)
	assert.EqualValues(t, authorities[winner], config.Authority)

	// Losers aren't charged
	for i, authority := range authorities {
		if i == winner {
			continue
		}
		assert.EqualValues(t, runtimetest.DefaultWalletLamports, env.Lamports(t, authority))
	}
}

func TestInitializeConfig_Validation(t *testing.T) {
	env := setup(t, &testOverrides{})

	wrongAddress := env.initializeConfig(env.authority, env.mint)
	wrongAddress.Accounts[1].PublicKey = testutil.GenerateSolanaKey(t)
	testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, wrongAddress), bounty.ErrorInvalidProgramConfig)

	unsigned := env.initializeConfig(env.authority, env.mint)
	unsigned.Accounts[0].IsSigner = false
	assert.True(t, errors.Is(env.engine.Execute(env.Ctx, unsigned), solana.ErrMissingRequiredSignature))

	wrongProgram := env.initializeConfig(env.authority, env.mint)
	wrongProgram.Accounts[2].PublicKey = token.ProgramKey
	assert.True(t, errors.Is(env.engine.Execute(env.Ctx, wrongProgram), solana.ErrIncorrectProgram))

	_, _, err := env.engine.GetProgramConfig(env.Ctx)
	assert.Equal(t, bounty.ErrProgramConfigNotFound, err)
}

func TestUpdateRequiredMint(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	newMint := testutil.GenerateSolanaKey(t)
	update := func(authority ed25519.PublicKey) solana.Instruction {
		return bounty.NewUpdateRequiredMintInstruction(
			&bounty.UpdateRequiredMintInstructionAccounts{
				Authority: authority,
				Config:    env.config,
			},
			&bounty.UpdateRequiredMintInstructionArgs{
				NewMint: newMint,
			},
		)
	}

	stranger := env.FundedWallet(t)
	testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, update(stranger)), bounty.ErrorUnauthorized)

	config, _, err := env.engine.GetProgramConfig(env.Ctx)
	require.NoError(t, err)
	assert.EqualValues(t, env.mint, config.RequiredTokenMint)

	require.NoError(t, env.engine.Execute(env.Ctx, update(env.authority)))

	config, _, err = env.engine.GetProgramConfig(env.Ctx)
	require.NoError(t, err)
	assert.EqualValues(t, newMint, config.RequiredTokenMint)
	assert.EqualValues(t, env.authority, config.Authority)

	// Bounties now require the new mint
	creator := env.creator(t, 10)
	err = env.engine.Execute(env.Ctx, env.createBounty(creator, testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "memo"))
	testutil.AssertCustomError(t, err, bounty.ErrorInvalidTokenMint)
}

func TestNew_ZeroAccountLockStripes(t *testing.T) {
	t.Setenv(AccountLockStripesEnvName, "0")

	env := setup(t, &testOverrides{})
	env.engine = New(env.Data, env.Runtime, env.clock, WithEnvConfigs())

	require.NoError(t, env.engine.Execute(env.Ctx, env.initializeConfig(env.authority, env.mint)))

	config, _, err := env.engine.GetProgramConfig(env.Ctx)
	require.NoError(t, err)
	assert.Equal(t, env.authority, config.Authority)
}

func TestUnknownInstruction(t *testing.T) {
	env := setup(t, &testOverrides{})

	ix := env.initializeConfig(env.authority, env.mint)
	ix.Data = []byte{1, 2, 3, 4, 5, 6, 7, 8}
	assert.True(t, errors.Is(env.engine.Execute(env.Ctx, ix), solana.ErrInvalidInstructionData))

	ix = env.initializeConfig(env.authority, env.mint)
	ix.Program = token.ProgramKey
	assert.True(t, errors.Is(env.engine.Execute(env.Ctx, ix), solana.ErrIncorrectProgram))
}

func TestCreateBounty_HappyPath(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	creator := env.creator(t, 10)
	bountyAccount := testutil.GenerateSolanaKey(t)
	address := testutil.GenerateSolanaKey(t)

	lamportsBefore := env.Lamports(t, creator.owner)
	require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(creator, bountyAccount, address, "fix bug")))

	info, err := env.engine.GetBounty(env.Ctx, bountyAccount)
	require.NoError(t, err)
	assert.EqualValues(t, creator.owner, info.Owner)
	assert.EqualValues(t, address, info.Address)
	assert.Equal(t, "fix bug", info.Memo)
	assert.Equal(t, testStartTime.Unix(), info.CreatedAt)
	assert.Equal(t, info.CreatedAt, info.UpdatedAt)

	assert.EqualValues(t, 9, env.TokenBalance(t, creator.tokenAccount))
	assert.EqualValues(t, 1, env.TokenBalance(t, env.treasuryTokenAccount))

	rent := solana.RentExemptBalance(bounty.BountyInfoAccountSize)
	assert.Equal(t, lamportsBefore-rent, env.Lamports(t, creator.owner))
	assert.Equal(t, rent, env.Lamports(t, bountyAccount))

	record, err := env.Runtime.GetAccount(env.Ctx, bountyAccount)
	require.NoError(t, err)
	assert.Len(t, record.Data, bounty.BountyInfoAccountSize)
	assert.Equal(t, encodeKey(bounty.PROGRAM_ID), record.Owner)
}

func TestCreateBounty_CreationFeeAmount(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{creationFeeAmount: 3})

	creator := env.creator(t, 10)
	require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(creator, testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "")))

	assert.EqualValues(t, 7, env.TokenBalance(t, creator.tokenAccount))
	assert.EqualValues(t, 3, env.TokenBalance(t, env.treasuryTokenAccount))
}

func TestCreateBounty_InvalidTokenMint(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	creator := env.creator(t, 10)

	otherMint := env.CreateMint(t, env.authority, testDecimals)
	otherTokenAccount := env.CreateTokenAccount(t, creator.owner, creator.owner, otherMint, 10)
	otherDestination := env.CreateTokenAccount(t, env.authority, env.treasury, otherMint, 0)

	bountyAccount := testutil.GenerateSolanaKey(t)
	ix := env.createBounty(&testCreator{owner: creator.owner, tokenAccount: otherTokenAccount}, bountyAccount, testutil.GenerateSolanaKey(t), "memo")
	ix.Accounts[3].PublicKey = otherMint
	ix.Accounts[6].PublicKey = otherDestination

	lamportsBefore := env.Lamports(t, creator.owner)

	// Failures repeat identically and never advance state
	for i := 0; i < 2; i++ {
		testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, ix), bounty.ErrorInvalidTokenMint)

		env.assertBountyNotFound(t, bountyAccount)
		assert.Zero(t, env.Lamports(t, bountyAccount))
		assert.Equal(t, lamportsBefore, env.Lamports(t, creator.owner))
		assert.EqualValues(t, 10, env.TokenBalance(t, otherTokenAccount))
		assert.EqualValues(t, 10, env.TokenBalance(t, creator.tokenAccount))
		assert.Zero(t, env.TokenBalance(t, otherDestination))
	}
}

func TestCreateBounty_Validation(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	creator := env.creator(t, 10)
	other := env.creator(t, 10)

	for _, tc := range []struct {
		name     string
		mutate   func(ix *solana.Instruction)
		memo     string
		expected error
	}{
		{
			name:     "unsigned creator",
			mutate:   func(ix *solana.Instruction) { ix.Accounts[0].IsSigner = false },
			expected: solana.ErrMissingRequiredSignature,
		},
		{
			name:     "unsigned bounty account",
			mutate:   func(ix *solana.Instruction) { ix.Accounts[1].IsSigner = false },
			expected: solana.ErrMissingRequiredSignature,
		},
		{
			name:     "readonly destination",
			mutate:   func(ix *solana.Instruction) { ix.Accounts[6].IsWritable = false },
			expected: solana.ErrReadonlyDataModified,
		},
		{
			name:     "wrong config",
			mutate:   func(ix *solana.Instruction) { ix.Accounts[2].PublicKey = env.mint },
			expected: bounty.ErrorInvalidProgramConfig,
		},
		{
			name:     "someone else's token account",
			mutate:   func(ix *solana.Instruction) { ix.Accounts[4].PublicKey = other.tokenAccount },
			expected: bounty.ErrorInvalidTokenAccount,
		},
		{
			name:     "wrong treasury",
			mutate:   func(ix *solana.Instruction) { ix.Accounts[5].PublicKey = other.owner },
			expected: bounty.ErrorInvalidTreasury,
		},
		{
			name:     "wrong destination",
			mutate:   func(ix *solana.Instruction) { ix.Accounts[6].PublicKey = other.tokenAccount },
			expected: bounty.ErrorInvalidTokenAccount,
		},
		{
			name:     "wrong token program",
			mutate:   func(ix *solana.Instruction) { ix.Accounts[7].PublicKey = token.LegacyProgramKey },
			expected: solana.ErrIncorrectProgram,
		},
		{
			name:     "memo too long",
			mutate:   func(ix *solana.Instruction) {},
			memo:     strings.Repeat("a", bounty.MaxBountyInfoAccountMemoLength+1),
			expected: bounty.ErrorMemoTooLong,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bountyAccount := testutil.GenerateSolanaKey(t)

			ix := env.createBounty(creator, bountyAccount, testutil.GenerateSolanaKey(t), tc.memo)
			tc.mutate(&ix)

			err := env.engine.Execute(env.Ctx, ix)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.expected), "expected %v, got %v", tc.expected, err)

			env.assertBountyNotFound(t, bountyAccount)
			assert.EqualValues(t, 10, env.TokenBalance(t, creator.tokenAccount))
		})
	}

	// The maximum memo length is accepted
	bountyAccount := testutil.GenerateSolanaKey(t)
	memo := strings.Repeat("a", bounty.MaxBountyInfoAccountMemoLength)
	require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(creator, bountyAccount, testutil.GenerateSolanaKey(t), memo)))

	info, err := env.engine.GetBounty(env.Ctx, bountyAccount)
	require.NoError(t, err)
	assert.Equal(t, memo, info.Memo)
}

func TestCreateBounty_AlreadyExists(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	creator := env.creator(t, 10)
	bountyAccount := testutil.GenerateSolanaKey(t)

	require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(creator, bountyAccount, testutil.GenerateSolanaKey(t), "first")))
	lamportsBefore := env.Lamports(t, creator.owner)

	err := env.engine.Execute(env.Ctx, env.createBounty(creator, bountyAccount, testutil.GenerateSolanaKey(t), "second"))
	testutil.AssertCustomError(t, err, bounty.ErrorAlreadyExists)

	info, err := env.engine.GetBounty(env.Ctx, bountyAccount)
	require.NoError(t, err)
	assert.Equal(t, "first", info.Memo)
	assert.EqualValues(t, 9, env.TokenBalance(t, creator.tokenAccount))
	assert.Equal(t, lamportsBefore, env.Lamports(t, creator.owner))
}

func TestCreateBounty_RollbackOnTransferFailure(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	creator := env.creator(t, 0)
	bountyAccount := testutil.GenerateSolanaKey(t)
	lamportsBefore := env.Lamports(t, creator.owner)

	ix := env.createBounty(creator, bountyAccount, testutil.GenerateSolanaKey(t), "no funds")
	for i := 0; i < 2; i++ {
		err := env.engine.Execute(env.Ctx, ix)
		testutil.AssertCustomError(t, err, token.ErrorInsufficientFunds)

		env.assertBountyNotFound(t, bountyAccount)
		assert.Zero(t, env.Lamports(t, bountyAccount))
		assert.Equal(t, lamportsBefore, env.Lamports(t, creator.owner))
		assert.Zero(t, env.TokenBalance(t, env.treasuryTokenAccount))
	}
}

func TestCreateBounty_SelfHeldFees(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{feePolicy: FeePolicySelf})

	creator := env.creator(t, 10)
	bountyAccount := testutil.GenerateSolanaKey(t)

	destination, err := token.GetAssociatedAccount(bountyAccount, env.mint)
	require.NoError(t, err)

	ix := env.createBounty(creator, bountyAccount, testutil.GenerateSolanaKey(t), "self held")

	// The configured treasury is not accepted under this policy
	testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, ix), bounty.ErrorInvalidTreasury)

	ix.Accounts[5].PublicKey = bountyAccount
	testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, ix), bounty.ErrorInvalidTokenAccount)

	ix.Accounts[6].PublicKey = destination
	require.NoError(t, env.engine.Execute(env.Ctx, ix))

	assert.EqualValues(t, 9, env.TokenBalance(t, creator.tokenAccount))
	assert.EqualValues(t, 1, env.TokenBalance(t, destination))
	assert.Zero(t, env.TokenBalance(t, env.treasuryTokenAccount))

	_, state, err := env.Runtime.GetTokenAccount(env.Ctx, destination)
	require.NoError(t, err)
	assert.EqualValues(t, bountyAccount, state.Owner)

	_, err = env.engine.GetBounty(env.Ctx, bountyAccount)
	require.NoError(t, err)
}

func TestCreateBounty_TransferHook(t *testing.T) {
	hookProgram := allowlist.DefaultProgramID

	env := setupWithConfig(t, &testOverrides{})
	allowlist.Register(env.Runtime, hookProgram)

	// Switch the required mint to one with the allowlist as its hook
	env.mint = env.CreateMint(t, env.authority, testDecimals, runtimetest.WithSelfPermanentDelegate(), runtimetest.WithTransferHook(env.authority, hookProgram))
	env.treasuryTokenAccount = env.CreateTokenAccount(t, env.authority, env.treasury, env.mint, 0)
	require.NoError(t, env.engine.Execute(env.Ctx, bounty.NewUpdateRequiredMintInstruction(
		&bounty.UpdateRequiredMintInstructionAccounts{Authority: env.authority, Config: env.config},
		&bounty.UpdateRequiredMintInstructionArgs{NewMint: env.mint},
	)))

	validation := env.SetupTransferHook(t, env.authority, hookProgram, env.mint, allowlist.ExtraAccountMetas())

	hookConfig, _, err := allowlist.GetConfigAddress(hookProgram, env.mint)
	require.NoError(t, err)
	require.NoError(t, env.Runtime.Invoke(env.Ctx, allowlist.NewInitConfigInstruction(hookProgram, &allowlist.InitConfigInstructionAccounts{
		Payer:  env.authority,
		Config: hookConfig,
		Mint:   env.mint,
	})))

	listWallet := func(tokenAccount ed25519.PublicKey, status allowlist.WalletStatus) ed25519.PublicKey {
		wallet, _, err := allowlist.GetWalletAddress(hookProgram, tokenAccount)
		require.NoError(t, err)
		require.NoError(t, env.Runtime.Invoke(env.Ctx, allowlist.NewInitWalletInstruction(
			hookProgram,
			&allowlist.InitWalletInstructionAccounts{
				Payer:        env.authority,
				Wallet:       wallet,
				Config:       hookConfig,
				Authority:    env.authority,
				TokenAccount: tokenAccount,
			},
			&allowlist.InitWalletInstructionArgs{Status: status},
		)))
		return wallet
	}

	treasuryWallet := listWallet(env.treasuryTokenAccount, allowlist.WalletStatusAllow)

	allowed := env.creator(t, 10)
	allowedWallet := listWallet(allowed.tokenAccount, allowlist.WalletStatusAllow)

	blocked := env.creator(t, 10)
	blockedWallet := listWallet(blocked.tokenAccount, allowlist.WalletStatusBlock)

	hookAccounts := func(sourceWallet ed25519.PublicKey) []solana.AccountMeta {
		return []solana.AccountMeta{
			{PublicKey: hookProgram},
			{PublicKey: validation},
			{PublicKey: sourceWallet},
			{PublicKey: treasuryWallet},
		}
	}

	// Extension accounts are required by the hook
	bountyAccount := testutil.GenerateSolanaKey(t)
	err = env.engine.Execute(env.Ctx, env.createBounty(allowed, bountyAccount, testutil.GenerateSolanaKey(t), "hooked"))
	assert.True(t, errors.Is(err, solana.ErrMissingAccount))
	env.assertBountyNotFound(t, bountyAccount)

	require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(allowed, bountyAccount, testutil.GenerateSolanaKey(t), "hooked", hookAccounts(allowedWallet)...)))
	assert.EqualValues(t, 9, env.TokenBalance(t, allowed.tokenAccount))
	assert.EqualValues(t, 1, env.TokenBalance(t, env.treasuryTokenAccount))

	// Hook rejections discard the bounty and the already applied transfer
	bountyAccount = testutil.GenerateSolanaKey(t)
	lamportsBefore := env.Lamports(t, blocked.owner)
	err = env.engine.Execute(env.Ctx, env.createBounty(blocked, bountyAccount, testutil.GenerateSolanaKey(t), "blocked", hookAccounts(blockedWallet)...))
	testutil.AssertCustomError(t, err, allowlist.ErrorWalletBlocked)

	env.assertBountyNotFound(t, bountyAccount)
	assert.EqualValues(t, 10, env.TokenBalance(t, blocked.tokenAccount))
	assert.EqualValues(t, 1, env.TokenBalance(t, env.treasuryTokenAccount))
	assert.Equal(t, lamportsBefore, env.Lamports(t, blocked.owner))
}

func TestUpdateBounty(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	owner := env.creator(t, 10)
	bountyAccount := testutil.GenerateSolanaKey(t)
	require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(owner, bountyAccount, testutil.GenerateSolanaKey(t), "fix bug")))

	original, err := env.engine.GetBounty(env.Ctx, bountyAccount)
	require.NoError(t, err)

	// Anyone other than the owner is rejected, however the accounts are named
	stranger := env.FundedWallet(t)
	for _, ix := range []solana.Instruction{
		env.updateBounty(stranger, owner.owner, bountyAccount, testutil.GenerateSolanaKey(t), "hijacked"),
		env.updateBounty(stranger, stranger, bountyAccount, testutil.GenerateSolanaKey(t), "hijacked"),
	} {
		testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, ix), bounty.ErrorUnauthorized)

		info, err := env.engine.GetBounty(env.Ctx, bountyAccount)
		require.NoError(t, err)
		assert.Equal(t, original, info)
	}

	unsigned := env.updateBounty(owner.owner, owner.owner, bountyAccount, testutil.GenerateSolanaKey(t), "unsigned")
	unsigned.Accounts[0].IsSigner = false
	assert.True(t, errors.Is(env.engine.Execute(env.Ctx, unsigned), solana.ErrMissingRequiredSignature))

	tooLong := env.updateBounty(owner.owner, owner.owner, bountyAccount, testutil.GenerateSolanaKey(t), strings.Repeat("a", bounty.MaxBountyInfoAccountMemoLength+1))
	testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, tooLong), bounty.ErrorMemoTooLong)

	env.clock.Advance(time.Hour)

	newAddress := testutil.GenerateSolanaKey(t)
	require.NoError(t, env.engine.Execute(env.Ctx, env.updateBounty(owner.owner, owner.owner, bountyAccount, newAddress, "fixed")))

	info, err := env.engine.GetBounty(env.Ctx, bountyAccount)
	require.NoError(t, err)
	assert.EqualValues(t, owner.owner, info.Owner)
	assert.EqualValues(t, newAddress, info.Address)
	assert.Equal(t, "fixed", info.Memo)
	assert.Equal(t, original.CreatedAt, info.CreatedAt)
	assert.Equal(t, testStartTime.Add(time.Hour).Unix(), info.UpdatedAt)

	// Updates are free of token side effects
	assert.EqualValues(t, 9, env.TokenBalance(t, owner.tokenAccount))

	missing := testutil.GenerateSolanaKey(t)
	err = env.engine.Execute(env.Ctx, env.updateBounty(owner.owner, owner.owner, missing, newAddress, "missing"))
	assert.True(t, errors.Is(err, solana.ErrUninitializedAccount))
}

func TestDeleteBounty(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	owner := env.creator(t, 10)
	bountyAccount := testutil.GenerateSolanaKey(t)

	lamportsBefore := env.Lamports(t, owner.owner)
	require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(owner, bountyAccount, testutil.GenerateSolanaKey(t), "fix bug")))

	stranger := env.FundedWallet(t)
	testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, env.deleteBounty(stranger, owner.owner, bountyAccount)), bounty.ErrorUnauthorized)
	testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, env.deleteBounty(stranger, stranger, bountyAccount)), bounty.ErrorUnauthorized)
	assert.EqualValues(t, runtimetest.DefaultWalletLamports, env.Lamports(t, stranger))

	_, err := env.engine.GetBounty(env.Ctx, bountyAccount)
	require.NoError(t, err)

	require.NoError(t, env.engine.Execute(env.Ctx, env.deleteBounty(owner.owner, owner.owner, bountyAccount)))

	env.assertBountyNotFound(t, bountyAccount)
	assert.Zero(t, env.Lamports(t, bountyAccount))
	assert.Equal(t, lamportsBefore, env.Lamports(t, owner.owner))

	err = env.engine.Execute(env.Ctx, env.deleteBounty(owner.owner, owner.owner, bountyAccount))
	assert.True(t, errors.Is(err, solana.ErrUninitializedAccount))

	// The address can be reused
	require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(owner, bountyAccount, testutil.GenerateSolanaKey(t), "again")))
	info, err := env.engine.GetBounty(env.Ctx, bountyAccount)
	require.NoError(t, err)
	assert.Equal(t, "again", info.Memo)
}

func TestBurnTokens(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	holder := env.creator(t, 10)
	supply := env.Supply(t, env.mint)

	stranger := env.FundedWallet(t)
	err := env.engine.Execute(env.Ctx, env.burnTokens(stranger, holder.owner, holder.tokenAccount, 5))
	testutil.AssertCustomError(t, err, bounty.ErrorUnauthorized)
	assert.EqualValues(t, 10, env.TokenBalance(t, holder.tokenAccount))

	unsigned := env.burnTokens(env.authority, holder.owner, holder.tokenAccount, 5)
	unsigned.Accounts[0].IsSigner = false
	assert.True(t, errors.Is(env.engine.Execute(env.Ctx, unsigned), solana.ErrMissingRequiredSignature))

	wrongOwner := env.burnTokens(env.authority, stranger, holder.tokenAccount, 5)
	testutil.AssertCustomError(t, env.engine.Execute(env.Ctx, wrongOwner), bounty.ErrorInvalidTokenAccount)

	require.NoError(t, env.engine.Execute(env.Ctx, env.burnTokens(env.authority, holder.owner, holder.tokenAccount, 5)))
	assert.EqualValues(t, 5, env.TokenBalance(t, holder.tokenAccount))
	assert.Equal(t, supply-5, env.Supply(t, env.mint))

	err = env.engine.Execute(env.Ctx, env.burnTokens(env.authority, holder.owner, holder.tokenAccount, 6))
	testutil.AssertCustomError(t, err, token.ErrorInsufficientFunds)
	assert.EqualValues(t, 5, env.TokenBalance(t, holder.tokenAccount))
}

func TestBurnTokens_ForwardsRemainingAccounts(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	holder := env.creator(t, 10)

	tokenProcessor, ok := env.Runtime.Processor(token.ProgramKey)
	require.True(t, ok)

	var burns []*token.DecompiledBurnChecked
	env.Runtime.Register(token.ProgramKey, runtime.ProcessorFunc(func(ctx context.Context, ix solana.Instruction) error {
		if cmd, err := token.GetCommand(ix); err == nil && cmd == token.CommandBurnChecked {
			decompiled, err := token.DecompileBurnChecked(ix)
			require.NoError(t, err)
			burns = append(burns, decompiled)
		}
		return tokenProcessor.Process(ctx, ix)
	}))

	remaining := []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(testutil.GenerateSolanaKey(t), false),
		solana.NewAccountMeta(testutil.GenerateSolanaKey(t), false),
		solana.NewReadonlyAccountMeta(testutil.GenerateSolanaKey(t), false),
	}

	ix := env.burnTokens(env.authority, holder.owner, holder.tokenAccount, 4)
	ix.Accounts = append(ix.Accounts, remaining...)
	require.NoError(t, env.engine.Execute(env.Ctx, ix))

	require.Len(t, burns, 1)
	assert.Equal(t, holder.tokenAccount, burns[0].Account)
	assert.Equal(t, env.mint, burns[0].Mint)
	assert.Equal(t, env.mint, burns[0].Authority)
	assert.True(t, burns[0].AuthoritySigned)
	assert.EqualValues(t, 4, burns[0].Amount)
	assert.Equal(t, remaining, burns[0].ExtraAccounts)

	assert.EqualValues(t, 6, env.TokenBalance(t, holder.tokenAccount))
}

func TestBurnTokens_RequiresSelfDelegatedMint(t *testing.T) {
	delegate := ed25519.PublicKey(make([]byte, ed25519.PublicKeySize))
	delegate[0] = 1

	env := setupWithConfig(t, &testOverrides{}, runtimetest.WithPermanentDelegate(delegate))

	holder := env.creator(t, 10)
	err := env.engine.Execute(env.Ctx, env.burnTokens(env.authority, holder.owner, holder.tokenAccount, 5))
	testutil.AssertCustomError(t, err, bounty.ErrorInvalidTokenMint)
	assert.EqualValues(t, 10, env.TokenBalance(t, holder.tokenAccount))
}

func TestGetBountiesByOwner(t *testing.T) {
	env := setupWithConfig(t, &testOverrides{})

	owner := env.creator(t, 10)
	other := env.creator(t, 10)

	_, err := env.engine.GetBountiesByOwner(env.Ctx, owner.owner)
	assert.Equal(t, bounty.ErrBountyNotFound, err)

	var expected []ed25519.PublicKey
	for i := 0; i < 3; i++ {
		bountyAccount := testutil.GenerateSolanaKey(t)
		require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(owner, bountyAccount, testutil.GenerateSolanaKey(t), "mine")))
		expected = append(expected, bountyAccount)
	}
	require.NoError(t, env.engine.Execute(env.Ctx, env.createBounty(other, testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "theirs")))

	recording := &ownerQueryRecorder{DatabaseData: env.engine.data}
	env.engine.data = recording

	owned, err := env.engine.GetBountiesByOwner(env.Ctx, owner.owner)
	require.NoError(t, err)
	require.Len(t, owned, len(expected))
	for i, item := range owned {
		assert.EqualValues(t, expected[i], item.Address)
		assert.EqualValues(t, owner.owner, item.Bounty.Owner)
		assert.Equal(t, "mine", item.Bounty.Memo)
	}

	// The owner filter is applied by the store, not after loading every bounty
	require.Len(t, recording.results, 1)
	assert.Len(t, recording.results[0], len(expected))
	assert.Equal(t, append(append([]byte{}, bounty.BountyInfoAccountDiscriminator...), owner.owner...), recording.prefixes[0])
}

type ownerQueryRecorder struct {
	data.DatabaseData

	prefixes [][]byte
	results  [][]*account.Record
}

func (r *ownerQueryRecorder) GetAllAccountsByOwner(ctx context.Context, owner string, dataPrefix []byte) ([]*account.Record, error) {
	records, err := r.DatabaseData.GetAllAccountsByOwner(ctx, owner, dataPrefix)
	r.prefixes = append(r.prefixes, dataPrefix)
	r.results = append(r.results, records)
	return records, err
}
