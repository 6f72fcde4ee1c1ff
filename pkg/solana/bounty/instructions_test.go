package bounty

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bounty-server/pkg/solana"
)

func TestInitializeConfigInstruction(t *testing.T) {
	keys := generateKeys(t, 3)

	ix := NewInitializeConfigInstruction(
		&InitializeConfigInstructionAccounts{Authority: keys[0], Config: keys[1]},
		&InitializeConfigInstructionArgs{RequiredTokenMint: keys[2]},
	)
	assert.EqualValues(t, PROGRAM_ID, ix.Program)
	assert.Equal(t, InitializeConfigInstructionDiscriminator, ix.Data[:8])
	require.Len(t, ix.Accounts, 3)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.EqualValues(t, SYSTEM_PROGRAM_ID, ix.Accounts[2].PublicKey)

	instructionType, err := GetInstructionType(ix)
	require.NoError(t, err)
	assert.Equal(t, InstructionTypeInitializeConfig, instructionType)
	assert.Equal(t, "initialize_config", instructionType.String())

	accounts, args, err := DecompileInitializeConfigInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, keys[0], accounts.Authority)
	assert.Equal(t, keys[1], accounts.Config)
	assert.Equal(t, keys[2], args.RequiredTokenMint)

	_, _, err = DecompileUpdateRequiredMintInstruction(ix)
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestUpdateRequiredMintInstruction(t *testing.T) {
	keys := generateKeys(t, 3)

	ix := NewUpdateRequiredMintInstruction(
		&UpdateRequiredMintInstructionAccounts{Authority: keys[0], Config: keys[1]},
		&UpdateRequiredMintInstructionArgs{NewMint: keys[2]},
	)
	require.Len(t, ix.Accounts, 2)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.False(t, ix.Accounts[0].IsWritable)

	accounts, args, err := DecompileUpdateRequiredMintInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, keys[0], accounts.Authority)
	assert.Equal(t, keys[1], accounts.Config)
	assert.Equal(t, keys[2], args.NewMint)

	ix.Accounts = ix.Accounts[:1]
	_, _, err = DecompileUpdateRequiredMintInstruction(ix)
	assert.Equal(t, solana.ErrNotEnoughAccountKeys, err)
}

func TestCreateBountyInstruction(t *testing.T) {
	keys := generateKeys(t, 9)
	remaining := []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(keys[7], false),
		solana.NewAccountMeta(keys[8], false),
	}

	ix := NewCreateBountyInstruction(
		&CreateBountyInstructionAccounts{
			Signer:                  keys[0],
			BountyAccount:           keys[1],
			Config:                  keys[2],
			Mint:                    keys[3],
			UserTokenAccount:        keys[4],
			Treasury:                keys[5],
			DestinationTokenAccount: keys[6],
			RemainingAccounts:       remaining,
		},
		&CreateBountyInstructionArgs{Address: keys[6], Memo: "fix bug"},
	)
	assert.Len(t, ix.Data, 8+32+4+7)
	require.Len(t, ix.Accounts, 12)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[1].IsSigner)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.EqualValues(t, TOKEN_2022_PROGRAM_ID, ix.Accounts[7].PublicKey)
	assert.EqualValues(t, ASSOCIATED_TOKEN_PROGRAM_ID, ix.Accounts[8].PublicKey)
	assert.EqualValues(t, SYSTEM_PROGRAM_ID, ix.Accounts[9].PublicKey)
	assert.Equal(t, remaining, ix.Accounts[10:])

	accounts, args, err := DecompileCreateBountyInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, keys[0], accounts.Signer)
	assert.Equal(t, keys[1], accounts.BountyAccount)
	assert.Equal(t, keys[2], accounts.Config)
	assert.Equal(t, keys[3], accounts.Mint)
	assert.Equal(t, keys[4], accounts.UserTokenAccount)
	assert.Equal(t, keys[5], accounts.Treasury)
	assert.Equal(t, keys[6], accounts.DestinationTokenAccount)
	assert.Equal(t, remaining, accounts.RemainingAccounts)
	assert.Equal(t, keys[6], args.Address)
	assert.Equal(t, "fix bug", args.Memo)

	// Memos beyond the account limit still decode; enforcement is up to the
	// program.
	long := NewCreateBountyInstruction(accounts, &CreateBountyInstructionArgs{
		Address: keys[6],
		Memo:    strings.Repeat("x", MaxBountyInfoAccountMemoLength+1),
	})
	_, args, err = DecompileCreateBountyInstruction(long)
	require.NoError(t, err)
	assert.Len(t, args.Memo, MaxBountyInfoAccountMemoLength+1)

	trailing := ix
	trailing.Data = append(append([]byte{}, ix.Data...), 0)
	_, _, err = DecompileCreateBountyInstruction(trailing)
	assert.Equal(t, ErrInvalidInstructionData, err)

	truncated := ix
	truncated.Data = ix.Data[:len(ix.Data)-1]
	_, _, err = DecompileCreateBountyInstruction(truncated)
	assert.Equal(t, ErrInvalidInstructionData, err)

	wrongProgram := ix
	wrongProgram.Program = keys[0]
	_, _, err = DecompileCreateBountyInstruction(wrongProgram)
	assert.Equal(t, ErrInvalidProgram, err)
}

func TestUpdateBountyInstruction(t *testing.T) {
	keys := generateKeys(t, 4)

	ix := NewUpdateBountyInstruction(
		&UpdateBountyInstructionAccounts{Signer: keys[0], BountyAccount: keys[1], Owner: keys[2]},
		&UpdateBountyInstructionArgs{Address: keys[3], Memo: ""},
	)
	require.Len(t, ix.Accounts, 3)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.False(t, ix.Accounts[2].IsWritable)

	accounts, args, err := DecompileUpdateBountyInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, keys[0], accounts.Signer)
	assert.Equal(t, keys[1], accounts.BountyAccount)
	assert.Equal(t, keys[2], accounts.Owner)
	assert.Equal(t, keys[3], args.Address)
	assert.Empty(t, args.Memo)
}

func TestDeleteBountyInstruction(t *testing.T) {
	keys := generateKeys(t, 3)

	ix := NewDeleteBountyInstruction(&DeleteBountyInstructionAccounts{Signer: keys[0], BountyAccount: keys[1], Owner: keys[2]})
	assert.Equal(t, DeleteBountyInstructionDiscriminator, ix.Data)

	accounts, err := DecompileDeleteBountyInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, keys[0], accounts.Signer)
	assert.Equal(t, keys[1], accounts.BountyAccount)
	assert.Equal(t, keys[2], accounts.Owner)

	instructionType, err := GetInstructionType(ix)
	require.NoError(t, err)
	assert.Equal(t, InstructionTypeDeleteBounty, instructionType)
}

func TestBurnTokensInstruction(t *testing.T) {
	keys := generateKeys(t, 6)
	remaining := []solana.AccountMeta{solana.NewReadonlyAccountMeta(keys[5], false)}

	ix := NewBurnTokensInstruction(
		&BurnTokensInstructionAccounts{
			Authority:          keys[0],
			Config:             keys[1],
			Mint:               keys[2],
			TargetOwner:        keys[3],
			TargetTokenAccount: keys[4],
			RemainingAccounts:  remaining,
		},
		&BurnTokensInstructionArgs{Amount: 5},
	)
	require.Len(t, ix.Accounts, 7)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[2].IsWritable)
	assert.True(t, ix.Accounts[4].IsWritable)
	assert.EqualValues(t, TOKEN_2022_PROGRAM_ID, ix.Accounts[5].PublicKey)

	accounts, args, err := DecompileBurnTokensInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, keys[0], accounts.Authority)
	assert.Equal(t, keys[1], accounts.Config)
	assert.Equal(t, keys[2], accounts.Mint)
	assert.Equal(t, keys[3], accounts.TargetOwner)
	assert.Equal(t, keys[4], accounts.TargetTokenAccount)
	assert.Equal(t, remaining, accounts.RemainingAccounts)
	assert.EqualValues(t, 5, args.Amount)
}

func TestGetInstructionType_Invalid(t *testing.T) {
	keys := generateKeys(t, 1)

	_, err := GetInstructionType(solana.NewInstruction(keys[0], BurnTokensInstructionDiscriminator))
	assert.Equal(t, ErrInvalidProgram, err)

	_, err = GetInstructionType(solana.NewInstruction(PROGRAM_ID, []byte{1, 2, 3}))
	assert.Equal(t, ErrInvalidInstructionData, err)

	_, err = GetInstructionType(solana.NewInstruction(PROGRAM_ID, make([]byte, 8)))
	assert.Equal(t, ErrInvalidInstructionData, err)
}
