package bounty

import (
	"crypto/ed25519"

	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/binary"
)

const (
	BurnTokensInstructionArgsSize = 8 // amount

	burnTokensInstructionAccountCount = 6
)

type BurnTokensInstructionArgs struct {
	Amount uint64
}

type BurnTokensInstructionAccounts struct {
	Authority          ed25519.PublicKey
	Config             ed25519.PublicKey
	Mint               ed25519.PublicKey
	TargetOwner        ed25519.PublicKey
	TargetTokenAccount ed25519.PublicKey

	// Forwarded as is to the token program.
	RemainingAccounts []solana.AccountMeta
}

func NewBurnTokensInstruction(
	accounts *BurnTokensInstructionAccounts,
	args *BurnTokensInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	data, offset := newInstructionData(BurnTokensInstructionDiscriminator, BurnTokensInstructionArgsSize)

	binary.PutUint64(data, args.Amount, &offset)

	ixAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.Authority,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Config,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.Mint,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.TargetOwner,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.TargetTokenAccount,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  TOKEN_2022_PROGRAM_ID,
			IsWritable: false,
			IsSigner:   false,
		},
	}
	ixAccounts = append(ixAccounts, accounts.RemainingAccounts...)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: ixAccounts,
	}
}

func DecompileBurnTokensInstruction(ix solana.Instruction) (*BurnTokensInstructionAccounts, *BurnTokensInstructionArgs, error) {
	if err := checkInstruction(ix, BurnTokensInstructionDiscriminator, burnTokensInstructionAccountCount); err != nil {
		return nil, nil, err
	}
	if len(ix.Data) != len(BurnTokensInstructionDiscriminator)+BurnTokensInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := len(BurnTokensInstructionDiscriminator)

	var args BurnTokensInstructionArgs
	binary.GetUint64(ix.Data, &args.Amount, &offset)

	return &BurnTokensInstructionAccounts{
		Authority:          ix.Accounts[0].PublicKey,
		Config:             ix.Accounts[1].PublicKey,
		Mint:               ix.Accounts[2].PublicKey,
		TargetOwner:        ix.Accounts[3].PublicKey,
		TargetTokenAccount: ix.Accounts[4].PublicKey,
		RemainingAccounts:  ix.Accounts[burnTokensInstructionAccountCount:],
	}, &args, nil
}
