package bounty

import (
	"crypto/ed25519"

	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/binary"
)

const (
	InitializeConfigInstructionArgsSize = 32 // required_token_mint
)

type InitializeConfigInstructionArgs struct {
	RequiredTokenMint ed25519.PublicKey
}

type InitializeConfigInstructionAccounts struct {
	Authority ed25519.PublicKey
	Config    ed25519.PublicKey
}

func NewInitializeConfigInstruction(
	accounts *InitializeConfigInstructionAccounts,
	args *InitializeConfigInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	data, offset := newInstructionData(InitializeConfigInstructionDiscriminator, InitializeConfigInstructionArgsSize)

	binary.PutKey32(data, args.RequiredTokenMint, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Authority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Config,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func DecompileInitializeConfigInstruction(ix solana.Instruction) (*InitializeConfigInstructionAccounts, *InitializeConfigInstructionArgs, error) {
	if err := checkInstruction(ix, InitializeConfigInstructionDiscriminator, 3); err != nil {
		return nil, nil, err
	}
	if len(ix.Data) != len(InitializeConfigInstructionDiscriminator)+InitializeConfigInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := len(InitializeConfigInstructionDiscriminator)

	var args InitializeConfigInstructionArgs
	binary.GetKey32(ix.Data, &args.RequiredTokenMint, &offset)

	return &InitializeConfigInstructionAccounts{
		Authority: ix.Accounts[0].PublicKey,
		Config:    ix.Accounts[1].PublicKey,
	}, &args, nil
}
