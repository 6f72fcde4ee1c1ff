package bounty

import (
	"crypto/ed25519"

	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/binary"
)

const (
	UpdateRequiredMintInstructionArgsSize = 32 // new_mint
)

type UpdateRequiredMintInstructionArgs struct {
	NewMint ed25519.PublicKey
}

type UpdateRequiredMintInstructionAccounts struct {
	Authority ed25519.PublicKey
	Config    ed25519.PublicKey
}

func NewUpdateRequiredMintInstruction(
	accounts *UpdateRequiredMintInstructionAccounts,
	args *UpdateRequiredMintInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	data, offset := newInstructionData(UpdateRequiredMintInstructionDiscriminator, UpdateRequiredMintInstructionArgsSize)

	binary.PutKey32(data, args.NewMint, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Config,
				IsWritable: true,
				IsSigner:   false,
			},
		},
	}
}

func DecompileUpdateRequiredMintInstruction(ix solana.Instruction) (*UpdateRequiredMintInstructionAccounts, *UpdateRequiredMintInstructionArgs, error) {
	if err := checkInstruction(ix, UpdateRequiredMintInstructionDiscriminator, 2); err != nil {
		return nil, nil, err
	}
	if len(ix.Data) != len(UpdateRequiredMintInstructionDiscriminator)+UpdateRequiredMintInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := len(UpdateRequiredMintInstructionDiscriminator)

	var args UpdateRequiredMintInstructionArgs
	binary.GetKey32(ix.Data, &args.NewMint, &offset)

	return &UpdateRequiredMintInstructionAccounts{
		Authority: ix.Accounts[0].PublicKey,
		Config:    ix.Accounts[1].PublicKey,
	}, &args, nil
}
