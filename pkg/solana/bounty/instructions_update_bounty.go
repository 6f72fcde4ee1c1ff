package bounty

import (
	"crypto/ed25519"

	"github.com/code-payments/bounty-server/pkg/solana"
	"github.com/code-payments/bounty-server/pkg/solana/binary"
)

type UpdateBountyInstructionArgs struct {
	Address ed25519.PublicKey
	Memo    string
}

func (args *UpdateBountyInstructionArgs) size() int {
	return (32 + // address
		binary.StringSize(args.Memo)) // memo
}

type UpdateBountyInstructionAccounts struct {
	Signer        ed25519.PublicKey
	BountyAccount ed25519.PublicKey
	Owner         ed25519.PublicKey
}

func NewUpdateBountyInstruction(
	accounts *UpdateBountyInstructionAccounts,
	args *UpdateBountyInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	data, offset := newInstructionData(UpdateBountyInstructionDiscriminator, args.size())

	binary.PutKey32(data, args.Address, &offset)
	binary.PutString(data, args.Memo, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Signer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.BountyAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Owner,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func DecompileUpdateBountyInstruction(ix solana.Instruction) (*UpdateBountyInstructionAccounts, *UpdateBountyInstructionArgs, error) {
	if err := checkInstruction(ix, UpdateBountyInstructionDiscriminator, 3); err != nil {
		return nil, nil, err
	}
	if len(ix.Data) < len(UpdateBountyInstructionDiscriminator)+32 {
		return nil, nil, ErrInvalidInstructionData
	}

	offset := len(UpdateBountyInstructionDiscriminator)

	var args UpdateBountyInstructionArgs
	binary.GetKey32(ix.Data, &args.Address, &offset)
	if err := binary.GetString(ix.Data, &args.Memo, len(ix.Data), &offset); err != nil {
		return nil, nil, ErrInvalidInstructionData
	}
	if offset != len(ix.Data) {
		return nil, nil, ErrInvalidInstructionData
	}

	return &UpdateBountyInstructionAccounts{
		Signer:        ix.Accounts[0].PublicKey,
		BountyAccount: ix.Accounts[1].PublicKey,
		Owner:         ix.Accounts[2].PublicKey,
	}, &args, nil
}
