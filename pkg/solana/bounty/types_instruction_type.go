package bounty

import (
	"bytes"

	"github.com/code-payments/bounty-server/pkg/solana"
)

type InstructionType uint8

const (
	InstructionTypeUnknown InstructionType = iota
	InstructionTypeInitializeConfig
	InstructionTypeUpdateRequiredMint
	InstructionTypeCreateBounty
	InstructionTypeUpdateBounty
	InstructionTypeDeleteBounty
	InstructionTypeBurnTokens
)

// Instruction discriminators are sha256("global:<name>")[:8]
var (
	InitializeConfigInstructionDiscriminator   = []byte{0xd0, 0x7f, 0x15, 0x01, 0xc2, 0xbe, 0xc4, 0x46}
	UpdateRequiredMintInstructionDiscriminator = []byte{0x02, 0xcb, 0x4d, 0x78, 0xc3, 0x15, 0xea, 0x8c}
	CreateBountyInstructionDiscriminator       = []byte{0x7a, 0x5a, 0x0e, 0x8f, 0x08, 0x7d, 0xc8, 0x02}
	UpdateBountyInstructionDiscriminator       = []byte{0xa2, 0xfe, 0x17, 0x99, 0x73, 0x55, 0x53, 0xcb}
	DeleteBountyInstructionDiscriminator       = []byte{0x2b, 0xa7, 0x6b, 0xba, 0x63, 0x37, 0xf6, 0x19}
	BurnTokensInstructionDiscriminator         = []byte{0x4c, 0x0f, 0x33, 0xfe, 0xe5, 0xd7, 0x79, 0x42}
)

var instructionDiscriminators = map[InstructionType][]byte{
	InstructionTypeInitializeConfig:   InitializeConfigInstructionDiscriminator,
	InstructionTypeUpdateRequiredMint: UpdateRequiredMintInstructionDiscriminator,
	InstructionTypeCreateBounty:       CreateBountyInstructionDiscriminator,
	InstructionTypeUpdateBounty:       UpdateBountyInstructionDiscriminator,
	InstructionTypeDeleteBounty:       DeleteBountyInstructionDiscriminator,
	InstructionTypeBurnTokens:         BurnTokensInstructionDiscriminator,
}

// GetInstructionType identifies a bounty program instruction by its
// discriminator.
func GetInstructionType(ix solana.Instruction) (InstructionType, error) {
	if !bytes.Equal(ix.Program, PROGRAM_ID) {
		return InstructionTypeUnknown, ErrInvalidProgram
	}
	if len(ix.Data) < 8 {
		return InstructionTypeUnknown, ErrInvalidInstructionData
	}

	for instructionType, discriminator := range instructionDiscriminators {
		if bytes.Equal(ix.Data[:8], discriminator) {
			return instructionType, nil
		}
	}
	return InstructionTypeUnknown, ErrInvalidInstructionData
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeInitializeConfig:
		return "initialize_config"
	case InstructionTypeUpdateRequiredMint:
		return "update_required_mint"
	case InstructionTypeCreateBounty:
		return "create_bounty"
	case InstructionTypeUpdateBounty:
		return "update_bounty"
	case InstructionTypeDeleteBounty:
		return "delete_bounty"
	case InstructionTypeBurnTokens:
		return "burn_tokens"
	}
	return "unknown"
}
