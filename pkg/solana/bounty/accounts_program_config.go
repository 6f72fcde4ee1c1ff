package bounty

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/bounty-server/pkg/solana/binary"
)

const (
	ProgramConfigAccountSize = (8 + // discriminator
		32 + // authority
		32) // required_token_mint
)

var ProgramConfigAccountDiscriminator = []byte{0xc4, 0xd2, 0x5a, 0xe7, 0x90, 0x95, 0x8c, 0x3f}

type ProgramConfigAccount struct {
	Authority         ed25519.PublicKey
	RequiredTokenMint ed25519.PublicKey
}

func (obj *ProgramConfigAccount) Marshal() []byte {
	data := make([]byte, ProgramConfigAccountSize)

	var offset int

	binary.PutDiscriminator(data, ProgramConfigAccountDiscriminator, &offset)
	binary.PutKey32(data, obj.Authority, &offset)
	binary.PutKey32(data, obj.RequiredTokenMint, &offset)

	return data
}

func (obj *ProgramConfigAccount) Unmarshal(data []byte) error {
	if len(data) < ProgramConfigAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	binary.GetDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, ProgramConfigAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data, &obj.Authority, &offset)
	binary.GetKey32(data, &obj.RequiredTokenMint, &offset)

	return nil
}

func (obj *ProgramConfigAccount) String() string {
	return fmt.Sprintf(
		"ProgramConfig{authority=%s,required_token_mint=%s}",
		base58.Encode(obj.Authority),
		base58.Encode(obj.RequiredTokenMint),
	)
}
