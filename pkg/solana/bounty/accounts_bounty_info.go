package bounty

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mr-tron/base58"

	"github.com/code-payments/bounty-server/pkg/solana/binary"
)

const (
	MaxBountyInfoAccountMemoLength = 1000
)

const (
	BountyInfoAccountSize = (8 + // discriminator
		32 + // owner
		32 + // address
		4 + MaxBountyInfoAccountMemoLength + // memo
		8 + // created_at
		8) // updated_at
)

var BountyInfoAccountDiscriminator = []byte{0xe9, 0x16, 0x18, 0x05, 0x8f, 0x9c, 0x21, 0xa4}

type BountyInfoAccount struct {
	Owner     ed25519.PublicKey
	Address   ed25519.PublicKey
	Memo      string
	CreatedAt int64
	UpdatedAt int64
}

func (obj *BountyInfoAccount) Marshal() []byte {
	data := make([]byte, BountyInfoAccountSize)

	var offset int

	binary.PutDiscriminator(data, BountyInfoAccountDiscriminator, &offset)
	binary.PutKey32(data, obj.Owner, &offset)
	binary.PutKey32(data, obj.Address, &offset)
	binary.PutString(data, obj.Memo, &offset)
	binary.PutInt64(data, obj.CreatedAt, &offset)
	binary.PutInt64(data, obj.UpdatedAt, &offset)

	return data
}

func (obj *BountyInfoAccount) Unmarshal(data []byte) error {
	if len(data) < BountyInfoAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	binary.GetDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, BountyInfoAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data, &obj.Owner, &offset)
	binary.GetKey32(data, &obj.Address, &offset)
	if err := binary.GetString(data, &obj.Memo, MaxBountyInfoAccountMemoLength, &offset); err != nil {
		return ErrInvalidAccountData
	}
	binary.GetInt64(data, &obj.CreatedAt, &offset)
	binary.GetInt64(data, &obj.UpdatedAt, &offset)

	return nil
}

func (obj *BountyInfoAccount) String() string {
	return fmt.Sprintf(
		"BountyInfo{owner=%s,address=%s,memo=%q,created_at=%s,updated_at=%s}",
		base58.Encode(obj.Owner),
		base58.Encode(obj.Address),
		obj.Memo,
		time.Unix(obj.CreatedAt, 0).UTC().Format(time.RFC3339),
		time.Unix(obj.UpdatedAt, 0).UTC().Format(time.RFC3339),
	)
}
