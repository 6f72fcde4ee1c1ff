package account

import (
	"bytes"
	"errors"
	"time"
)

// Record is the host's view of a single on-chain style account: lamports,
// opaque data and the program that owns it.
type Record struct {
	Id uint64

	Address string
	Owner   string

	Lamports uint64
	Data     []byte

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Owner) == 0 {
		return errors.New("owner is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	var data []byte
	if r.Data != nil {
		data = make([]byte, len(r.Data))
		copy(data, r.Data)
	}

	return Record{
		Id:            r.Id,
		Address:       r.Address,
		Owner:         r.Owner,
		Lamports:      r.Lamports,
		Data:          data,
		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id
	dst.Address = r.Address
	dst.Owner = r.Owner
	dst.Lamports = r.Lamports
	dst.Data = r.Data
	dst.CreatedAt = r.CreatedAt
	dst.LastUpdatedAt = r.LastUpdatedAt
}

// HasDataPrefix reports whether the account data starts with prefix, typically
// an account discriminator.
func (r *Record) HasDataPrefix(prefix []byte) bool {
	return bytes.HasPrefix(r.Data, prefix)
}
