package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrBufferTooSmall is returned when a variable length value runs past the
// end of its buffer.
var ErrBufferTooSmall = errors.New("buffer too small")

// The Put/Get helpers read and write little endian values at *offset and
// advance it. Callers are responsible for sizing fixed layouts up front.

func PutDiscriminator(dst []byte, v []byte, offset *int) {
	copy(dst[*offset:*offset+8], v)
	*offset += 8
}

func GetDiscriminator(src []byte, dst *[]byte, offset *int) {
	*dst = make([]byte, 8)
	copy(*dst, src[*offset:])
	*offset += 8
}

func PutKey32(dst []byte, v ed25519.PublicKey, offset *int) {
	copy(dst[*offset:*offset+ed25519.PublicKeySize], v)
	*offset += ed25519.PublicKeySize
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src[*offset:])
	*offset += ed25519.PublicKeySize
}

// PutOptionalKey32 writes a COption<Pubkey> with a 4 byte tag.
func PutOptionalKey32(dst []byte, v ed25519.PublicKey, offset *int) {
	if len(v) > 0 {
		binary.LittleEndian.PutUint32(dst[*offset:], 1)
		copy(dst[*offset+4:], v)
	}
	*offset += 4 + ed25519.PublicKeySize
}

func GetOptionalKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	if binary.LittleEndian.Uint32(src[*offset:]) == 1 {
		*dst = make([]byte, ed25519.PublicKeySize)
		copy(*dst, src[*offset+4:])
	}
	*offset += 4 + ed25519.PublicKeySize
}

// PutNonZeroKey32 writes an OptionalNonZeroPubkey, where the zero key means none.
func PutNonZeroKey32(dst []byte, v ed25519.PublicKey, offset *int) {
	if len(v) > 0 {
		copy(dst[*offset:], v)
	}
	*offset += ed25519.PublicKeySize
}

func GetNonZeroKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	raw := src[*offset : *offset+ed25519.PublicKeySize]
	*offset += ed25519.PublicKeySize

	for _, b := range raw {
		if b != 0 {
			*dst = make([]byte, ed25519.PublicKeySize)
			copy(*dst, raw)
			return
		}
	}
	*dst = nil
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[*offset] = v
	*offset += 1
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[*offset]
	*offset += 1
}

func PutBool(dst []byte, v bool, offset *int) {
	if v {
		dst[*offset] = 1
	} else {
		dst[*offset] = 0
	}
	*offset += 1
}

func GetBool(src []byte, dst *bool, offset *int) {
	*dst = src[*offset] != 0
	*offset += 1
}

func PutUint16(dst []byte, v uint16, offset *int) {
	binary.LittleEndian.PutUint16(dst[*offset:], v)
	*offset += 2
}

func GetUint16(src []byte, dst *uint16, offset *int) {
	*dst = binary.LittleEndian.Uint16(src[*offset:])
	*offset += 2
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst[*offset:], v)
	*offset += 4
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src[*offset:])
	*offset += 4
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], v)
	*offset += 8
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src[*offset:])
	*offset += 8
}

// PutOptionalUint64 writes a COption<u64> with a 4 byte tag.
func PutOptionalUint64(dst []byte, v *uint64, offset *int) {
	if v != nil {
		binary.LittleEndian.PutUint32(dst[*offset:], 1)
		binary.LittleEndian.PutUint64(dst[*offset+4:], *v)
	}
	*offset += 4 + 8
}

func GetOptionalUint64(src []byte, dst **uint64, offset *int) {
	if binary.LittleEndian.Uint32(src[*offset:]) == 1 {
		val := binary.LittleEndian.Uint64(src[*offset+4:])
		*dst = &val
	}
	*offset += 4 + 8
}

func PutInt64(dst []byte, v int64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], uint64(v))
	*offset += 8
}

func GetInt64(src []byte, dst *int64, offset *int) {
	*dst = int64(binary.LittleEndian.Uint64(src[*offset:]))
	*offset += 8
}

// StringSize is the encoded size of a Borsh string.
func StringSize(v string) int {
	return 4 + len(v)
}

// PutString writes a Borsh string: a u32 length followed by the raw bytes.
func PutString(dst []byte, v string, offset *int) {
	binary.LittleEndian.PutUint32(dst[*offset:], uint32(len(v)))
	copy(dst[*offset+4:], v)
	*offset += StringSize(v)
}

// GetString reads a Borsh string, rejecting lengths beyond maxLength or past
// the end of src.
func GetString(src []byte, dst *string, maxLength int, offset *int) error {
	if len(src) < *offset+4 {
		return ErrBufferTooSmall
	}

	length := int(binary.LittleEndian.Uint32(src[*offset:]))
	if length > maxLength {
		return errors.Errorf("string length %d exceeds max %d", length, maxLength)
	}
	if len(src) < *offset+4+length {
		return ErrBufferTooSmall
	}

	*dst = string(src[*offset+4 : *offset+4+length])
	*offset += 4 + length
	return nil
}
