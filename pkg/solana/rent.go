package solana

// Reference: https://github.com/solana-labs/solana/blob/v1.18.0/sdk/program/src/rent.rs
const (
	// AccountStorageOverhead is the number of bytes charged for on top of an
	// account's data.
	AccountStorageOverhead = 128

	defaultLamportsPerByteYear = 3480
	defaultExemptionThreshold  = 2
)

// RentExemptBalance returns the minimum lamports an account holding dataSize
// bytes must carry to be rent exempt.
func RentExemptBalance(dataSize uint64) uint64 {
	return (AccountStorageOverhead + dataSize) * defaultLamportsPerByteYear * defaultExemptionThreshold
}
