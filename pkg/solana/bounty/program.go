package bounty

import (
	"crypto/ed25519"
	"errors"

	"github.com/code-payments/bounty-server/pkg/solana"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = solana.MustBase58Decode("vRF8A5fAANqXW8hpDvZ9gsugZKCPYhwGg5mbKffJx6P")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	// Default destination wallet for creation fees
	TREASURY_WALLET = solana.MustBase58Decode("GrLCFRYBs3cPaEJgu18fMbQAujPJCmgJiD9V9zB4HufC")
)

var (
	SYSTEM_PROGRAM_ID           = ed25519.PublicKey(solana.MustBase58Decode("11111111111111111111111111111111"))
	TOKEN_2022_PROGRAM_ID       = ed25519.PublicKey(solana.MustBase58Decode("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"))
	ASSOCIATED_TOKEN_PROGRAM_ID = ed25519.PublicKey(solana.MustBase58Decode("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"))
)

// Program errors, returned as custom instruction errors.
const (
	ErrorUnauthorized solana.CustomError = 6000 + iota
	ErrorInvalidTokenMint
	ErrorInvalidTreasury
	ErrorAlreadyExists
	ErrorInvalidProgramConfig
	ErrorInvalidTokenAccount
	ErrorMemoTooLong
)

var errorMessages = map[solana.CustomError]string{
	ErrorUnauthorized:         "Unauthorized access",
	ErrorInvalidTokenMint:     "Invalid token mint. Only the specified Token-2022 token is accepted",
	ErrorInvalidTreasury:      "Invalid treasury account",
	ErrorAlreadyExists:        "Account already exists",
	ErrorInvalidProgramConfig: "Invalid program config account",
	ErrorInvalidTokenAccount:  "Invalid token account",
	ErrorMemoTooLong:          "Memo exceeds the maximum length",
}

// ErrorMessage returns the program's message for a custom error code.
func ErrorMessage(code solana.CustomError) (string, bool) {
	msg, ok := errorMessages[code]
	return msg, ok
}
