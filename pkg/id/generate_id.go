package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const addressAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewTxHash returns a 64-char uppercase hex transaction hash.
func NewTxHash() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return strings.ToUpper(hex.EncodeToString(b))
}

// NewAddress returns a classic-style account address: "r" followed by
// 33 characters from the ledger alphabet.
func NewAddress() string {
	return "r" + randomFrom(addressAlphabet, 33)
}

// NewSecret returns a seed-style secret: "s" followed by 28 characters.
func NewSecret() string {
	return "s" + randomFrom(addressAlphabet, 28)
}

func randomFrom(alphabet string, n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	out := make([]byte, n)
	for i := range b {
		out[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(out)
}
