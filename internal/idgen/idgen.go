// Package idgen produces the external identifiers used across the system:
// usr-/tan- prefixed hex ids and 01-prefixed account numbers. The entropy
// source is injected so tests can supply deterministic sequences.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
)

const (
	userIDPrefix        = "usr-"
	transactionIDPrefix = "tan-"

	// Account numbers are 01 followed by 6 digits drawn from
	// [100000, 999999]. The space is small; uniqueness is the caller's
	// responsibility (regenerate on collision).
	accountNumberMin   = 100000
	accountNumberRange = 900000
)

// Generator draws all identifier material from a single io.Reader.
type Generator struct {
	entropy io.Reader
}

// New returns a Generator backed by crypto/rand.
func New() *Generator {
	return NewWithEntropy(rand.Reader)
}

// NewWithEntropy returns a Generator reading from the given source.
func NewWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// NewUserID returns "usr-" followed by 12 lowercase hex characters.
func (g *Generator) NewUserID() string {
	return userIDPrefix + g.hexID()
}

// NewTransactionID returns "tan-" followed by 12 lowercase hex characters.
func (g *Generator) NewTransactionID() string {
	return transactionIDPrefix + g.hexID()
}

// NewAccountNumber returns "01" followed by 6 decimal digits.
func (g *Generator) NewAccountNumber() string {
	var buf [4]byte
	if _, err := io.ReadFull(g.entropy, buf[:]); err != nil {
		// crypto/rand never fails in practice; a broken injected source
		// is a programming error in the test harness.
		panic(fmt.Sprintf("idgen: entropy source failed: %v", err))
	}
	n := binary.BigEndian.Uint32(buf[:]) % accountNumberRange
	return fmt.Sprintf("01%06d", accountNumberMin+n)
}

// hexID draws a 128-bit random value and truncates it to 12 hex characters,
// 48 bits of entropy. Effectively unique across a process lifetime without
// needing cryptographic strength.
func (g *Generator) hexID() string {
	u, err := uuid.NewRandomFromReader(g.entropy)
	if err != nil {
		panic(fmt.Sprintf("idgen: entropy source failed: %v", err))
	}
	return hex.EncodeToString(u[:6])
}
