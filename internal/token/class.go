package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Class distinguishes how often a link may be redeemed.
type Class int

const (
	// SingleUse links are consumed on first successful redemption.
	SingleUse Class = iota
	// Persistent links stay redeemable until expiry. Operator use only.
	Persistent
)

// persistentPrefix tags persistent nonces on the wire. The class travels
// inside the signed nonce, so the URL keeps the same four parameters for
// both classes and stripping the prefix invalidates the signature.
const persistentPrefix = "p-"

func (c Class) String() string {
	if c == Persistent {
		return "persistent"
	}
	return "single_use"
}

// NewNonce returns a fresh random nonce: 16 bytes of entropy, hex-encoded.
func NewNonce() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// JoinNonce encodes the class into the wire form of the nonce.
func JoinNonce(class Class, nonce string) string {
	if class == Persistent {
		return persistentPrefix + nonce
	}
	return nonce
}

// SplitNonce recovers the class from a wire nonce.
func SplitNonce(wire string) (Class, string) {
	if rest, ok := strings.CutPrefix(wire, persistentPrefix); ok {
		return Persistent, rest
	}
	return SingleUse, wire
}
