package service

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

const ipHashContext = "votegate 2026 vote client address"

// ipHasher keys BLAKE3 with a secret so stored hashes cannot be reversed by
// enumerating the address space.
type ipHasher struct {
	key []byte
}

func newIPHasher(salt string) *ipHasher {
	key := make([]byte, 32)
	blake3.DeriveKey(ipHashContext, []byte(salt), key)
	return &ipHasher{key: key}
}

func (h *ipHasher) Sum(ip string) string {
	if ip == "" {
		return ""
	}
	hasher, err := blake3.NewKeyed(h.key)
	if err != nil {
		// key is always 32 bytes
		panic("ballot: keyed hash initialization failed: " + err.Error())
	}
	_, _ = hasher.Write([]byte(ip))
	return hex.EncodeToString(hasher.Sum(nil)[:16])
}
