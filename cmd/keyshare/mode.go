package main

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// mode is an AEAD a sealed file can be encrypted with. unseal detects a wrong
// key by a failed Open.
type mode struct {
	description string
	keySize     int
	aead        func(key []byte) (cipher.AEAD, error)
}

var modes = map[string]mode{
	"aes-256-gcm": {
		description: "AES 256-bit in Galois Counter Mode",
		keySize:     32,
		aead: func(key []byte) (cipher.AEAD, error) {
			b, err := aes.NewCipher(key)
			if err != nil {
				return nil, err
			}

			return cipher.NewGCM(b)
		},
	},
	"chacha20-poly1305": {
		description: "ChaCha20 with Poly1305 MAC",
		keySize:     chacha20poly1305.KeySize,
		aead:        chacha20poly1305.New,
	},
	"xchacha20-poly1305": {
		description: "XChaCha20 with Poly1305 MAC, 192-bit nonce",
		keySize:     chacha20poly1305.KeySize,
		aead:        chacha20poly1305.NewX,
	},
}

func lookupMode(name string) (mode, error) {
	m, ok := modes[name]
	if !ok {
		return mode{}, fmt.Errorf("unknown mode %q, available: %v", name, modeNames())
	}
	return m, nil
}

// modeUsage lists the modes with their descriptions, one per line.
func modeUsage() string {
	var b strings.Builder
	for _, name := range modeNames() {
		fmt.Fprintf(&b, "\n  %-20s %s", name, modes[name].description)
	}
	return b.String()
}

func modeNames() []string {
	names := make([]string, 0, len(modes))
	for name := range modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
