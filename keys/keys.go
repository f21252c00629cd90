// Package keys converts between secp256k1 private keys and field elements of
// keyshare.Secp256k1, and parses the usual textual key encodings.
package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/wbrc/keyshare"
)

// WIF version bytes and the suffix marking a compressed public key.
const (
	MainnetVersion byte = 0x80
	TestnetVersion byte = 0xef

	compressMagic byte = 0x01
)

// ErrInvalidKey is returned for keys that are zero, too large or cannot be
// parsed.
var ErrInvalidKey = errors.New("invalid private key")

// FromPrivateKey returns the scalar of priv as an element of
// keyshare.Secp256k1.
func FromPrivateKey(priv *secp256k1.PrivateKey) (keyshare.Element, error) {
	b := priv.Serialize()
	defer clear(b)

	e, err := keyshare.Secp256k1.Element(b)
	if err != nil {
		return keyshare.Element{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if e.IsZero() {
		return keyshare.Element{}, fmt.Errorf("%w: zero scalar", ErrInvalidKey)
	}

	return e, nil
}

// ToPrivateKey returns the private key whose scalar is e. e must be a
// nonzero element of keyshare.Secp256k1.
func ToPrivateKey(e keyshare.Element) (*secp256k1.PrivateKey, error) {
	if !e.Field().Equal(keyshare.Secp256k1) {
		return nil, fmt.Errorf("%w: element of field %s", ErrInvalidKey, e.Field().Name())
	}
	if e.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidKey)
	}

	b := e.Bytes()
	defer clear(b)

	return fromScalarBytes(b)
}

func fromScalarBytes(b []byte) (*secp256k1.PrivateKey, error) {
	if len(b) != secp256k1.PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidKey, secp256k1.PrivKeyBytesLen, len(b))
	}

	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow {
		return nil, fmt.Errorf("%w: scalar exceeds the group order", ErrInvalidKey)
	}
	if s.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidKey)
	}

	return secp256k1.NewPrivateKey(&s), nil
}

// Generate returns a new random private key.
func Generate() (*secp256k1.PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// ParsePrivateKey accepts a 64 character hex scalar or a WIF string.
func ParsePrivateKey(s string) (*secp256k1.PrivateKey, error) {
	s = strings.TrimSpace(s)

	if len(s) == 2*secp256k1.PrivKeyBytesLen {
		if b, err := hex.DecodeString(s); err == nil {
			defer clear(b)
			return fromScalarBytes(b)
		}
	}

	priv, _, _, err := DecodeWIF(s)
	return priv, err
}

// EncodeWIF encodes priv in wallet import format.
func EncodeWIF(priv *secp256k1.PrivateKey, compressed, testnet bool) string {
	key := priv.Serialize()
	defer clear(key)

	payload := make([]byte, 0, secp256k1.PrivKeyBytesLen+1)
	defer clear(payload[:cap(payload)])
	payload = append(payload, key...)
	if compressed {
		payload = append(payload, compressMagic)
	}

	version := MainnetVersion
	if testnet {
		version = TestnetVersion
	}

	return base58.CheckEncode(payload, version)
}

// DecodeWIF parses a wallet import format string and reports whether it
// marks a compressed public key and belongs to testnet.
func DecodeWIF(s string) (priv *secp256k1.PrivateKey, compressed, testnet bool, err error) {
	payload, version, err := base58.CheckDecode(s)
	if err != nil {
		return nil, false, false, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	defer clear(payload)

	switch version {
	case MainnetVersion:
	case TestnetVersion:
		testnet = true
	default:
		return nil, false, false, fmt.Errorf("%w: unknown WIF version 0x%02x", ErrInvalidKey, version)
	}

	switch len(payload) {
	case secp256k1.PrivKeyBytesLen:
	case secp256k1.PrivKeyBytesLen + 1:
		if payload[secp256k1.PrivKeyBytesLen] != compressMagic {
			return nil, false, false, fmt.Errorf("%w: bad compression flag", ErrInvalidKey)
		}
		compressed = true
	default:
		return nil, false, false, fmt.Errorf("%w: WIF payload of %d bytes", ErrInvalidKey, len(payload))
	}

	priv, err = fromScalarBytes(payload[:secp256k1.PrivKeyBytesLen])
	return priv, compressed, testnet, err
}

// PublicKeyHex returns the compressed SEC1 public key of priv in hex.
func PublicKeyHex(priv *secp256k1.PrivateKey) string {
	return hex.EncodeToString(priv.PubKey().SerializeCompressed())
}

// MatchesPublicKey reports whether priv belongs to the hex encoded public
// key pub, compressed or uncompressed.
func MatchesPublicKey(priv *secp256k1.PrivateKey, pub string) (bool, error) {
	b, err := hex.DecodeString(strings.TrimSpace(pub))
	if err != nil {
		return false, fmt.Errorf("invalid public key: %w", err)
	}

	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return false, fmt.Errorf("invalid public key: %w", err)
	}

	return pk.IsEqual(priv.PubKey()), nil
}
