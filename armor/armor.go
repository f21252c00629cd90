// Package armor renders single shares as text: base58check strings, which
// detect typos through their checksum, or plain hex.
package armor

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/wbrc/keyshare"
)

// Version bytes prefixed to base58check payloads.
const (
	ShareVersion   byte = 0x4b // keyshare.Share
	MessageVersion byte = 0x4d // message share
)

// Format is a textual share encoding.
type Format int

const (
	Base58 Format = iota
	Hex
)

func (f Format) String() string {
	switch f {
	case Base58:
		return "base58"
	case Hex:
		return "hex"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses the output of Format.String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "base58", "":
		return Base58, nil
	case "hex":
		return Hex, nil
	default:
		return 0, fmt.Errorf("unknown share format %q", s)
	}
}

// Encode returns payload in format f. version only applies to Base58.
func (f Format) Encode(version byte, payload []byte) string {
	if f == Hex {
		return hex.EncodeToString(payload)
	}
	return base58.CheckEncode(payload, version)
}

// Decode reverses Encode. Errors wrap keyshare.ErrMalformedShare.
func (f Format) Decode(version byte, s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	if f == Hex {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, errors.Join(keyshare.ErrMalformedShare, err)
		}
		return b, nil
	}

	b, v, err := base58.CheckDecode(s)
	if err != nil {
		return nil, errors.Join(keyshare.ErrMalformedShare, err)
	}
	if v != version {
		return nil, fmt.Errorf("%w: version 0x%02x, want 0x%02x", keyshare.ErrMalformedShare, v, version)
	}
	return b, nil
}

// EncodeShare renders s in format f.
func (f Format) EncodeShare(s keyshare.Share) string {
	return f.Encode(ShareVersion, s.Bytes())
}

// DecodeShare parses a share of field fld rendered with EncodeShare.
func (f Format) DecodeShare(fld keyshare.Field, s string) (keyshare.Share, error) {
	b, err := f.Decode(ShareVersion, s)
	if err != nil {
		return keyshare.Share{}, err
	}
	return fld.DecodeShare(b)
}

// DecodeShares parses each of ss, ignoring empty strings.
func (f Format) DecodeShares(fld keyshare.Field, ss []string) ([]keyshare.Share, error) {
	shares := make([]keyshare.Share, 0, len(ss))
	for i, s := range ss {
		if strings.TrimSpace(s) == "" {
			continue
		}
		share, err := f.DecodeShare(fld, s)
		if err != nil {
			return nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		shares = append(shares, share)
	}
	return shares, nil
}
