// Package bundle stores the shares of one split together with the
// parameters needed to recombine them, as a CBOR document.
//
// A bundle records the threshold, so a reader can refuse to combine fewer
// shares than were required at split time. It may also record the public key
// belonging to the shared secret, which lets a reader verify the result.
package bundle

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/wbrc/keyshare"
)

// Bundle is the serialized form of a split.
type Bundle struct {
	ID        uuid.UUID `cbor:"1,keyasint"`
	Field     string    `cbor:"2,keyasint"`
	Threshold int       `cbor:"3,keyasint"`
	Total     int       `cbor:"4,keyasint"`
	PublicKey []byte    `cbor:"5,keyasint,omitempty"`
	Shares    [][]byte  `cbor:"6,keyasint"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// fields lists the fields a bundle may name.
var fields = map[string]keyshare.Field{
	keyshare.Secp256k1.Name(): keyshare.Secp256k1,
}

// New creates a bundle holding shares that were produced with the given
// threshold. Total is the number of shares in the bundle.
func New(threshold int, shares []keyshare.Share) (*Bundle, error) {
	if len(shares) == 0 {
		return nil, keyshare.ErrEmptyShareSet
	}

	f := shares[0].X.Field()
	if _, ok := fields[f.Name()]; !ok {
		return nil, fmt.Errorf("%w: field %s cannot be stored in a bundle", keyshare.ErrInvalidParameters, f.Name())
	}

	b := &Bundle{
		ID:        uuid.New(),
		Field:     f.Name(),
		Threshold: threshold,
		Total:     len(shares),
		Shares:    make([][]byte, len(shares)),
	}
	for i, s := range shares {
		enc, err := s.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		b.Shares[i] = enc
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the parameters and decodes every share.
func (b *Bundle) Validate() error {
	_, _, err := b.Decode()
	return err
}

// Decode returns the field and the shares of b.
func (b *Bundle) Decode() (keyshare.Field, []keyshare.Share, error) {
	f, ok := fields[b.Field]
	if !ok {
		return keyshare.Field{}, nil, fmt.Errorf("%w: unknown field %q", keyshare.ErrInvalidParameters, b.Field)
	}
	if b.Threshold < 1 || b.Threshold > b.Total || b.Total > keyshare.MaxShares {
		return keyshare.Field{}, nil, fmt.Errorf("%w: threshold %d of %d", keyshare.ErrInvalidParameters, b.Threshold, b.Total)
	}
	if len(b.Shares) == 0 {
		return keyshare.Field{}, nil, keyshare.ErrEmptyShareSet
	}
	if len(b.Shares) > b.Total {
		return keyshare.Field{}, nil, fmt.Errorf("%w: %d shares in a bundle of %d", keyshare.ErrInvalidParameters, len(b.Shares), b.Total)
	}

	shares := make([]keyshare.Share, len(b.Shares))
	seen := make(map[string]struct{}, len(b.Shares))
	for i, enc := range b.Shares {
		s, err := f.DecodeShare(enc)
		if err != nil {
			return keyshare.Field{}, nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		x := string(s.X.Bytes())
		if _, dup := seen[x]; dup {
			return keyshare.Field{}, nil, fmt.Errorf("share %d: %w", i+1, keyshare.ErrDuplicateXCoordinate)
		}
		seen[x] = struct{}{}
		shares[i] = s
	}

	return f, shares, nil
}

// Combine recovers the secret, refusing to do so with fewer shares than the
// threshold.
func (b *Bundle) Combine() (keyshare.Element, error) {
	f, shares, err := b.Decode()
	if err != nil {
		return keyshare.Element{}, err
	}
	if len(shares) < b.Threshold {
		return keyshare.Element{}, fmt.Errorf("%w: need at least %d shares, got %d", keyshare.ErrInvalidParameters, b.Threshold, len(shares))
	}

	d := keyshare.Dealer{F: f}
	return d.Combine(shares)
}

// Marshal encodes b with deterministic CBOR.
func (b *Bundle) Marshal() ([]byte, error) {
	return encMode.Marshal(b)
}

// Unmarshal decodes and validates a bundle.
func Unmarshal(data []byte) (*Bundle, error) {
	b := new(Bundle)
	if err := cbor.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteFile writes b to name, readable only by the owner.
func WriteFile(name string, b *Bundle) error {
	data, err := b.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0o600)
}

// ReadFile reads and validates the bundle stored in name.
func ReadFile(name string) (*Bundle, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
