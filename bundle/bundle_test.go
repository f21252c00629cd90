package bundle

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrc/keyshare"
)

func split(t *testing.T, threshold, n int) (keyshare.Element, *Bundle) {
	t.Helper()
	secret := keyshare.Secp256k1.Uint64(0xfeedface)
	shares, err := keyshare.Split(secret, threshold, n)
	require.NoError(t, err)

	b, err := New(threshold, shares)
	require.NoError(t, err)
	return secret, b
}

func TestMarshalRoundTrip(t *testing.T) {
	_, b := split(t, 3, 5)
	b.PublicKey = []byte{0x02, 0x01}

	data, err := b.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}

	again, err := got.Marshal()
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding must be deterministic")
}

func TestCombine(t *testing.T) {
	secret, b := split(t, 3, 5)

	got, err := b.Combine()
	require.NoError(t, err)
	assert.True(t, got.Equal(secret))

	// a holder may only keep a subset
	b.Shares = b.Shares[2:]
	got, err = b.Combine()
	require.NoError(t, err)
	assert.True(t, got.Equal(secret))

	b.Shares = b.Shares[1:]
	_, err = b.Combine()
	assert.ErrorIs(t, err, keyshare.ErrInvalidParameters)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(b *Bundle)
		wantErr error
	}{
		{name: "unknown field", modify: func(b *Bundle) { b.Field = "ed25519" }, wantErr: keyshare.ErrInvalidParameters},
		{name: "threshold zero", modify: func(b *Bundle) { b.Threshold = 0 }, wantErr: keyshare.ErrInvalidParameters},
		{name: "threshold above total", modify: func(b *Bundle) { b.Threshold = 6 }, wantErr: keyshare.ErrInvalidParameters},
		{name: "no shares", modify: func(b *Bundle) { b.Shares = nil }, wantErr: keyshare.ErrEmptyShareSet},
		{name: "too many shares", modify: func(b *Bundle) { b.Shares = append(b.Shares, b.Shares[0]) }, wantErr: keyshare.ErrInvalidParameters},
		{name: "malformed share", modify: func(b *Bundle) { b.Shares[1] = b.Shares[1][:10] }, wantErr: keyshare.ErrMalformedShare},
		{name: "duplicate share", modify: func(b *Bundle) { b.Shares[1] = b.Shares[0] }, wantErr: keyshare.ErrDuplicateXCoordinate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, b := split(t, 3, 5)
			tt.modify(b)
			assert.ErrorIs(t, b.Validate(), tt.wantErr)
		})
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(2, nil)
	assert.ErrorIs(t, err, keyshare.ErrEmptyShareSet)

	f, err := keyshare.NewField([]byte{101})
	require.NoError(t, err)
	d := keyshare.Dealer{F: f}
	shares, err := d.Split(f.One(), 2, 3)
	require.NoError(t, err)
	_, err = New(2, shares)
	assert.ErrorIs(t, err, keyshare.ErrInvalidParameters)
}

func TestFile(t *testing.T) {
	secret, b := split(t, 2, 3)
	name := filepath.Join(t.TempDir(), "shares.cbor")

	require.NoError(t, WriteFile(name, b))

	got, err := ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	s, err := got.Combine()
	require.NoError(t, err)
	assert.True(t, s.Equal(secret))

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestUnmarshalGarbage(t *testing.T) {
	_, err := Unmarshal([]byte{0xff, 0x00})
	assert.Error(t, err)
}
