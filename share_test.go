package keyshare

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrc/keyshare/internal/drbg"
)

func TestShareCodec(t *testing.T) {
	d := &Dealer{Rand: ReaderSource{R: drbg.String("TestShareCodec")}}

	shares, err := d.Split(randomSecret(t, d), 3, 5)
	require.NoError(t, err)

	for _, s := range shares {
		b, err := s.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, b, 2*Secp256k1.Size())
		assert.Equal(t, s.X.Bytes(), b[:32])
		assert.Equal(t, s.Y.Bytes(), b[32:])

		got, err := Secp256k1.DecodeShare(b)
		require.NoError(t, err)
		assert.True(t, got.X.Equal(s.X))
		assert.True(t, got.Y.Equal(s.Y))
	}
}

func TestDecodeShareErrors(t *testing.T) {
	valid := Share{X: Secp256k1.Uint64(3), Y: Secp256k1.Uint64(99)}.Bytes()
	overflow := bytes.Repeat([]byte{0xff}, 32)

	tests := []struct {
		name    string
		b       []byte
		wantErr []error
	}{
		{name: "empty", b: nil, wantErr: []error{ErrMalformedShare}},
		{name: "short", b: valid[:63], wantErr: []error{ErrMalformedShare}},
		{name: "long", b: append(bytes.Clone(valid), 0), wantErr: []error{ErrMalformedShare}},
		{name: "x out of range", b: append(bytes.Clone(overflow), valid[32:]...), wantErr: []error{ErrMalformedShare, ErrOutOfRange}},
		{name: "y out of range", b: append(bytes.Clone(valid[:32]), overflow...), wantErr: []error{ErrMalformedShare, ErrOutOfRange}},
		{name: "x zero", b: append(make([]byte, 32), valid[32:]...), wantErr: []error{ErrMalformedShare}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Secp256k1.DecodeShare(tt.b)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestMarshalUninitializedShare(t *testing.T) {
	_, err := Share{}.MarshalBinary()
	assert.ErrorIs(t, err, ErrMalformedShare)
}
