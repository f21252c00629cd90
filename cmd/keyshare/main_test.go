package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrc/keyshare"
	"github.com/wbrc/keyshare/keys"
)

const (
	testKey     = "0c28fca386c7a227600b2fe50b7cae11ec86d3bf1fbe471be89827e19d72aa1d"
	otherPubkey = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
)

type result struct {
	stdout, stderr string
	err            error
}

func (r result) lines() []string { return strings.Fields(r.stdout) }

// execute runs the command line args against a config file holding config.
func execute(t *testing.T, config, stdin string, args ...string) result {
	t.Helper()

	cfg := filepath.Join(t.TempDir(), "keyshare.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(config), 0o600))

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--config", cfg))

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	return execute(t, "", "", args...)
}

func TestSplitMerge(t *testing.T) {
	split := run(t, "split", "hello, world", "5", "3")
	require.NoError(t, split.err)
	shares := split.lines()
	require.Len(t, shares, 5)

	merged := run(t, append([]string{"merge", "3"}, shares[1:4]...)...)
	require.NoError(t, merged.err)
	assert.Equal(t, "hello, world\n", merged.stdout)

	merged = run(t, append([]string{"merge", "2"}, shares[0], shares[2], shares[4])...)
	require.NoError(t, merged.err, "more shares than the given threshold")
	assert.Equal(t, "hello, world\n", merged.stdout)
}

func TestSplitMergeHex(t *testing.T) {
	split := run(t, "split", "line one\nline two", "3", "2", "--format", "hex")
	require.NoError(t, split.err)
	shares := split.lines()
	require.Len(t, shares, 3)
	for _, s := range shares {
		_, err := hex.DecodeString(s)
		assert.NoError(t, err)
	}

	merged := run(t, "merge", "2", shares[2], shares[0], "--format", "hex")
	require.NoError(t, merged.err)
	assert.Equal(t, "line one\nline two\n", merged.stdout)
}

// typo replaces the last character of s.
func typo(s string) string {
	c := "x"
	if strings.HasSuffix(s, c) {
		c = "y"
	}
	return s[:len(s)-1] + c
}

func TestSplitMergeErrors(t *testing.T) {
	shares := run(t, "split", "secret", "3", "2").lines()
	require.Len(t, shares, 3)

	tests := []struct {
		name string
		args []string
	}{
		{name: "threshold above shares", args: []string{"split", "secret", "3", "4"}},
		{name: "zero shares", args: []string{"split", "secret", "0", "0"}},
		{name: "too many shares", args: []string{"split", "secret", "256", "2"}},
		{name: "not a number", args: []string{"split", "secret", "three", "2"}},
		{name: "missing args", args: []string{"split", "secret"}},
		{name: "fewer shares than threshold", args: []string{"merge", "3", shares[0], shares[1]}},
		{name: "zero threshold", args: []string{"merge", "0", shares[0]}},
		{name: "typo", args: []string{"merge", "1", typo(shares[0])}},
		{name: "wrong format", args: []string{"merge", "1", shares[0], "--format", "hex"}},
		{name: "duplicate share", args: []string{"merge", "2", shares[0], shares[0]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(t, tt.args...).err)
		})
	}
}

func TestKeySplitMerge(t *testing.T) {
	priv, err := keys.ParsePrivateKey(testKey)
	require.NoError(t, err)
	pub := keys.PublicKeyHex(priv)

	split := run(t, "key", "split", "-t", "2", "-n", "3", "--key", testKey)
	require.NoError(t, split.err)
	assert.Contains(t, split.stderr, pub)
	shares := split.lines()
	require.Len(t, shares, 3)

	merged := run(t, "key", "merge", shares[2], shares[0], "--pubkey", pub)
	require.NoError(t, merged.err)
	assert.Equal(t, testKey+"\n", merged.stdout)

	merged = run(t, "key", "merge", shares[0], shares[1], "--wif")
	require.NoError(t, merged.err)
	got, compressed, testnet, err := keys.DecodeWIF(strings.TrimSpace(merged.stdout))
	require.NoError(t, err)
	assert.True(t, compressed)
	assert.False(t, testnet)
	assert.Equal(t, testKey, hex.EncodeToString(got.Serialize()))

	merged = run(t, "key", "merge", shares[0], shares[1], "--wif", "--testnet")
	require.NoError(t, merged.err)
	_, _, testnet, err = keys.DecodeWIF(strings.TrimSpace(merged.stdout))
	require.NoError(t, err)
	assert.True(t, testnet)

	t.Run("too few shares", func(t *testing.T) {
		assert.Error(t, run(t, "key", "merge", shares[1], "--pubkey", pub).err)
		assert.Error(t, run(t, "key", "merge", shares[1], "-t", "2").err)
	})

	t.Run("wrong public key", func(t *testing.T) {
		assert.Error(t, run(t, "key", "merge", shares[0], shares[1], "--pubkey", otherPubkey).err)
	})

	t.Run("no shares", func(t *testing.T) {
		assert.ErrorIs(t, run(t, "key", "merge").err, keyshare.ErrEmptyShareSet)
	})
}

func TestKeySplitInput(t *testing.T) {
	split := execute(t, "", testKey+"\n", "key", "split", "--key", "-")
	require.NoError(t, split.err)
	require.Len(t, split.lines(), 3)

	merged := run(t, "key", "merge", split.lines()[0], split.lines()[2])
	require.NoError(t, merged.err)
	assert.Equal(t, testKey+"\n", merged.stdout)

	assert.Error(t, run(t, "key", "split").err, "no key")
	assert.Error(t, run(t, "key", "split", "--key", testKey, "--generate").err)
	assert.Error(t, run(t, "key", "split", "--key", strings.Repeat("00", 32)).err, "zero key")
	assert.Error(t, execute(t, "", "", "key", "split", "--key", "-").err, "empty stdin")
}

func TestKeyBundle(t *testing.T) {
	name := filepath.Join(t.TempDir(), "wallet.cbor")

	split := run(t, "key", "split", "-t", "3", "-n", "5", "--generate", "--bundle", name)
	require.NoError(t, split.err)
	assert.Empty(t, split.stdout)
	require.Contains(t, split.stderr, "public key: ")

	merged := run(t, "key", "merge", "--bundle", name)
	require.NoError(t, merged.err)

	priv, err := keys.ParsePrivateKey(strings.TrimSpace(merged.stdout))
	require.NoError(t, err)
	assert.Contains(t, split.stderr, keys.PublicKeyHex(priv))

	assert.Error(t, run(t, "key", "merge", "--bundle", name, "-t", "6").err)
	assert.Error(t, run(t, "key", "merge", "--bundle", name, "--pubkey", otherPubkey).err)
	assert.Error(t, run(t, "key", "merge", "--bundle", name, "extra").err)
	assert.Error(t, run(t, "key", "merge", "--bundle", filepath.Join(t.TempDir(), "missing")).err)

	reshared := run(t, "key", "reshare", "--bundle", name, "--x", "6")
	require.NoError(t, reshared.err)
	assert.Len(t, reshared.lines(), 1)
}

func TestKeyReshare(t *testing.T) {
	shares := run(t, "key", "split", "-t", "2", "-n", "3", "--key", testKey).lines()
	require.Len(t, shares, 3)

	reshared := run(t, "key", "reshare", "--x", "42", shares[0], shares[1])
	require.NoError(t, reshared.err)
	require.Len(t, reshared.lines(), 1)

	merged := run(t, "key", "merge", reshared.lines()[0], shares[2])
	require.NoError(t, merged.err)
	assert.Equal(t, testKey+"\n", merged.stdout)

	assert.ErrorIs(t, run(t, "key", "reshare", "--x", "2", shares[0], shares[1]).err, keyshare.ErrDuplicateXCoordinate)
	assert.Error(t, run(t, "key", "reshare", "--x", "0", shares[0], shares[1]).err)
	assert.Error(t, run(t, "key", "reshare", shares[0], shares[1]).err, "--x is required")
}

func TestSealUnseal(t *testing.T) {
	plaintext := bytes.Repeat([]byte("attack at dawn\n"), 1000)

	for _, name := range modeNames() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "plain")
			sealed := filepath.Join(dir, "sealed")
			sharesFile := filepath.Join(dir, "shares")
			out := filepath.Join(dir, "unsealed")
			require.NoError(t, os.WriteFile(in, plaintext, 0o600))

			res := run(t, "seal", "-i", in, "-o", sealed, "-s", sharesFile, "-t", "3", "-n", "5", "--mode", name)
			require.NoError(t, res.err)

			data, err := os.ReadFile(sharesFile)
			require.NoError(t, err)
			shares := strings.Fields(string(data))
			require.Len(t, shares, 5)

			// any three shares unseal
			subset := filepath.Join(dir, "subset")
			require.NoError(t, os.WriteFile(subset, []byte(strings.Join([]string{shares[4], shares[0], shares[2]}, "\n")), 0o600))
			res = run(t, "unseal", "-i", sealed, "-o", out, "-s", subset)
			require.NoError(t, res.err)

			got, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)

			// two shares yield a wrong key, which authentication catches
			require.NoError(t, os.WriteFile(subset, []byte(shares[1]+"\n"+shares[3]+"\n"), 0o600))
			res = run(t, "unseal", "-i", sealed, "-o", out, "-s", subset)
			assert.Error(t, res.err)
		})
	}
}

func TestSealStdio(t *testing.T) {
	sharesFile := filepath.Join(t.TempDir(), "shares")

	sealed := execute(t, "sealMode: aes-256-gcm\nformat: hex\n", "hello", "seal", "-s", sharesFile, "-t", "1", "-n", "1")
	require.NoError(t, sealed.err)
	assert.True(t, strings.HasPrefix(sealed.stdout, "\x0baes-256-gcm"), "header names the mode")

	opened := execute(t, "format: hex\n", sealed.stdout, "unseal", "-s", sharesFile)
	require.NoError(t, opened.err)
	assert.Equal(t, "hello", opened.stdout)

	tampered := []byte(sealed.stdout)
	tampered[len(tampered)-1] ^= 1
	assert.Error(t, execute(t, "format: hex\n", string(tampered), "unseal", "-s", sharesFile).err)

	assert.Error(t, run(t, "seal", "-s", sharesFile, "--mode", "rot13").err)
	assert.Error(t, run(t, "seal", "-t", "1", "-n", "1").err, "shares file is required")
}

func TestSealModeHelp(t *testing.T) {
	res := run(t, "seal", "--help")
	require.NoError(t, res.err)
	for name, m := range modes {
		assert.Contains(t, res.stdout, name)
		assert.Contains(t, res.stdout, m.description)
	}
}

func TestConfigDefaults(t *testing.T) {
	res := execute(t, "threshold: 3\nshares: 4\nformat: hex\n", "", "key", "split", "--generate")
	require.NoError(t, res.err)
	shares := res.lines()
	require.Len(t, shares, 4)

	b, err := hex.DecodeString(shares[0])
	require.NoError(t, err)
	assert.Len(t, b, keyshare.Secp256k1.ShareSize())

	// flags override the file
	res = execute(t, "threshold: 3\nshares: 4\nformat: hex\n", "", "key", "split", "--generate", "-n", "6", "--format", "base58")
	require.NoError(t, res.err)
	assert.Len(t, res.lines(), 6)

	assert.Error(t, execute(t, "threshold: 5\nshares: 4\n", "", "version").err)
	assert.Error(t, execute(t, "sealMode: rot13\n", "", "version").err)
	assert.Error(t, run(t, "version", "--format", "base64").err)
}

func TestVersion(t *testing.T) {
	res := run(t, "version")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "keyshare "+Version))
}

func TestPrintable(t *testing.T) {
	assert.True(t, printable([]byte("hello, world!\n")))
	assert.True(t, printable(nil))
	assert.False(t, printable([]byte{0x00}))
	assert.False(t, printable([]byte("caf\xc3\xa9")))
}
