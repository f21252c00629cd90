package main

import (
	"bufio"
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/hkdf"

	"github.com/wbrc/keyshare"
	"github.com/wbrc/keyshare/armor"
)

const hkdfInfo = "keyshare seal v1 "

type sealFlags struct {
	input, output, sharesFile string
}

func (f *sealFlags) register(fs *pflag.FlagSet, verb string) {
	fs.StringVarP(&f.input, "input", "i", "", "file to "+verb+", - or empty for stdin")
	fs.StringVarP(&f.output, "output", "o", "", "file to write "+verb+"ed data to, - or empty for stdout")
	fs.StringVarP(&f.sharesFile, "shares-file", "s", "", "file to write/read shares, one per line")
	_ = cobra.MarkFlagRequired(fs, "shares-file")
}

func (f *sealFlags) open(cmd *cobra.Command) (io.Reader, io.Writer, func(), error) {
	var closers []io.Closer
	done := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	input := cmd.InOrStdin()
	if f.input != "" && f.input != "-" {
		file, err := os.Open(f.input)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open input file %s: %w", f.input, err)
		}
		closers = append(closers, file)
		input = file
	}

	output := cmd.OutOrStdout()
	if f.output != "" && f.output != "-" {
		file, err := os.Create(f.output)
		if err != nil {
			done()
			return nil, nil, nil, fmt.Errorf("failed to create output file %s: %w", f.output, err)
		}
		closers = append(closers, file)
		output = file
	}

	return input, output, done, nil
}

func newSealCmd(o *options) *cobra.Command {
	var (
		f                 sealFlags
		threshold, shares int
		modeName          string
	)

	cmd := &cobra.Command{
		Use:   "seal -s <shares-file> -t <threshold> -n <share count>",
		Short: "Encrypt a file and split the key into shares",
		Long: `Encrypt a file with a fresh key and split the key into shares. At least
<threshold> of the shares written to <shares-file> are needed to unseal.`,
		Example: `  keyshare seal -i archive.tar.gz -o archive.tar.gz.seal -s shares.txt -t 3 -n 5`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, n := o.threshold(cmd, threshold), o.shares(cmd, shares)
			if modeName == "" {
				modeName = o.cfg.SealMode
			}
			m, err := lookupMode(modeName)
			if err != nil {
				return err
			}

			in, out, done, err := f.open(cmd)
			if err != nil {
				return err
			}
			defer done()

			sharesFile, err := os.OpenFile(f.sharesFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
			if err != nil {
				return fmt.Errorf("failed to create shares file %s: %w", f.sharesFile, err)
			}
			defer sharesFile.Close()

			if err := seal(in, out, sharesFile, o.shareFormat, modeName, m, t, n); err != nil {
				return err
			}
			return sharesFile.Close()
		},
	}

	f.register(cmd.Flags(), "seal")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 2, "number of shares required to unseal")
	cmd.Flags().IntVarP(&shares, "shares", "n", 3, "number of shares to generate")
	cmd.Flags().StringVar(&modeName, "mode", "", "cipher mode (default from config), one of:"+modeUsage())

	return cmd
}

func newUnsealCmd(o *options) *cobra.Command {
	var f sealFlags

	cmd := &cobra.Command{
		Use:     "unseal -s <shares-file>",
		Short:   "Decrypt a sealed file using its key shares",
		Example: `  keyshare unseal -i archive.tar.gz.seal -o archive.tar.gz -s shares.txt`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sharesFile, err := os.Open(f.sharesFile)
			if err != nil {
				return fmt.Errorf("failed to open shares file %s: %w", f.sharesFile, err)
			}
			defer sharesFile.Close()

			in, out, done, err := f.open(cmd)
			if err != nil {
				return err
			}
			defer done()

			return unseal(in, out, sharesFile, o.shareFormat)
		},
	}

	f.register(cmd.Flags(), "unseal")

	return cmd
}

func seal(r io.Reader, w io.Writer, sharesW io.Writer, format armor.Format, modeName string, m mode, t, n int) error {
	secret, err := keyshare.Secp256k1.Random(keyshare.ReaderSource{})
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	aead, err := deriveAEAD(secret, modeName, m)
	if err != nil {
		return err
	}

	shares, err := keyshare.Split(secret, t, n)
	if err != nil {
		return fmt.Errorf("failed to split key: %w", err)
	}

	header := sealHeader(modeName)
	if err := encrypt(aead, header, r, w); err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}
	glog.V(1).Infof("sealed with %s, key split into %d shares with threshold %d", modeName, n, t)

	for _, share := range shares {
		if _, err := fmt.Fprintln(sharesW, format.EncodeShare(share)); err != nil {
			return fmt.Errorf("failed to write shares: %w", err)
		}
	}

	return nil
}

func unseal(r io.Reader, w io.Writer, sharesR io.Reader, format armor.Format) error {
	var lines []string
	s := bufio.NewScanner(sharesR)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("failed to read shares: %w", err)
	}

	shares, err := format.DecodeShares(keyshare.Secp256k1, lines)
	if err != nil {
		return fmt.Errorf("failed to read share: %w", err)
	}

	secret, err := keyshare.Combine(shares)
	if err != nil {
		return fmt.Errorf("failed to combine shares: %w", err)
	}

	br := bufio.NewReader(r)
	modeName, header, err := readSealHeader(br)
	if err != nil {
		return err
	}
	m, err := lookupMode(modeName)
	if err != nil {
		return err
	}

	aead, err := deriveAEAD(secret, modeName, m)
	if err != nil {
		return err
	}

	if err := decrypt(aead, header, br, w); err != nil {
		return fmt.Errorf("failed to decrypt: %w", err)
	}

	return nil
}

// deriveAEAD expands the shared scalar into a key for m with HKDF-SHA256.
func deriveAEAD(secret keyshare.Element, modeName string, m mode) (cipher.AEAD, error) {
	ikm := secret.Bytes()
	defer clear(ikm)

	key := make([]byte, m.keySize)
	defer clear(key)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(hkdfInfo+modeName)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	aead, err := m.aead(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AEAD: %w", err)
	}
	return aead, nil
}

// sealHeader is the length prefixed mode name starting a sealed file. It is
// authenticated as additional data.
func sealHeader(modeName string) []byte {
	return append([]byte{byte(len(modeName))}, modeName...)
}

func readSealHeader(r io.Reader) (string, []byte, error) {
	var n [1]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return "", nil, fmt.Errorf("failed to read header: %w", err)
	}
	name := make([]byte, n[0])
	if _, err := io.ReadFull(r, name); err != nil {
		return "", nil, fmt.Errorf("failed to read header: %w", err)
	}
	return string(name), sealHeader(string(name)), nil
}

func encrypt(aead cipher.AEAD, header []byte, r io.Reader, w io.Writer) error {
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read plaintext: %w", err)
	}

	out := make([]byte, 0, len(header)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, header)
	if _, err := io.Copy(w, bytes.NewReader(out)); err != nil {
		return fmt.Errorf("failed to write ciphertext: %w", err)
	}

	return nil
}

func decrypt(aead cipher.AEAD, header []byte, r io.Reader, w io.Writer) error {
	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read ciphertext: %w", err)
	}
	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return errors.New("ciphertext too short")
	}

	nonce := ciphertext[:aead.NonceSize()]
	ciphertext = ciphertext[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return fmt.Errorf("failed to unseal, wrong or too few shares: %w", err)
	}

	if _, err := io.Copy(w, bytes.NewReader(plaintext)); err != nil {
		return fmt.Errorf("failed to write plaintext: %w", err)
	}

	return nil
}
