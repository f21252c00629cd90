package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/wbrc/keyshare"
	"github.com/wbrc/keyshare/bundle"
	"github.com/wbrc/keyshare/keys"
)

func newKeyCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Split and recover secp256k1 private keys",
	}
	cmd.AddCommand(newKeySplitCmd(o), newKeyMergeCmd(o), newKeyReshareCmd(o))
	return cmd
}

func newKeySplitCmd(o *options) *cobra.Command {
	var (
		threshold, shares int
		key, bundleFile   string
		generate          bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a private key into shares",
		Long: `Split a private key, given in hex or wallet import format, into shares.
Use --key - to read the key from stdin. The public key of the split key is
printed to stderr; keep it to verify a later merge.`,
		Example: `  keyshare key split -t 2 -n 3 --generate
  keyshare key split -t 3 -n 5 --key - --bundle keys.cbor < key.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, n := o.threshold(cmd, threshold), o.shares(cmd, shares)

			var priv *secp256k1.PrivateKey
			var err error
			switch {
			case generate && key != "":
				return errors.New("--key and --generate are mutually exclusive")
			case generate:
				priv, err = keys.Generate()
			case key == "-":
				priv, err = readKey(cmd.InOrStdin())
			case key != "":
				priv, err = keys.ParsePrivateKey(key)
			default:
				return errors.New("one of --key or --generate is required")
			}
			if err != nil {
				return err
			}

			secret, err := keys.FromPrivateKey(priv)
			if err != nil {
				return err
			}

			split, err := keyshare.Split(secret, t, n)
			if err != nil {
				return fmt.Errorf("failed to split key: %w", err)
			}
			glog.V(1).Infof("split key into %d shares with threshold %d", n, t)

			pub := keys.PublicKeyHex(priv)
			fmt.Fprintf(cmd.ErrOrStderr(), "public key: %s\n", pub)

			if bundleFile != "" {
				b, err := bundle.New(t, split)
				if err != nil {
					return err
				}
				b.PublicKey = priv.PubKey().SerializeCompressed()
				if err := bundle.WriteFile(bundleFile, b); err != nil {
					return fmt.Errorf("failed to write bundle %s: %w", bundleFile, err)
				}
				glog.V(1).Infof("wrote bundle %s to %s", b.ID, bundleFile)
				return nil
			}

			for _, s := range split {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), o.shareFormat.EncodeShare(s)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&threshold, "threshold", "t", 2, "number of shares required to recover the key")
	cmd.Flags().IntVarP(&shares, "shares", "n", 3, "number of shares to create")
	cmd.Flags().StringVar(&key, "key", "", "private key in hex or WIF, - for stdin")
	cmd.Flags().BoolVar(&generate, "generate", false, "generate a new random key")
	cmd.Flags().StringVar(&bundleFile, "bundle", "", "write the shares to this bundle file instead of stdout")

	return cmd
}

func newKeyMergeCmd(o *options) *cobra.Command {
	var (
		threshold          int
		pubkey, bundleFile string
		wif, testnet       bool
	)

	cmd := &cobra.Command{
		Use:   "merge [share]...",
		Short: "Recover a private key from shares",
		Long: `Recover a private key from shares given as arguments or from a bundle.
The result is checked against --pubkey, or the public key stored in the
bundle, when one is known. Without a check, too few or corrupted shares
silently produce a wrong key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, t, storedPub, err := o.loadShares(bundleFile, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") {
				t = threshold
			}
			if t > 0 && len(shares) < t {
				return fmt.Errorf("%w: need at least %d shares, got %d", keyshare.ErrInvalidParameters, t, len(shares))
			}
			if pubkey == "" {
				pubkey = storedPub
			}

			secret, err := keyshare.Combine(shares)
			if err != nil {
				return fmt.Errorf("failed to combine shares: %w", err)
			}

			priv, err := keys.ToPrivateKey(secret)
			if err != nil {
				return fmt.Errorf("recovered an invalid key, the shares are corrupted or too few: %w", err)
			}

			if pubkey != "" {
				ok, err := keys.MatchesPublicKey(priv, pubkey)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("recovered key does not match the public key, the shares are corrupted or too few")
				}
				glog.V(1).Infof("recovered key matches public key %s", pubkey)
			} else {
				glog.Warningf("no public key given, the recovered key is not verified")
			}

			out := hex.EncodeToString(priv.Serialize())
			if wif {
				if !cmd.Flags().Changed("testnet") {
					testnet = o.cfg.Testnet
				}
				out = keys.EncodeWIF(priv, true, testnet)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "refuse to merge fewer shares (default taken from the bundle)")
	cmd.Flags().StringVar(&pubkey, "pubkey", "", "hex public key to verify the recovered key against")
	cmd.Flags().StringVar(&bundleFile, "bundle", "", "read shares from this bundle file")
	cmd.Flags().BoolVar(&wif, "wif", false, "print the key in wallet import format instead of hex")
	cmd.Flags().BoolVar(&testnet, "testnet", false, "use the testnet WIF version")

	return cmd
}

func newKeyReshareCmd(o *options) *cobra.Command {
	var (
		x          uint64
		bundleFile string
	)

	cmd := &cobra.Command{
		Use:   "reshare --x <index> [share]...",
		Short: "Issue a new share from threshold existing ones",
		Long: `Compute the share at x coordinate <index> from at least threshold shares,
for example to replace a lost share. The other shares stay valid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if x == 0 {
				return errors.New("--x must be a positive share index")
			}

			shares, t, _, err := o.loadShares(bundleFile, args)
			if err != nil {
				return err
			}
			if t > 0 && len(shares) < t {
				return fmt.Errorf("%w: need at least %d shares, got %d", keyshare.ErrInvalidParameters, t, len(shares))
			}

			at := keyshare.Secp256k1.Uint64(x)
			for _, s := range shares {
				if s.X.Equal(at) {
					return fmt.Errorf("%w: a share at x = %d is already given", keyshare.ErrDuplicateXCoordinate, x)
				}
			}

			y, err := keyshare.Interpolate(shares, at)
			if err != nil {
				return fmt.Errorf("failed to compute share: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), o.shareFormat.EncodeShare(keyshare.Share{X: at, Y: y}))
			return err
		},
	}

	cmd.Flags().Uint64Var(&x, "x", 0, "x coordinate (share index) of the new share")
	cmd.Flags().StringVar(&bundleFile, "bundle", "", "read shares from this bundle file")
	_ = cmd.MarkFlagRequired("x")

	return cmd
}

// loadShares reads shares from a bundle file or from args. It returns the
// bundle's threshold and public key, which are unknown for args.
func (o *options) loadShares(bundleFile string, args []string) ([]keyshare.Share, int, string, error) {
	if bundleFile == "" {
		shares, err := o.shareFormat.DecodeShares(keyshare.Secp256k1, args)
		if err != nil {
			return nil, 0, "", err
		}
		if len(shares) == 0 {
			return nil, 0, "", keyshare.ErrEmptyShareSet
		}
		return shares, 0, "", nil
	}

	if len(args) > 0 {
		return nil, 0, "", errors.New("shares cannot be given both as arguments and with --bundle")
	}

	b, err := bundle.ReadFile(bundleFile)
	if err != nil {
		return nil, 0, "", fmt.Errorf("failed to read bundle %s: %w", bundleFile, err)
	}
	_, shares, err := b.Decode()
	if err != nil {
		return nil, 0, "", err
	}
	glog.V(1).Infof("read %d shares of bundle %s", len(shares), b.ID)

	return shares, b.Threshold, hex.EncodeToString(b.PublicKey), nil
}

// readKey reads a private key from the first line of r.
func readKey(r io.Reader) (*secp256k1.PrivateKey, error) {
	s := bufio.NewScanner(r)
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
		return nil, errors.New("no key on stdin")
	}
	return keys.ParsePrivateKey(strings.TrimSpace(s.Text()))
}
