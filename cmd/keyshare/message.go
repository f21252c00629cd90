package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/wbrc/keyshare"
	"github.com/wbrc/keyshare/armor"
	"github.com/wbrc/keyshare/message"
)

func newSplitCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "split <data> <shares> <threshold>",
		Short: "Split data into shares",
		Long: `Split data into <shares> shares, any <threshold> of which recover it.
Shares are printed one per line.`,
		Example: `  keyshare split "correct horse battery staple" 5 3`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseCount("shares", args[1], keyshare.MaxShares)
			if err != nil {
				return err
			}
			t, err := parseCount("threshold", args[2], n)
			if err != nil {
				return err
			}

			shares, err := message.Split(t, n, []byte(args[0]))
			if err != nil {
				return fmt.Errorf("failed to split data: %w", err)
			}
			glog.V(1).Infof("split %d bytes into %d shares with threshold %d", len(args[0]), n, t)

			for _, s := range shares {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), o.shareFormat.Encode(armor.MessageVersion, s)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newMergeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <threshold> <share>...",
		Short: "Merge shares into data",
		Long: `Merge at least <threshold> shares created by split. The recovered data is
printed as text, or as hex if it is not printable ASCII.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseCount("threshold", args[0], len(args)-1)
			if err != nil {
				return fmt.Errorf("%w (at least threshold shares are required)", err)
			}

			shares := make([][]byte, len(args)-1)
			for i, s := range args[1:] {
				shares[i], err = o.shareFormat.Decode(armor.MessageVersion, s)
				if err != nil {
					return fmt.Errorf("could not recover share %d: %w", i+1, err)
				}
			}
			glog.V(1).Infof("merging %d shares with threshold %d", len(shares), t)

			data, err := message.Combine(shares)
			if err != nil {
				return fmt.Errorf("failed to merge shares: %w", err)
			}

			if !printable(data) {
				return fmt.Errorf("invalid string recovered, here it is in hex: %s", hex.EncodeToString(data))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

// parseCount parses a decimal argument between 1 and limit.
func parseCount(name, s string, limit int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, err)
	}
	if v < 1 || v > limit {
		return 0, fmt.Errorf("%s must be between 1 and %d, got %d", name, limit, v)
	}
	return v, nil
}

// printable reports whether b is ASCII text without control characters
// other than whitespace.
func printable(b []byte) bool {
	for _, c := range b {
		switch {
		case c == '\t', c == '\n', c == '\r':
		case c < 0x20, c > 0x7e:
			return false
		}
	}
	return true
}
