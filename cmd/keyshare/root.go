package main

import (
	"flag"
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/wbrc/keyshare/armor"
	"github.com/wbrc/keyshare/internal/config"
)

// options are shared by all commands.
type options struct {
	configFile string
	format     string

	cfg         *config.Config
	shareFormat armor.Format
}

func newRootCmd() *cobra.Command {
	o := new(options)

	root := &cobra.Command{
		Use:   "keyshare",
		Short: "Split secrets and private keys with Shamir's Secret Sharing",
		Long: `keyshare splits a secret into shares such that any threshold of them
recover it while fewer reveal nothing about it.

Private keys are shared over the secp256k1 scalar field and can be checked
against their public key after recovery. Arbitrary data is shared word by
word over GF(2^16).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: o.load,
	}

	root.PersistentFlags().StringVar(&o.configFile, "config", "", "config file (default is "+config.DefaultName+" in the user config directory)")
	root.PersistentFlags().StringVar(&o.format, "format", "", "share format: base58 or hex")
	// glog registers -v, -logtostderr and friends on the standard flag set.
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(
		newSplitCmd(o),
		newMergeCmd(o),
		newKeyCmd(o),
		newSealCmd(o),
		newUnsealCmd(o),
		newVersionCmd(),
	)

	return root
}

// load reads the config file and resolves the flags falling back on it.
func (o *options) load(_ *cobra.Command, _ []string) error {
	if !flag.Parsed() {
		_ = flag.CommandLine.Parse(nil)
	}

	path, optional := o.configFile, false
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			glog.V(1).Infof("no user config directory: %v", err)
		}
		path, optional = p, true
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	if _, err := lookupMode(cfg.SealMode); err != nil {
		return fmt.Errorf("invalid sealMode in config: %w", err)
	}
	glog.V(1).Infof("loaded config from %q: %+v", path, *cfg)
	o.cfg = cfg

	if o.format == "" {
		o.format = cfg.Format
	}
	o.shareFormat, err = armor.ParseFormat(o.format)
	if err != nil {
		return fmt.Errorf("invalid --format: %w", err)
	}

	return nil
}

// threshold returns the flag value, or the configured default when the flag
// was not given.
func (o *options) threshold(cmd *cobra.Command, v int) int {
	if cmd.Flags().Changed("threshold") || o.cfg.Threshold == 0 {
		return v
	}
	return o.cfg.Threshold
}

// shares returns the share count flag value, or the configured default.
func (o *options) shares(cmd *cobra.Command, v int) int {
	if cmd.Flags().Changed("shares") || o.cfg.Shares == 0 {
		return v
	}
	return o.cfg.Shares
}
