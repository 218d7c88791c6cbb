// Package commands defines the httpmictl command tree and its flags. Execution is delegated to the
// handlers package.
package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexandremahdhaoui/secureboot/cmd/httpmictl/handlers"
)

var errNodeRequired = errors.New(`required flag "node" not set`)

// Root returns the root command for the httpmictl CLI.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:           "httpmictl",
		Short:         "Control node power and boot device through an httpmi proxy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.NodePath, "node", "n", "", "Path to the node YAML file")
	flags.StringVarP(&opts.Output, "output", "o", handlers.OutputText, "Output format: text, json or yaml")
	flags.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Timeout of each httpmi call, 0 disables it")
	flags.StringVar(&opts.TLS.CAPath, "ca", "", "CA bundle verifying the httpmi proxy")
	flags.StringVar(&opts.TLS.CertPath, "cert", "", "Client certificate presented to the httpmi proxy")
	flags.StringVar(&opts.TLS.KeyPath, "key", "", "Client key presented to the httpmi proxy")

	cmd.AddCommand(Power(opts))
	cmd.AddCommand(BootDevice(opts))
	cmd.AddCommand(Validate(opts))
	cmd.AddCommand(Version())

	return cmd
}

// requireNode fails commands that talk to a node when --node is missing.
func requireNode(opts *handlers.Options) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		if opts.NodePath == "" {
			return errNodeRequired
		}

		return nil
	}
}
