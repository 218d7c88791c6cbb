package commands

import (
	"github.com/spf13/cobra"

	"github.com/alexandremahdhaoui/secureboot/cmd/httpmictl/handlers"
)

// Power returns the power command and its get, set and reboot subcommands.
func Power(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "power",
		Short: "Read or change the power state of a node",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "get",
		Short:   "Print the power state reported by the httpmi proxy",
		Args:    cobra.NoArgs,
		PreRunE: requireNode(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.PowerGet(cmd.Context(), cmd.OutOrStdout(), *opts)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <on|off>",
		Short: "Request a power state change",
		Long: `Set requests a power state change through the httpmi proxy.

The command returns as soon as the proxy accepted the request; it does not wait
for the node to reach the requested state.

Example:
  httpmictl power set off -n node.yaml`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		PreRunE:   requireNode(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := handlers.ParsePowerState(args[0])
			if err != nil {
				return err
			}

			return handlers.PowerSet(cmd.Context(), cmd.OutOrStdout(), *opts, state)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "reboot",
		Short:   "Power the node off, then on",
		Args:    cobra.NoArgs,
		PreRunE: requireNode(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.PowerReboot(cmd.Context(), cmd.OutOrStdout(), *opts)
		},
	})

	return cmd
}
