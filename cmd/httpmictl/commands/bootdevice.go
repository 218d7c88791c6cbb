package commands

import (
	"github.com/spf13/cobra"

	"github.com/alexandremahdhaoui/secureboot/cmd/httpmictl/handlers"
	"github.com/alexandremahdhaoui/secureboot/internal/types"
)

// BootDevice returns the boot-device command and its get, set and supported subcommands.
func BootDevice(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boot-device",
		Short: "Read or change the boot device of a node",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "get",
		Short:   "Print the boot device reported by the httpmi proxy",
		Args:    cobra.NoArgs,
		PreRunE: requireNode(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.BootDeviceGet(cmd.Context(), cmd.OutOrStdout(), *opts)
		},
	})

	var persistent bool

	set := &cobra.Command{
		Use:       "set <pxe|disk>",
		Short:     "Select the boot device of the node",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(types.BootDevicePXE), string(types.BootDeviceDisk)},
		PreRunE:   requireNode(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.BootDeviceSet(cmd.Context(), cmd.OutOrStdout(), *opts, types.BootDevice(args[0]), persistent)
		},
	}
	set.Flags().BoolVar(&persistent, "persistent", false, "Keep the boot device across reboots")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:     "supported",
		Short:   "List the boot devices the node accepts",
		Args:    cobra.NoArgs,
		PreRunE: requireNode(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.BootDeviceSupported(cmd.Context(), cmd.OutOrStdout(), *opts)
		},
	})

	return cmd
}
