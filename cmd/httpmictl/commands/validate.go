package commands

import (
	"github.com/spf13/cobra"

	"github.com/alexandremahdhaoui/secureboot/cmd/httpmictl/handlers"
)

// Validate returns the validate command.
func Validate(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		Short:   "Check the node file carries every required driver info key",
		Args:    cobra.NoArgs,
		PreRunE: requireNode(opts),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Validate(cmd.Context(), cmd.OutOrStdout(), *opts)
		},
	}
}
