package cli

import (
	"fmt"

	"github.com/go-sod/clamp/internal/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), buildinfo.Graffiti+buildinfo.Info.String()+"\n")
			return err
		},
	}
}
