package cli

import (
	"github.com/spf13/cobra"
)

func newVersionCommand(s *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("lectern version %s\n", s.Version)
		},
	}
}
