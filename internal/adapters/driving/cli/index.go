package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newIndexCommand(s *Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect or reset the index",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether the index is ready and what built it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.Index == nil {
				return fmt.Errorf("index: %w", ErrNotConfigured)
			}
			st, err := s.Index.Status(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Path: %s\n", st.Path)
			if s.IndexErr != nil {
				cmd.Printf("Status: unusable\n  %s\n", Describe(s.IndexErr))
				return nil
			}
			if !st.Ready {
				cmd.Println("Status: empty (nothing ingested yet)")
				return nil
			}
			cmd.Println("Status: ready")
			cmd.Printf("Embedding model: %s (%d dimensions)\n", st.Manifest.EmbeddingModel, st.Manifest.Dimensions)
			cmd.Printf("Passages: %d\n", st.Manifest.Entries)
			cmd.Printf("Updated: %s\n", st.Manifest.UpdatedAt.Local().Format(time.DateTime))
			return nil
		},
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the index so it can be rebuilt",
		Long: `Delete the persisted index. Required after changing the embedding model,
since vectors from different models cannot be compared.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.Index == nil {
				return fmt.Errorf("index: %w", ErrNotConfigured)
			}
			if !yes {
				cmd.Print("Delete the index? Everything must be ingested again. [y/N]: ")
				answer := readLine(bufio.NewReader(cmd.InOrStdin()))
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					cmd.Println("Aborted.")
					return nil
				}
			}
			if err := s.Index.Reset(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Index deleted.")
			return nil
		},
	}
	reset.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(status, reset)
	return cmd
}
