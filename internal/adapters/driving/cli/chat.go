package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/adapters/driving/tui"
)

func newChatCommand(s *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask questions in an interactive terminal UI",
		Long: `Open a full-screen session for asking questions one after another.

Controls:
  Enter    - Ask
  ↑/k, ↓/j - Move between sources
  n        - New question
  ?        - Toggle help
  Ctrl+C   - Quit`,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
					fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
					err = fmt.Errorf("TUI panic: %v", r)
				}
			}()

			if s.IndexErr != nil {
				return s.IndexErr
			}

			app, err := tui.NewApp(tui.NewPorts(s.Answer, s.Index), tui.Options{TopK: s.TopK})
			if err != nil {
				return fmt.Errorf("failed to create TUI: %w", err)
			}
			app.WithContext(cmd.Context())

			if err := app.Run(); err != nil {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		},
	}
}
