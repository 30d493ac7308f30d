// Package cli provides the lectern command line.
//
// Commands are built by NewRootCommand from a Services container assembled in
// cmd/lectern; nothing in this package holds global state.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/ports/driving"
	"github.com/custodia-labs/lectern/internal/logger"
)

// ErrNotConfigured is returned by commands whose service was not wired.
var ErrNotConfigured = errors.New("service not configured")

// Services holds the driving ports commands operate on.
type Services struct {
	Answer   driving.AnswerService
	Ingest   driving.IngestService
	Index    driving.IndexService
	Settings driving.SettingsService

	// IndexErr is set when the persisted index could not be opened, e.g.
	// after an embedding model change. Commands that read or write the index
	// report it; settings and index reset still work.
	IndexErr error

	// TopK is the default passage count shown in help text.
	TopK int

	// Version is printed by the version command.
	Version string
}

// NewRootCommand builds the full command tree.
func NewRootCommand(s *Services) *cobra.Command {
	if s == nil {
		s = &Services{}
	}
	if s.Version == "" {
		s.Version = "dev"
	}

	root := &cobra.Command{
		Use:   "lectern",
		Short: "Ask questions about your lecture notes, slides and recordings",
		Long: `Lectern indexes PDFs, lecture transcripts and text notes locally, then
answers questions using the passages most relevant to them.

  lectern ingest pdf slides.pdf
  lectern ingest video lecture1.mp4 lecture1.txt
  lectern ask "What is the difference between a process and a thread?"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if v, err := cmd.Flags().GetBool("verbose"); err == nil && v {
				logger.SetVerbose(true)
			}
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "print timings and debug output to stderr")

	root.AddCommand(
		newIngestCommand(s),
		newAskCommand(s),
		newRetrieveCommand(s),
		newIndexCommand(s),
		newSettingsCommand(s),
		newMCPCommand(s),
		newChatCommand(s),
		newVersionCommand(s),
	)
	return root
}
