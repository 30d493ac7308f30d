package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/normalisers/text"
)

func newIngestCommand(s *Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Add study material to the index",
		Long: `Normalise, chunk and embed material into the local index.

Each call is one batch: the index on disk is replaced only after every chunk
of the batch has been embedded, so a failed ingest leaves it unchanged.`,
	}

	cmd.AddCommand(
		newIngestPDFCommand(s),
		newIngestVideoCommand(s),
		newIngestTextCommand(s),
	)
	return cmd
}

func newIngestPDFCommand(s *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "pdf <file.pdf>...",
		Short: "Index every page of one or more PDFs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ingestReady(s); err != nil {
				return err
			}
			for _, path := range args {
				res, err := s.Ingest.IngestPDF(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("ingest %s: %w", path, err)
				}
				cmd.Printf("Indexed %s: %d pages, %d chunks\n", filepath.Base(path), res.Documents, res.Chunks)
			}
			return nil
		},
	}
}

func newIngestVideoCommand(s *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "video <video> <transcript>",
		Short: "Index a lecture transcript",
		Long: `Index a timestamped transcript belonging to a video.

Each transcript line has the form "HH:MM:SS text"; "[HH:MM:SS] text" and
fractional seconds are accepted too. Lines without a timestamp are skipped.
The video itself is not read; its name is recorded with every passage so
answers can point back to it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ingestReady(s); err != nil {
				return err
			}
			res, err := s.Ingest.IngestVideoTranscript(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("ingest %s: %w", args[1], err)
			}
			cmd.Printf("Indexed %s: %d segments, %d chunks\n", filepath.Base(args[0]), res.Documents, res.Chunks)
			if res.Documents == 0 {
				cmd.Printf("Warning: %s\n", noTranscriptLines(args[1]))
			}
			return nil
		},
	}
}

func newIngestTextCommand(s *Services) *cobra.Command {
	var (
		files []string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "text [text]",
		Short: "Index a note given inline, from files, or from stdin",
		Long: `Index plain text.

  lectern ingest text "The exam covers chapters 3 to 5."
  lectern ingest text --file notes.txt --file todo.md
  cat notes.txt | lectern ingest text --name notes.txt

All files given with --file are indexed in a single batch. Markdown (.md)
and HTML (.html) files are reduced to plain text first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ingestReady(s); err != nil {
				return err
			}

			var (
				res *domain.IngestResult
				err error
			)
			switch {
			case len(files) > 0:
				docs, readErr := readTextFiles(files)
				if readErr != nil {
					return readErr
				}
				res, err = s.Ingest.IngestDocuments(cmd.Context(), docs)
			case len(args) == 1:
				res, err = s.Ingest.IngestText(cmd.Context(), args[0], nameMetadata(name))
			default:
				data, readErr := io.ReadAll(cmd.InOrStdin())
				if readErr != nil {
					return fmt.Errorf("read stdin: %w", readErr)
				}
				res, err = s.Ingest.IngestText(cmd.Context(), string(data), nameMetadata(name))
			}
			if err != nil {
				return fmt.Errorf("ingest text: %w", err)
			}

			cmd.Printf("Indexed %d notes, %d chunks\n", res.Documents, res.Chunks)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "text file to index (repeatable)")
	cmd.Flags().StringVar(&name, "name", "", "file_name recorded for inline or stdin text")
	return cmd
}

func noTranscriptLines(path string) string {
	return fmt.Sprintf("no timestamped lines found in %s; expected lines like \"00:01:05 text\"", filepath.Base(path))
}

func ingestReady(s *Services) error {
	if s.Ingest == nil {
		return fmt.Errorf("ingest: %w", ErrNotConfigured)
	}
	return s.IndexErr
}

func nameMetadata(name string) map[string]any {
	if name == "" {
		return nil
	}
	return map[string]any{domain.MetaFileName: name}
}

func readTextFiles(paths []string) ([]domain.NormalizedDocument, error) {
	docs := make([]domain.NormalizedDocument, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		doc := text.NormaliseFile(path, data)
		if strings.TrimSpace(doc.Text) == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
