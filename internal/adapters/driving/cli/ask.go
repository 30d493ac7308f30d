package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func newAskCommand(s *Services) *cobra.Command {
	var (
		topK    int
		asJSON  bool
		noCites bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the indexed material",
		Long: `Retrieve the passages most similar to the question and ask the language
model to answer from them. The passages are listed after the answer.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.Answer == nil {
				return fmt.Errorf("ask: %w", ErrNotConfigured)
			}
			if s.IndexErr != nil {
				return s.IndexErr
			}

			question := strings.Join(args, " ")
			result, err := s.Answer.Answer(cmd.Context(), question, topK)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, result)
			}

			cmd.Println(result.Answer)
			if noCites {
				return nil
			}
			if len(result.Sources) == 0 {
				cmd.Println()
				cmd.Println("No matching passages.")
				return nil
			}
			cmd.Println()
			cmd.Println("Sources:")
			for i := range result.Sources {
				printSource(cmd, i, result.Sources[i].Score, result.Sources[i].Metadata, "")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, fmt.Sprintf("passages to retrieve (default from settings, %d)", s.topK()))
	cmd.Flags().BoolVar(&asJSON, "json", false, "print {response, sources} as JSON")
	cmd.Flags().BoolVar(&noCites, "no-sources", false, "print only the answer")
	return cmd
}

func newRetrieveCommand(s *Services) *cobra.Command {
	var (
		topK   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "retrieve <query>",
		Short: "Show the passages most similar to a query",
		Long:  `Run retrieval only, without calling the language model.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.Answer == nil {
				return fmt.Errorf("retrieve: %w", ErrNotConfigured)
			}
			if s.IndexErr != nil {
				return s.IndexErr
			}

			hits, err := s.Answer.Retrieve(cmd.Context(), strings.Join(args, " "), topK)
			if err != nil {
				return err
			}

			if asJSON {
				sources := make([]domain.AnswerSource, len(hits))
				for i, h := range hits {
					sources[i] = domain.AnswerSource{Text: h.Chunk.Text, Score: h.Score, Metadata: h.Chunk.Metadata}
				}
				return printJSON(cmd, sources)
			}

			if len(hits) == 0 {
				cmd.Println("No matching passages.")
				return nil
			}
			for i := range hits {
				printSource(cmd, i, hits[i].Score, hits[i].Chunk.Metadata, hits[i].Chunk.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "passages to retrieve (default from settings)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output passages as JSON")
	return cmd
}

func (s *Services) topK() int {
	if s.TopK > 0 {
		return s.TopK
	}
	return domain.DefaultTopK
}

func printSource(cmd *cobra.Command, i int, score float64, metadata map[string]any, body string) {
	cmd.Printf("  [%d] %s (%.2f)\n", i+1, sourceLocation(metadata), score)
	if body != "" {
		cmd.Printf("      %s\n", strings.Join(strings.Fields(body), " "))
		cmd.Println()
	}
}

// sourceLocation formats "file p.N", "file @ HH:MM:SS" or just the file name.
func sourceLocation(metadata map[string]any) string {
	name, _ := metadata[domain.MetaFileName].(string)
	if name == "" {
		name = "(unknown)"
	}
	if page, ok := metadata[domain.MetaPageNumber]; ok {
		return fmt.Sprintf("%s p.%v", name, page)
	}
	if ts, ok := metadata[domain.MetaTimestamp].(string); ok && ts != "" {
		return fmt.Sprintf("%s @ %s", name, ts)
	}
	return name
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
