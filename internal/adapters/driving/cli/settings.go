package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

func newSettingsCommand(s *Services) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage application settings",
		Long: `View and configure providers, chunking and devices.

Settings are stored in ~/.lectern/config.toml. Any value can be overridden
for a single run with a LECTERN_ environment variable or a .env file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSettingsShow(cmd, s)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSettingsShow(cmd, s)
		},
	}

	embedding := &cobra.Command{
		Use:   "embedding",
		Short: "Configure the embedding provider",
		Long: `Choose the embedding provider and model.

Changing the embedding model makes the existing index unusable; run
'lectern index reset' and ingest again afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.Settings == nil {
				return fmt.Errorf("settings: %w", ErrNotConfigured)
			}
			return configureEmbeddingProvider(cmd, s, bufio.NewReader(cmd.InOrStdin()))
		},
	}

	llm := &cobra.Command{
		Use:   "llm",
		Short: "Configure the LLM provider",
		Long:  `Choose the provider and model that generate answers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.Settings == nil {
				return fmt.Errorf("settings: %w", ErrNotConfigured)
			}
			return configureLLMProvider(cmd, s, bufio.NewReader(cmd.InOrStdin()))
		},
	}

	cmd.AddCommand(show, embedding, llm,
		newSettingsChunkingCommand(s),
		newSettingsDeviceCommand(s),
		newSettingsSetKeyCommand(s),
	)
	return cmd
}

func newSettingsChunkingCommand(s *Services) *cobra.Command {
	var size, overlap int

	cmd := &cobra.Command{
		Use:   "chunking",
		Short: "Set chunk size and overlap, in characters",
		Long: `Set the chunk window. Overlap must be smaller than size.
New values apply to material ingested afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.Settings == nil {
				return fmt.Errorf("settings: %w", ErrNotConfigured)
			}
			current, err := s.Settings.Get()
			if err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}
			if !cmd.Flags().Changed("size") {
				size = current.Chunk.Size
			}
			if !cmd.Flags().Changed("overlap") {
				overlap = current.Chunk.Overlap
			}
			if err := s.Settings.SetChunking(size, overlap); err != nil {
				return err
			}
			cmd.Printf("Chunking set to size %d, overlap %d\n", size, overlap)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", domain.DefaultChunkSize, "characters per chunk")
	cmd.Flags().IntVar(&overlap, "overlap", domain.DefaultChunkOverlap, "characters shared by neighbouring chunks")
	return cmd
}

func newSettingsDeviceCommand(s *Services) *cobra.Command {
	return &cobra.Command{
		Use:       "device <auto|cpu|gpu>",
		Short:     "Choose where local models run",
		Long:      `Select the device passed to local (Ollama) models. Remote providers ignore it.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.DeviceAuto), string(domain.DeviceCPU), string(domain.DeviceGPU)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.Settings == nil {
				return fmt.Errorf("settings: %w", ErrNotConfigured)
			}
			if err := s.Settings.SetDevice(domain.Device(args[0])); err != nil {
				return err
			}
			cmd.Printf("Device set to %s\n", args[0])
			return nil
		},
	}
}

func newSettingsSetKeyCommand(s *Services) *cobra.Command {
	return &cobra.Command{
		Use:       "set-key <embedding|llm>",
		Short:     "Store the API key for the current provider",
		Long:      `Prompt for an API key without echoing it and store it for the current provider.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"embedding", "llm"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.Settings == nil {
				return fmt.Errorf("settings: %w", ErrNotConfigured)
			}
			current, err := s.Settings.Get()
			if err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}

			var provider domain.AIProvider
			switch args[0] {
			case "embedding":
				provider = current.Embedding.Provider
			case "llm":
				provider = current.LLM.Provider
			default:
				return fmt.Errorf("%w: expected embedding or llm, got %q", domain.ErrInvalidInput, args[0])
			}
			if !provider.RequiresAPIKey() {
				cmd.Printf("%s does not use an API key.\n", provider.Description())
				return nil
			}

			cmd.Printf("Enter %s API key: ", provider.Description())
			key := readPassword(bufio.NewReader(cmd.InOrStdin()))
			cmd.Println()
			if key == "" {
				return errors.New("API key is required for this provider")
			}

			if args[0] == "embedding" {
				err = s.Settings.SetEmbeddingProvider(provider, current.Embedding.Model, key)
			} else {
				err = s.Settings.SetLLMProvider(provider, current.LLM.Model, key)
			}
			if err != nil {
				return fmt.Errorf("failed to store API key: %w", err)
			}
			cmd.Printf("API key stored: %s\n", maskAPIKey(key))
			return nil
		},
	}
}

func runSettingsShow(cmd *cobra.Command, s *Services) error {
	if s.Settings == nil {
		return fmt.Errorf("settings: %w", ErrNotConfigured)
	}

	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Directory: %s\n", settings.IndexDir)
	cmd.Printf("  Chunk size: %d\n", settings.Chunk.Size)
	cmd.Printf("  Chunk overlap: %d\n", settings.Chunk.Overlap)
	cmd.Printf("  Top K: %d\n", settings.TopK)
	cmd.Printf("  Device: %s\n", settings.Device)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	printProviderDetails(cmd, settings.Embedding.Provider, settings.Embedding.BaseURL, settings.Embedding.APIKey,
		settings.Embedding.IsConfigured())
	if settings.Embedding.RateLimit > 0 {
		cmd.Printf("  Rate limit: %g texts/s\n", settings.Embedding.RateLimit)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Temperature: %g\n", settings.LLM.Temperature)
	printProviderDetails(cmd, settings.LLM.Provider, settings.LLM.BaseURL, settings.LLM.APIKey,
		settings.LLM.IsConfigured())
	cmd.Println()

	if err := s.Settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'lectern settings embedding' or 'lectern settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProviderDetails(cmd *cobra.Command, provider domain.AIProvider, baseURL, apiKey string, configured bool) {
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, s *Services, reader *bufio.Reader) error {
	current, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := s.Settings.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := s.Settings.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	if model != current.Embedding.Model {
		cmd.Println("The embedding model changed. Run 'lectern index reset' and ingest your material again.")
	}
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, s *Services, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := s.Settings.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := s.Settings.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal, and falls back to
// a plain line from reader otherwise.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
