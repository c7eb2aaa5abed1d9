// Package cli implements the veritas command-line interface using cobra.
// The serve command runs the HTTP API; suggest runs one request from the
// terminal, which is the fastest way to exercise a deployment end to end.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas/internal/adapters/driven/auth"
	configfile "github.com/custodia-labs/veritas/internal/adapters/driven/config/file"
	embeddingvertex "github.com/custodia-labs/veritas/internal/adapters/driven/embedding/vertex"
	llmvertex "github.com/custodia-labs/veritas/internal/adapters/driven/llm/vertex"
	"github.com/custodia-labs/veritas/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/services"
	"github.com/custodia-labs/veritas/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "veritas",
	Short: "Retrieval-augmented critical-thinking suggestions",
	Long: `Veritas retrieves the evidence most relevant to a user's in-progress
text and asks a generative model for citation-grounded critical-thinking
suggestions: supporting evidence, contradictions, probing questions, and
gaps needing elaboration.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default: ~/.veritas/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the config path and loads the configuration.
func loadConfig() (configfile.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = configfile.DefaultPath()
		if err != nil {
			return configfile.Config{}, fmt.Errorf("resolve config path: %w", err)
		}
	}
	return configfile.Load(path)
}

// pipeline holds the wired service and everything that needs closing.
type pipeline struct {
	service *services.SuggestionService
	store   *postgres.Store
	embed   *embeddingvertex.EmbeddingService
	gen     *llmvertex.GenerativeService
}

// close releases pipeline resources.
func (p *pipeline) close() {
	if p.embed != nil {
		_ = p.embed.Close()
	}
	if p.gen != nil {
		_ = p.gen.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}

// buildPipeline wires the full suggestion pipeline from configuration.
func buildPipeline(cfg configfile.Config) (*pipeline, error) {
	if cfg.ML.BaseURL == "" {
		return nil, fmt.Errorf("ml.base_url is not configured")
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database dsn is not configured (set database.dsn or %s)", configfile.EnvDatabaseURL)
	}
	if cfg.ML.CredentialsFile == "" {
		return nil, fmt.Errorf("credentials file is not configured (set ml.credentials_file or %s)", configfile.EnvCredentialsFile)
	}

	creds, err := auth.LoadCredentials(cfg.ML.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	tokens, err := auth.NewServiceAccountProvider(auth.Config{Credentials: creds})
	if err != nil {
		return nil, fmt.Errorf("token provider: %w", err)
	}

	embedder, err := embeddingvertex.NewEmbeddingService(embeddingvertex.Config{
		BaseURL: cfg.ML.BaseURL,
		Model:   cfg.ML.EmbeddingModel,
	}, tokens)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}

	generator, err := llmvertex.NewGenerativeService(llmvertex.Config{
		BaseURL: cfg.ML.BaseURL,
		Model:   cfg.ML.GenerativeModel,
	}, tokens)
	if err != nil {
		return nil, fmt.Errorf("generative service: %w", err)
	}

	store, err := postgres.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	service := services.NewSuggestionService(
		store.ProjectStore(),
		embedder,
		store.ChunkIndex(domain.EmbeddingDimensions),
		store.FileStore(),
		generator,
		services.Options{
			Threshold:  cfg.Retrieval.Threshold,
			TopK:       cfg.Retrieval.TopK,
			Namespaces: cfg.Retrieval.Namespaces,
		},
	)

	return &pipeline{service: service, store: store, embed: embedder, gen: generator}, nil
}
