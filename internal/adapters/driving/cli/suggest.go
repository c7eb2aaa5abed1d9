package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

var (
	suggestProject string
	suggestUser    string
	suggestText    string
	suggestJSON    bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Run one suggestion request from the terminal",
	Long: `Runs the full retrieval pipeline for a single piece of text and prints
the suggestions. Reads the text from --text, or from stdin when --text
is not given.`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestProject, "project", "p", "", "project ID (required)")
	suggestCmd.Flags().StringVarP(&suggestUser, "user", "u", "", "user ID for the membership check (required)")
	suggestCmd.Flags().StringVarP(&suggestText, "text", "t", "", "the in-progress text (default: read stdin)")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output the raw JSON response")
	_ = suggestCmd.MarkFlagRequired("project")
	_ = suggestCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	text := suggestText
	if text == "" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(raw)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.RequestTimeout())
	defer cancel()

	start := time.Now()
	result := p.service.GetSuggestions(ctx, domain.SuggestionRequest{
		UserID:      suggestUser,
		ProjectID:   suggestProject,
		CurrentText: text,
	})

	if suggestJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if result.Cause != domain.CauseNone {
		cmd.Printf("pipeline degraded (%s); no suggestions\n", result.Cause)
		return nil
	}
	if len(result.Suggestions) == 0 {
		cmd.Println("no suggestions")
		return nil
	}

	for i, sg := range result.Suggestions {
		cmd.Printf("%d. [%s] %s\n", i+1, sg.Type, sg.Text)
		if sg.FileID != "" {
			cmd.Printf("   source: file %s", sg.FileID)
			if sg.Location != "" {
				cmd.Printf(" (%s)", sg.Location)
			}
			cmd.Println()
		}
		if sg.Quote != "" {
			cmd.Printf("   quote: %q\n", sg.Quote)
		}
	}
	cmd.Printf("%d suggestions in %s\n", len(result.Suggestions), time.Since(start).Round(time.Millisecond))
	return nil
}
