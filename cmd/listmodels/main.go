// Command listmodels prints the Gemini models available to GEMINI_API_KEY.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gemchat-backend/internal/config"
	"gemchat-backend/internal/models"
	"gemchat-backend/internal/services"
)

var (
	methodFlag  string
	outputFlag  string
	timeoutFlag time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "listmodels",
		Short: "List Gemini models available to your API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVar(&methodFlag, "method", "", "only show models supporting this generation method (e.g. generateContent)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.Flags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "request timeout")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer) error {
	if outputFlag != "text" && outputFlag != "json" && outputFlag != "yaml" {
		return fmt.Errorf("unknown output format %q", outputFlag)
	}

	// Models are always listed from Gemini, whatever the chat provider is.
	cfg, err := config.LoadFor(config.ProviderGemini)
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}

	gemini, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, 1, 0)
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	defer gemini.Close()

	ctx, cancel := context.WithTimeout(ctx, timeoutFlag)
	defer cancel()

	if outputFlag == "text" {
		fmt.Fprintln(out, "🔍 Listing available models for your key:")
		fmt.Fprintln(out)
	}

	list, err := gemini.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("❌ Error while listing models: %w", err)
	}

	return writeModels(out, filterModels(list, methodFlag), outputFlag)
}

func filterModels(list []models.ModelInfo, method string) []models.ModelInfo {
	if method == "" {
		return list
	}
	var out []models.ModelInfo
	for _, m := range list {
		if m.Supports(method) {
			out = append(out, m)
		}
	}
	return out
}

func writeModels(out io.Writer, list []models.ModelInfo, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(list)
	default:
		for _, m := range list {
			fmt.Fprintf(out, "✅ %s → Supported methods: %v\n", m.Name, m.SupportedGenerationMethods)
		}
		return nil
	}
}
