package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/vfkb/internal/config"
	"github.com/kalambet/vfkb/internal/kb"
)

var (
	apiKeyFlag    string
	projectIDFlag string
	verbose       bool
	outputFormat  string
	noColor       bool
)

var rootCmd = &cobra.Command{
	Use:   "vfkb",
	Short: "Manage and query a Voiceflow knowledge base",
	Long: `vfkb manages documents in a Voiceflow knowledge base and asks
questions against it.

Credentials come from the --api-key and --project-id flags, the
VFKB_API_KEY and VFKB_PROJECT_ID environment variables, or the config
file (see vfkb config).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat != "text" && outputFormat != "json" {
			return fmt.Errorf("invalid --format %q (want text or json)", outputFormat)
		}
		return nil
	},
}

// loadConfig reads configuration and applies the credential flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	if apiKeyFlag != "" {
		cfg.Voiceflow.APIKey = apiKeyFlag
	}
	if projectIDFlag != "" {
		cfg.Voiceflow.ProjectID = projectIDFlag
	}
	return cfg, nil
}

func kbClientFrom(cfg config.Config) *kb.Client {
	client := kb.NewWithEndpoints(
		cfg.Voiceflow.APIKey,
		cfg.Voiceflow.ProjectID,
		cfg.Voiceflow.BaseURL,
		cfg.Voiceflow.QueryURL,
	)
	client.SetTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)
	return client
}

var newKBClient = func() (*kb.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	return kbClientFrom(cfg), nil
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Voiceflow API key")
	rootCmd.PersistentFlags().StringVar(&projectIDFlag, "project-id", "", "Voiceflow project ID")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "output format: text or json")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}
