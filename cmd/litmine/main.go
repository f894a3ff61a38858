// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litmine CLI. Each pipeline stage
// is a subcommand: retrieve, classify, extract, split, qa. The core and
// pipeline subcommands chain stages; bank manages the question bank.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/litmine/internal/chat"
	"github.com/pdiddy/litmine/internal/secrets"
	"github.com/pdiddy/litmine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the litmine CLI.
var rootCmd = &cobra.Command{
	Use:   "litmine",
	Short: "Mine PubMed abstracts into filtered, structured question banks",
	Long: `litmine runs a literature enrichment pipeline over PubMed abstracts:
retrieve samples abstracts per publication year, classify filters them for
clinical depression/anxiety relevance, extract asks a model for structured
summaries, split pulls clinical fields out of those summaries, and qa turns
each abstract into an exam-style question.

Each stage is a subcommand reading the previous stage's CSV. The core and
pipeline subcommands chain them; bank indexes generated questions in a
searchable SQLite database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogger(cmd); err != nil {
			return err
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func initLogger(cmd *cobra.Command) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litmine.yaml or ~/.config/litmine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable human-readable debug logging")
	rootCmd.PersistentFlags().String("model", "", "model for classify/extract/qa prompts")
	rootCmd.PersistentFlags().String("anthropic-api-key", "", "Anthropic API key (overrides .secrets/anthropic-api-key)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litmine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litmine"))
		}
	}

	viper.SetEnvPrefix("LITMINE")
	viper.AutomaticEnv()

	viper.SetDefault("model", "claude-sonnet-4-5")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// aiConfigFromFlags resolves the model settings shared by the model-driven
// stages. The key comes from the flag, then .secrets/, in that order.
func aiConfigFromFlags(cmd *cobra.Command) (types.AIConfig, error) {
	keyFlag, _ := cmd.Flags().GetString("anthropic-api-key")
	apiKey := secretDefault(secrets.AnthropicAPIKey, keyFlag)
	if apiKey == "" {
		return types.AIConfig{}, fmt.Errorf("no Anthropic API key: set --anthropic-api-key or .secrets/%s", secrets.AnthropicAPIKey)
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("model")
	}
	return types.AIConfig{Model: model, APIKey: apiKey}, nil
}

// newChatClient builds the SDK-backed chat client from the resolved settings.
func newChatClient(cmd *cobra.Command) (chat.Client, error) {
	cfg, err := aiConfigFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	return chat.NewClient(cfg), nil
}

// stringOpt resolves a string setting: an explicitly set flag wins, then
// the config file or environment, then the flag default.
func stringOpt(cmd *cobra.Command, flag, viperKey string) string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(viperKey) {
		return viper.GetString(viperKey)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

// intOpt is stringOpt for integer settings.
func intOpt(cmd *cobra.Command, flag, viperKey string) int {
	if !cmd.Flags().Changed(flag) && viper.IsSet(viperKey) {
		return viper.GetInt(viperKey)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

// retrieveConfigFromFlags assembles the PubMed query settings shared by the
// retrieve, core, and pipeline subcommands.
func retrieveConfigFromFlags(cmd *cobra.Command) types.RetrieveConfig {
	email, _ := cmd.Flags().GetString("email")
	apiKey, _ := cmd.Flags().GetString("api-key")

	return types.RetrieveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "litmine/" + version,
		},
		Keywords:      stringOpt(cmd, "keywords", "keywords"),
		StartYear:     intOpt(cmd, "start-year", "start_year"),
		EndYear:       intOpt(cmd, "end-year", "end_year"),
		SamplePerYear: intOpt(cmd, "sample-per-year", "sample_per_year"),
		Email:         secretDefault(secrets.EntrezEmail, email),
		APIKey:        secretDefault(secrets.NCBIAPIKey, apiKey),
		CallInterval:  340 * time.Millisecond,
	}
}

// addRetrieveFlags registers the PubMed query flags on a subcommand.
func addRetrieveFlags(cmd *cobra.Command) {
	cmd.Flags().String("keywords", "clinical depression OR anxiety", "query keywords")
	cmd.Flags().Int("start-year", 2020, "first publication year")
	cmd.Flags().Int("end-year", 2024, "last publication year")
	cmd.Flags().Int("sample-per-year", 100, "random sample count per year")
	cmd.Flags().String("email", "", "Entrez email (overrides .secrets/entrez-email)")
	cmd.Flags().String("api-key", "", "Entrez API key (overrides .secrets/ncbi-api-key)")
}

func main() {
	defer zap.L().Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
