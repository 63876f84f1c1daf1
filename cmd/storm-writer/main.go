// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the storm-writer CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/storm-writer/internal/secrets"
	"github.com/pdiddy/storm-writer/pkg/types"
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

// rootCmd is the base command for the storm-writer CLI.
var rootCmd = &cobra.Command{
	Use:   "storm-writer",
	Short: "Draft Wikipedia-style articles with simulated expert interviews",
	Long: `storm-writer drafts a Wikipedia-style article from a single topic string.
It surveys editor personas for the topic, runs parallel simulated interviews
with a search-backed expert, refines the article outline from the transcripts,
indexes every cited reference, drafts each section against the refined
outline, and assembles the final article.

The generate subcommand runs the full pipeline; outline runs only the
planning stage for a quick preview.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./storm-writer.yaml or ~/.config/storm-writer/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("storm-writer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "storm-writer"))
		}
	}

	viper.SetEnvPrefix("STORM_WRITER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the run configuration from config file, environment,
// and loaded secrets. Flag overrides are applied by the subcommands.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		LLM: types.LLMConfig{
			Model:          viper.GetString("llm.model"),
			EmbeddingModel: viper.GetString("llm.embedding_model"),
			BaseURL:        viper.GetString("llm.base_url"),
			APIKey:         secretDefault("openai-api-key", viper.GetString("llm.api_key")),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			MaxResults: viper.GetInt("search.max_results"),
		},
		Survey: types.SurveyConfig{
			MaxEditors:  viper.GetInt("survey.max_editors"),
			DocTruncate: viper.GetInt("survey.doc_truncate"),
		},
		Interview: types.InterviewConfig{
			MaxTurns:      viper.GetInt("interview.max_turns"),
			ContextBudget: viper.GetInt("interview.context_budget"),
		},
		Compose: types.ComposeConfig{
			RetrieveK: viper.GetInt("compose.retrieve_k"),
		},
	}
	return cfg.WithDefaults()
}

// searchHTTPClient builds the shared HTTP client for the search backends.
func searchHTTPClient(cfg types.SearchConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
