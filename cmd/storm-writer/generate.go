// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/pipeline"
	"github.com/pdiddy/storm-writer/internal/search"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Run the full article pipeline for a topic",
	Long: `Generate runs every stage for the given topic: persona survey and initial
outline, parallel expert interviews, outline refinement, reference indexing,
section drafting, and final assembly. The finished article is written as
markdown to stdout or --output; --html additionally renders it to an HTML
file and --save-state dumps the complete run state as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := args[0]
		cfg := pipelineConfig()

		if model, _ := cmd.Flags().GetString("model"); model != "" {
			cfg.LLM.Model = model
		}
		if n, _ := cmd.Flags().GetInt("max-editors"); n > 0 {
			cfg.Survey.MaxEditors = n
		}
		if n, _ := cmd.Flags().GetInt("max-turns"); n > 0 {
			cfg.Interview.MaxTurns = n
		}

		client, err := llm.NewClient(cfg.LLM)
		if err != nil {
			return err
		}

		httpClient := searchHTTPClient(cfg.Search)
		p := &pipeline.Pipeline{
			Gateway:       client,
			Embedder:      client,
			SearchBackend: &search.DuckDuckGoBackend{Client: httpClient},
			CorpusBackend: &search.WikipediaBackend{Client: httpClient},
			Cfg:           cfg,
			Progress:      os.Stderr,
		}

		state, err := p.Run(cmd.Context(), topic)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			fmt.Fprintln(os.Stdout, state.Article)
		} else if err := os.WriteFile(output, []byte(state.Article+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing article: %w", err)
		}

		if htmlPath, _ := cmd.Flags().GetString("html"); htmlPath != "" {
			var buf bytes.Buffer
			if err := goldmark.Convert([]byte(state.Article), &buf); err != nil {
				return fmt.Errorf("rendering HTML: %w", err)
			}
			if err := os.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing HTML: %w", err)
			}
		}

		if statePath, _ := cmd.Flags().GetString("save-state"); statePath != "" {
			dump, err := yaml.Marshal(state)
			if err != nil {
				return fmt.Errorf("serializing run state: %w", err)
			}
			if err := os.WriteFile(statePath, dump, 0o644); err != nil {
				return fmt.Errorf("writing run state: %w", err)
			}
		}

		return nil
	},
}

func init() {
	generateCmd.Flags().String("output", "", "write the article to this file instead of stdout")
	generateCmd.Flags().String("html", "", "additionally render the article to this HTML file")
	generateCmd.Flags().String("save-state", "", "dump the full run state (outline, transcripts, references, drafts) to this YAML file")
	generateCmd.Flags().String("model", "", "chat model to use (default from config)")
	generateCmd.Flags().Int("max-editors", 0, "maximum number of editor personas")
	generateCmd.Flags().Int("max-turns", 0, "maximum expert answers per interview")

	rootCmd.AddCommand(generateCmd)
}
