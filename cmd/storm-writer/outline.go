// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/storm-writer/internal/llm"
	"github.com/pdiddy/storm-writer/internal/outline"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <topic>",
	Short: "Generate only the initial article outline",
	Long: `Outline runs the planning stage alone: a single model call producing the
initial hierarchical outline for the topic. Useful for previewing how the
article would be organized before committing to a full generate run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig()
		if model, _ := cmd.Flags().GetString("model"); model != "" {
			cfg.LLM.Model = model
		}

		client, err := llm.NewClient(cfg.LLM)
		if err != nil {
			return err
		}

		o, err := outline.Initial(cmd.Context(), client, args[0])
		if err != nil {
			return err
		}

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			dump, err := yaml.Marshal(o)
			if err != nil {
				return fmt.Errorf("serializing outline: %w", err)
			}
			fmt.Fprint(os.Stdout, string(dump))
			return nil
		}
		fmt.Fprintln(os.Stdout, o.AsText())
		return nil
	},
}

func init() {
	outlineCmd.Flags().String("model", "", "chat model to use (default from config)")
	outlineCmd.Flags().Bool("yaml", false, "emit the outline as YAML instead of markdown")

	rootCmd.AddCommand(outlineCmd)
}
