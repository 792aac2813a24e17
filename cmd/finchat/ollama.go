package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finchat/internal/llm"
)

func newOllama() (*llm.OllamaProvider, error) {
	return llm.NewOllamaProvider(cfg.LLM.OllamaURL, llm.WithOllamaModel(cfg.LLM.LocalModel))
}

// --- Embed Command ---

var embedCmd = &cobra.Command{
	Use:   "embed TEXT...",
	Short: "Print the local embedding vector for a text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newOllama()
		if err != nil {
			return err
		}
		vec, err := p.Embed(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(vec)
	},
}

// --- Describe Image Command ---

var describeImageCmd = &cobra.Command{
	Use:   "describe-image PATH",
	Short: "Describe an image with a local vision model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newOllama()
		if err != nil {
			return err
		}
		model, _ := cmd.Flags().GetString("model")
		prompt, _ := cmd.Flags().GetString("prompt")
		text, err := p.DescribeImage(cmd.Context(), args[0], model, prompt)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	describeImageCmd.Flags().String("model", "llava", "vision model")
	describeImageCmd.Flags().String("prompt", "Describe this image.", "prompt sent with the image")
}
