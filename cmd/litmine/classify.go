// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litmine/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Label abstracts for clinical relevance and keep the YES rows",
	Long: `Classify asks the model whether each retrieved abstract focuses on clinical
depression or anxiety. Replies that contain no usable label trigger a strict
re-prompt, then a keyword heuristic, so every row ends up labeled. Only rows
labeled YES are written to the output CSV.`,
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	client, err := newChatClient(cmd)
	if err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("out")
	_, err = classify.Run(context.Background(), client, input, out, os.Stdout)
	return err
}

func init() {
	classifyCmd.Flags().String("input", "", "input CSV (stage-one output)")
	classifyCmd.Flags().String("out", "outputs/step2_filtered.csv", "output CSV path")
	classifyCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(classifyCmd)
}
