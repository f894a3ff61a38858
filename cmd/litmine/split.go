// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litmine/internal/splitter"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split raw model output into structured clinical fields",
	Long: `Split parses the gpt_output column of the extracted CSV with a table of
field patterns and adds population, risk_factors, treatments, and outcomes
columns. Rows whose output matches no pattern keep empty fields.`,
	RunE: runSplit,
}

func runSplit(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("out")
	_, err := splitter.Run(input, out, os.Stdout)
	return err
}

func init() {
	splitCmd.Flags().String("input", "", "input CSV with gpt_output column")
	splitCmd.Flags().String("out", "outputs/step3_split.csv", "output CSV path")
	splitCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(splitCmd)
}
