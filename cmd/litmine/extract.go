// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litmine/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Ask the model for a structured summary of each abstract",
	Long: `Extract sends each filtered abstract to the model with a chain-of-thought
prompt covering population, risk factors, treatments, and outcomes. The raw
reply is stored in the gpt_output column for the split stage to parse.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	client, err := newChatClient(cmd)
	if err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("out")
	_, err = extract.Run(context.Background(), client, input, out, os.Stdout)
	return err
}

func init() {
	extractCmd.Flags().String("input", "", "input CSV (stage-two output)")
	extractCmd.Flags().String("out", "outputs/step3_extracted.csv", "output CSV path")
	extractCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(extractCmd)
}
