// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litmine/internal/qa"
)

var qaCmd = &cobra.Command{
	Use:   "qa",
	Short: "Generate one exam-style question per abstract",
	Long: `QA asks the model for one stand-alone short-answer question per filtered
abstract, expecting strict JSON. Unparseable replies trigger one strict
re-prompt. Usable questions are appended to the question bank CSV.`,
	RunE: runQA,
}

func runQA(cmd *cobra.Command, args []string) error {
	client, err := newChatClient(cmd)
	if err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("out")
	bankPath, _ := cmd.Flags().GetString("qa-bank")
	_, err = qa.Run(context.Background(), client, input, out, bankPath, os.Stdout)
	return err
}

func init() {
	qaCmd.Flags().String("input", "", "input CSV (stage-two or stage-three output)")
	qaCmd.Flags().String("out", "outputs/step4_qa.csv", "output CSV path")
	qaCmd.Flags().String("qa-bank", "outputs/qa_bank.csv", "question bank CSV path")
	qaCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(qaCmd)
}
