// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litmine/internal/chat"
	"github.com/pdiddy/litmine/internal/pipeline"
	"github.com/pdiddy/litmine/pkg/types"
)

var coreCmd = &cobra.Command{
	Use:   "core",
	Short: "Run the core pipeline (retrieve, classify, extract)",
	Long: `Core chains the three essential stages. With --start-from, earlier stages
are skipped and their existing outputs are reused.`,
	RunE: runCore,
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full pipeline including split and question generation",
	Long: `Pipeline runs the core stages and then the optional split and qa stages.
Use --skip-split or --skip-qa to leave the optional stages out, and
--start-from to resume from an existing core stage output.`,
	RunE: runPipeline,
}

func runCore(cmd *cobra.Command, args []string) error {
	cfg, paths, startFrom, err := pipelineSetup(cmd)
	if err != nil {
		return err
	}

	last, err := pipeline.Core(context.Background(), chat.NewClient(cfg.AI), cfg, paths, startFrom, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("core pipeline complete: %s\n", last)
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, paths, startFrom, err := pipelineSetup(cmd)
	if err != nil {
		return err
	}

	opts := pipeline.Options{StartFrom: startFrom}
	opts.SkipSplit, _ = cmd.Flags().GetBool("skip-split")
	opts.SkipQA, _ = cmd.Flags().GetBool("skip-qa")

	if err := pipeline.Full(context.Background(), chat.NewClient(cfg.AI), cfg, paths, opts, os.Stdout); err != nil {
		return err
	}
	fmt.Println("pipeline complete")
	return nil
}

func pipelineSetup(cmd *cobra.Command) (types.PipelineConfig, pipeline.Paths, string, error) {
	ai, err := aiConfigFromFlags(cmd)
	if err != nil {
		return types.PipelineConfig{}, pipeline.Paths{}, "", err
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	startFrom, _ := cmd.Flags().GetString("start-from")

	cfg := types.PipelineConfig{
		Retrieve: retrieveConfigFromFlags(cmd),
		AI:       ai,
	}
	cfg.QA.BankPath, _ = cmd.Flags().GetString("qa-bank")
	return cfg, pipeline.DefaultPaths(outDir), startFrom, nil
}

func init() {
	for _, cmd := range []*cobra.Command{coreCmd, pipelineCmd} {
		addRetrieveFlags(cmd)
		cmd.Flags().String("out-dir", "outputs", "directory for stage CSVs")
		cmd.Flags().String("start-from", "retrieve", "start stage: retrieve, classify, or extract")
	}
	pipelineCmd.Flags().Bool("skip-split", false, "skip the field-splitting stage")
	pipelineCmd.Flags().Bool("skip-qa", false, "skip question generation")
	pipelineCmd.Flags().String("qa-bank", "", "accumulating QA bank CSV (default: <out-dir>/qa_bank.csv)")

	rootCmd.AddCommand(coreCmd)
	rootCmd.AddCommand(pipelineCmd)
}
