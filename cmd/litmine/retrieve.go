// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litmine/internal/retrieve"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Sample PubMed abstracts per publication year",
	Long: `Retrieve queries PubMed year by year for the configured keywords, takes a
random sample of matching PMIDs per year, fetches the article details, and
writes them to the stage-one CSV. A run summary YAML is written next to it.`,
	RunE: runRetrieve,
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	_, err := retrieve.Run(context.Background(), retrieveConfigFromFlags(cmd), out, os.Stdout)
	return err
}

func init() {
	addRetrieveFlags(retrieveCmd)
	retrieveCmd.Flags().String("out", "outputs/step1_retrieved.csv", "output CSV path")

	rootCmd.AddCommand(retrieveCmd)
}
