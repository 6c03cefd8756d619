// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litgap/internal/search"
	"github.com/pdiddy/litgap/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <question>",
	Short: "Retrieve papers for a question or boolean query",
	Long: `Search retrieves papers from the configured scholarly-search API (CORE by
default; --source openalex or --source arxiv select the others). The question
is first turned into a boolean query; pass --boolean to supply the query
directly, e.g.
  litgap search --boolean "(graph+neural+networks)|(gnn)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		applyRetrievalFlags(cmd, &cfg)
		input := strings.Join(args, " ")

		var query types.BooleanQuery
		if boolean, _ := cmd.Flags().GetBool("boolean"); boolean {
			query = types.BooleanQuery(input)
		} else {
			synth, err := newSynthesizer(cfg)
			if err != nil {
				return err
			}
			query, err = synth.Synthesize(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Boolean search: %s\n", query)
		}

		retriever, err := newRetriever(cfg)
		if err != nil {
			return err
		}
		offset, _ := cmd.Flags().GetInt("offset")
		papers, err := retriever.Retrieve(cmd.Context(), query, cfg.Retrieval.Limit, offset)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return writePapers(papers, format)
	},
}

// writePapers prints papers to stdout in the named format.
func writePapers(papers []types.PaperRecord, format string) error {
	switch format {
	case "", "table":
		search.FormatTable(papers, os.Stdout)
		return nil
	case "json":
		return search.FormatJSON(papers, os.Stdout)
	case "csl":
		return search.FormatCSL(papers, os.Stdout)
	default:
		return fmt.Errorf("unknown format %q (want table, json or csl)", format)
	}
}

// addRetrievalFlags registers the flags shared by search and gaps.
func addRetrievalFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "maximum number of papers (default from config, 10)")
	cmd.Flags().Int("offset", 0, "number of results to skip")
	cmd.Flags().String("source", "", "paper source: core, openalex or arxiv")
	cmd.Flags().String("format", "table", "paper output format: table, json or csl")
}

// applyRetrievalFlags overrides cfg with --source and --limit when given.
func applyRetrievalFlags(cmd *cobra.Command, cfg *types.Config) {
	if source, _ := cmd.Flags().GetString("source"); source != "" {
		cfg.Retrieval.Source = types.RetrievalSource(source)
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		cfg.Retrieval.Limit = limit
	}
}

func init() {
	searchCmd.Flags().Bool("boolean", false, "treat the argument as a boolean query")
	addRetrievalFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}
