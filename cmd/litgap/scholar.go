// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litgap/internal/search"
)

var scholarCmd = &cobra.Command{
	Use:   "scholar <query>",
	Short: "Search the Semantic Scholar graph API",
	Long: `Scholar runs the secondary retrieval path: a Semantic Scholar search
followed by a batch lookup of abstract, TLDR, URL and fields of study. It is
independent of the gaps pipeline.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := search.NewSemanticScholarBackend(loadConfig().ScholarGraph)
		backend.Logger = logger.Named("semantic_scholar")

		limit, _ := cmd.Flags().GetInt("limit")
		papers, err := backend.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(papers)
		}
		if len(papers) == 0 {
			fmt.Println("No results found.")
			return nil
		}
		for i, p := range papers {
			fmt.Printf("[%d] %s\n", i+1, p.Title)
			if p.URL != "" {
				fmt.Printf("    %s\n", p.URL)
			}
			if p.Fields != "" {
				fmt.Printf("    Fields: %s\n", p.Fields)
			}
			if p.TLDR != "" {
				fmt.Printf("    TLDR: %s\n", p.TLDR)
			}
		}
		return nil
	},
}

func init() {
	scholarCmd.Flags().Int("limit", 10, "maximum number of papers")
	scholarCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(scholarCmd)
}
