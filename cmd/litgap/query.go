// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Turn a research question into a boolean keyword query",
	Long: `Query asks the generative-text service to name the topic of the question,
then to list related fields, and joins them into a boolean query of the form
(term+one)|(term+two).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		synth, err := newSynthesizer(loadConfig())
		if err != nil {
			return err
		}
		res, err := synth.Explain(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Printf("Topic:    %s\n", res.Topic)
		fmt.Printf("Keywords: %s\n", strings.Join(res.Keywords, ", "))
		fmt.Printf("Query:    %s\n", res.Query)
		return nil
	},
}

func init() {
	queryCmd.Flags().Bool("json", false, "output topic, keywords and query as JSON")

	rootCmd.AddCommand(queryCmd)
}
