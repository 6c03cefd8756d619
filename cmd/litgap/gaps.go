// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litgap/internal/pipeline"
	"github.com/pdiddy/litgap/internal/render"
	"github.com/pdiddy/litgap/internal/search"
	"github.com/pdiddy/litgap/internal/synthesis"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps <question>",
	Short: "Find current limitations in a research area",
	Long: `Gaps runs the full flow: the question becomes a boolean query, the query
retrieves papers, and the paper abstracts (or full texts with --full-text)
ground a streamed answer describing current limitations in the field. The
answer is followed by the list of cited sources.

With --no-stream the answer is printed once it is complete. Pass --save to
keep the question, query, papers and answer as a YAML session file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		applyRetrievalFlags(cmd, &cfg)

		p, err := newPipeline(cfg, nil, nil)
		if err != nil {
			return err
		}

		offset, _ := cmd.Flags().GetInt("offset")
		fullText, _ := cmd.Flags().GetBool("full-text")
		req := pipeline.Request{
			Question: strings.Join(args, " "),
			Limit:    cfg.Retrieval.Limit,
			Offset:   offset,
			FullText: fullText,
		}

		res, err := p.Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		render.Notice.Fprintf(os.Stdout, "Boolean search: %s\n\n", res.Query)
		format, _ := cmd.Flags().GetString("format")
		if err := writePapers(res.Papers, format); err != nil {
			return err
		}
		fmt.Println()

		var answer strings.Builder
		out := render.NewBoldWriter(os.Stdout, nil)
		if noStream, _ := cmd.Flags().GetBool("no-stream"); noStream {
			text, err := synthesis.Collect(res.Answer)
			if err != nil {
				return err
			}
			answer.WriteString(text)
			if _, err := io.WriteString(out, text); err != nil {
				return err
			}
		} else {
			for chunk, err := range res.Answer {
				if err != nil {
					fmt.Println()
					return err
				}
				answer.WriteString(chunk)
				if _, err := io.WriteString(out, chunk); err != nil {
					return err
				}
			}
		}
		if err := out.Flush(); err != nil {
			return err
		}

		fmt.Println()
		render.Heading.Fprintln(os.Stdout, "\nSources")
		search.FormatSources(res.Papers, os.Stdout)

		if path, _ := cmd.Flags().GetString("save"); path != "" {
			session := search.Session{
				RunID:    res.RunID,
				Question: req.Question,
				Query:    res.Query,
				Source:   string(cfg.Retrieval.Source),
				FullText: fullText,
				Papers:   search.SessionPapers(res.Papers),
				Answer:   answer.String(),
			}
			if err := search.WriteSession(path, session); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Session saved to %s\n", path)
		}
		return nil
	},
}

func init() {
	addRetrievalFlags(gapsCmd)
	gapsCmd.Flags().Bool("full-text", false, "ground the answer in full texts instead of abstracts")
	gapsCmd.Flags().Bool("no-stream", false, "print the answer only once it is complete")
	gapsCmd.Flags().String("save", "", "write a YAML session file to this path")

	rootCmd.AddCommand(gapsCmd)
}
