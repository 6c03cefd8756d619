// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litgap/internal/render"
	"github.com/pdiddy/litgap/internal/search"
)

var showCmd = &cobra.Command{
	Use:   "show <session.yaml>",
	Short: "Print a session saved with gaps --save",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := search.ReadSession(args[0])
		if err != nil {
			return err
		}
		return writeSession(os.Stdout, s)
	},
}

func writeSession(w io.Writer, s *search.Session) error {
	render.Heading.Fprintln(w, s.Question)
	fmt.Fprintf(w, "Saved %s", s.Timestamp.Format("2006-01-02 15:04 MST"))
	if s.Source != "" {
		fmt.Fprintf(w, " from %s", s.Source)
	}
	fmt.Fprintln(w)
	render.Notice.Fprintf(w, "Boolean search: %s\n\n", s.Query)

	out := render.NewBoldWriter(w, nil)
	if _, err := io.WriteString(out, s.Answer); err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	render.Heading.Fprintln(w, "\nSources")
	for i, p := range s.Papers {
		fmt.Fprintf(w, "[%d] %s\n", i+1, p.Citation)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(showCmd)
}
