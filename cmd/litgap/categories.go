// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litgap/internal/categories"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories [discipline [field]]",
	Short: "Browse research disciplines, fields and topics",
	Long: `Categories lists the disciplines of the research categories table. Given a
discipline it lists that discipline's fields; given a discipline and a field it
lists their topics. Any topic can be passed to "litgap gaps".`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := categories.Load(loadConfig().CategoriesFile)
		if err != nil {
			return err
		}

		var values []string
		switch len(args) {
		case 0:
			values = tbl.Disciplines()
		case 1:
			values = tbl.Fields(args[0])
		default:
			values = tbl.Topics(args[0], args[1])
		}
		if len(values) == 0 {
			return fmt.Errorf("no entries for %v", args)
		}
		for _, v := range values {
			fmt.Println(v)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
