// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Print the text of one page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		c, err := openComponents(false)
		if err != nil {
			return err
		}
		defer c.close()

		p, err := c.reader.Preview(cmd.Context(), args[0], page)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: page %d of %d\n\n", p.Name, p.Page, p.PageCount)
		fmt.Fprintln(out, p.Text)
		return nil
	},
}

func init() {
	previewCmd.Flags().Int("page", 1, "page number (1-based)")

	rootCmd.AddCommand(previewCmd)
}
