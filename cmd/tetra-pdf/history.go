// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent merges",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		export, _ := cmd.Flags().GetString("export")
		show, _ := cmd.Flags().GetString("show")
		remove, _ := cmd.Flags().GetString("delete")

		c, err := openComponents(true)
		if err != nil {
			return err
		}
		defer c.close()
		if c.history == nil {
			return errors.New("history is disabled (history.enabled)")
		}

		out := cmd.OutOrStdout()
		switch {
		case show != "":
			r, err := c.history.Get(cmd.Context(), show)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshaling merge %s: %w", show, err)
			}
			fmt.Fprint(out, string(data))
			return nil
		case remove != "":
			if err := c.history.Delete(cmd.Context(), remove); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s\n", remove)
			return nil
		}

		switch export {
		case "":
		case "yaml":
			path, err := c.history.ExportYAML(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, path)
			return nil
		case "json":
			path, err := c.history.ExportJSON(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, path)
			return nil
		default:
			return fmt.Errorf("unknown export format %q: want yaml or json", export)
		}

		results, err := c.history.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tWHEN\tOUTPUT\tFILES\tPAGES\tSIZE\tRESULT")
		for _, r := range results {
			status := "ok"
			if !r.Success {
				status = r.Message
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
				r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.OutputPath,
				len(r.Inputs), r.PageCount, pdfinfo.FormatSize(r.Size), status)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum entries to list (default: history.max_results)")
	historyCmd.Flags().String("export", "", "write all entries to the history directory as yaml or json")
	historyCmd.Flags().String("show", "", "print one merge, inputs included, by ID")
	historyCmd.Flags().String("delete", "", "delete one merge by ID")

	rootCmd.AddCommand(historyCmd)
}
