// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
	"github.com/pdiddy/tetra-pdf/pkg/types"
)

// infoRecord is one line of info output.
type infoRecord struct {
	types.FileEntry
	Error string `json:"error,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show name, size and page count of PDF files",
	Long: `Info validates each file and prints its name, size and page count.
Files that cannot be read are listed with the reason.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		c, err := openComponents(false)
		if err != nil {
			return err
		}
		defer c.close()

		var records []infoRecord
		failed := 0
		for _, path := range args {
			entry, err := c.reader.Inspect(cmd.Context(), path)
			rec := infoRecord{FileEntry: entry}
			if err != nil {
				failed++
				rec.Name = path
				rec.Error = pdfinfo.Reason(err)
			}
			records = append(records, rec)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling info: %w", err)
			}
			fmt.Fprintln(out, string(data))
		} else {
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tPAGES")
			for _, r := range records {
				if r.Error != "" {
					fmt.Fprintf(tw, "%s\t-\t%s\n", r.Name, r.Error)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\n", r.Name, pdfinfo.FormatSize(r.Size), r.PageCount)
			}
			tw.Flush()
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files could not be read", failed, len(args))
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(infoCmd)
}
