// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/merge"
	"github.com/pdiddy/tetra-pdf/internal/selection"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge PDF files into one document",
	Long: `Merge concatenates the pages of the given PDF files, in order, into a single
output document. Files may also come from a YAML list (--list). The merge fails,
writing nothing, when any file is missing, invalid or listed twice.

When the output already exists it is kept and a timestamped name is used
instead, unless --overwrite is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		listPath, _ := cmd.Flags().GetString("list")
		if cmd.Flags().Changed("overwrite") {
			cfg.Merge.Overwrite, _ = cmd.Flags().GetBool("overwrite")
		}
		if cmd.Flags().Changed("divider") {
			cfg.Merge.DividerPage, _ = cmd.Flags().GetBool("divider")
		}

		paths := args
		if listPath != "" {
			lf, err := readListFile(listPath)
			if err != nil {
				return err
			}
			paths = append(lf.Files, paths...)
			if output == "" {
				output = lf.Output
			}
		}
		if len(paths) == 0 {
			return errors.New("need at least 1 file to merge")
		}
		if output == "" {
			output = merge.DefaultOutputPath(cfg.Merge.OutputDir)
		}

		c, err := openComponents(true)
		if err != nil {
			return err
		}
		defer c.close()

		// Every named file must make it into the output.
		sel := selection.New(c.reader, logger)
		resp := sel.Add(cmd.Context(), paths...)
		if !resp.OK() || sel.Count() != len(paths) {
			return errors.New(resp.Message)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), resp.Message)

		result, mergeErr := c.merger.Merge(cmd.Context(), sel.Paths(), output)
		if c.history != nil {
			if err := c.history.Record(cmd.Context(), result); err != nil {
				logger.Warn("recording merge", zap.String("id", result.ID), zap.Error(err))
			}
		}
		if mergeErr != nil {
			return mergeErr
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages)\n", result.OutputPath, result.PageCount)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "", "output file (default: <merge.output_dir>/merged_document.pdf)")
	mergeCmd.Flags().String("list", "", "YAML file listing the files to merge")
	mergeCmd.Flags().Bool("overwrite", false, "replace an existing output file")
	mergeCmd.Flags().Bool("divider", false, "insert a blank page between documents")

	rootCmd.AddCommand(mergeCmd)
}
