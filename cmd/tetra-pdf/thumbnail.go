// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tetra-pdf/internal/thumbnail"
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail <file>",
	Short: "Write a PNG icon for a PDF file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		size, _ := cmd.Flags().GetInt("size")
		if output == "" {
			return errors.New("--output is required")
		}

		c, err := openComponents(false)
		if err != nil {
			return err
		}
		defer c.close()

		entry, err := c.reader.Inspect(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		if err := thumbnail.EncodePNG(f, thumbnail.Render(entry, size)); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	thumbnailCmd.Flags().StringP("output", "o", "", "output PNG file")
	thumbnailCmd.Flags().Int("size", thumbnail.DefaultWidth, "icon width in pixels")

	rootCmd.AddCommand(thumbnailCmd)
}
