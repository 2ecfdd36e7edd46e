// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tetra-pdf/internal/merge"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt <file>",
	Short: "Write a decrypted copy of an encrypted PDF",
	Long: `Decrypt removes the password protection from a PDF. The password comes from
--password, else from the secrets directory (<name>.password or
pdf-password).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		password, _ := cmd.Flags().GetString("password")
		if output == "" {
			return errors.New("--output is required")
		}
		if password == "" {
			password = loadedSecrets.For(args[0])
		}

		if err := merge.Decrypt(cmd.Context(), args[0], output, password, cfg.PDF.Validation); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	decryptCmd.Flags().StringP("output", "o", "", "output file")
	decryptCmd.Flags().String("password", "", "user or owner password")

	rootCmd.AddCommand(decryptCmd)
}
