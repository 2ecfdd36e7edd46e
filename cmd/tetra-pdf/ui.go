// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/selection"
	"github.com/pdiddy/tetra-pdf/internal/ui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Run the browser interface",
	Long: `UI serves the Tetra PDF Utility Tool on the loopback interface and opens it
in the default browser. Stop it with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.UI.Addr, _ = cmd.Flags().GetString("addr")
		}
		if noBrowser, _ := cmd.Flags().GetBool("no-browser"); noBrowser {
			cfg.UI.OpenBrowser = false
		}

		c, err := openComponents(true)
		if err != nil {
			return err
		}
		defer c.close()

		deps := ui.Deps{
			Selection: selection.New(c.reader, logger),
			Previewer: c.reader,
			Merger:    c.merger,
			Config:    cfg,
			Logger:    logger,
		}
		if c.history != nil {
			deps.History = c.history
		}

		gin.SetMode(gin.ReleaseMode)
		srv, err := ui.New(deps)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.Run(ctx, cfg.UI.Addr, func(url string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Tetra PDF Utility Tool at %s\n", url)
			if cfg.UI.OpenBrowser {
				if err := openBrowser(url); err != nil {
					logger.Warn("opening browser", zap.String("url", url), zap.Error(err))
				}
			}
		})
	},
}

// openBrowser starts the platform's URL handler.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

func init() {
	uiCmd.Flags().String("addr", defaultAddr, "listen address")
	uiCmd.Flags().Bool("no-browser", false, "do not open a browser window")

	rootCmd.AddCommand(uiCmd)
}
