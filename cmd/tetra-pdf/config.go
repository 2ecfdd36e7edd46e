// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/pdiddy/tetra-pdf/pkg/types"
)

const defaultAddr = "127.0.0.1:8765"

func setDefaults(v *viper.Viper) {
	v.SetDefault("ui.addr", defaultAddr)
	v.SetDefault("ui.open_browser", true)
	v.SetDefault("ui.start_dir", "")
	v.SetDefault("pdf.validation", string(types.ValidationRelaxed))
	v.SetDefault("secrets.dir", ".secrets/")
	v.SetDefault("merge.output_dir", "")
	v.SetDefault("merge.overwrite", false)
	v.SetDefault("merge.divider_page", false)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.dir", dataDir())
	v.SetDefault("history.max_results", 20)
	v.SetDefault("cache.path", cachePath())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// loadConfig reads the resolved settings out of the global viper instance.
func loadConfig() (types.Config, error) {
	return configFrom(viper.GetViper())
}

func configFrom(v *viper.Viper) (types.Config, error) {
	c := types.Config{
		PDF: types.PDFConfig{
			Validation: types.ValidationMode(v.GetString("pdf.validation")),
			SecretsDir: v.GetString("secrets.dir"),
		},
		Merge: types.MergeConfig{
			OutputDir:   v.GetString("merge.output_dir"),
			Overwrite:   v.GetBool("merge.overwrite"),
			DividerPage: v.GetBool("merge.divider_page"),
		},
		UI: types.UIConfig{
			Addr:        v.GetString("ui.addr"),
			OpenBrowser: v.GetBool("ui.open_browser"),
			StartDir:    v.GetString("ui.start_dir"),
		},
		History: types.HistoryConfig{
			Enabled:    v.GetBool("history.enabled"),
			Dir:        v.GetString("history.dir"),
			MaxResults: v.GetInt("history.max_results"),
		},
		Cache: types.CacheConfig{Path: v.GetString("cache.path")},
		Log: types.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	switch c.PDF.Validation {
	case types.ValidationRelaxed, types.ValidationStrict:
	case "":
		c.PDF.Validation = types.ValidationRelaxed
	default:
		return c, fmt.Errorf("invalid pdf.validation %q: want relaxed or strict", c.PDF.Validation)
	}
	if c.UI.Addr == "" {
		c.UI.Addr = defaultAddr
	}
	return c, nil
}

func dataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tetra-pdf")
	}
	return ".tetra-pdf"
}

func cachePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "tetra-pdf", "pages.db")
	}
	return ""
}
