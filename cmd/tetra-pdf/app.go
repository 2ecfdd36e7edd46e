// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/history"
	"github.com/pdiddy/tetra-pdf/internal/merge"
	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
)

// components wires the reader, merger and optional stores for one command.
type components struct {
	reader  *pdfinfo.Reader
	merger  *merge.Merger
	cache   *pdfinfo.Cache
	history *history.Store
}

// openComponents builds the shared components from cfg. The page-count
// cache is best effort; history is opened only when withHistory is set and
// history is enabled.
func openComponents(withHistory bool) (*components, error) {
	c := &components{}

	if cfg.Cache.Path != "" {
		cache, err := pdfinfo.OpenCache(cfg.Cache.Path)
		if err != nil {
			logger.Warn("page-count cache unavailable", zap.String("path", cfg.Cache.Path), zap.Error(err))
		} else {
			c.cache = cache
		}
	}

	c.reader = pdfinfo.NewReader(cfg.PDF, loadedSecrets, c.cache, logger)
	c.merger = merge.New(c.reader, cfg.Merge, logger)

	if withHistory && cfg.History.Enabled {
		store, err := history.NewStore(cfg.History)
		if err != nil {
			c.close()
			return nil, err
		}
		c.history = store
	}
	return c, nil
}

func (c *components) close() error {
	var errs []error
	if c.history != nil {
		errs = append(errs, c.history.Close())
	}
	errs = append(errs, c.cache.Close())
	return errors.Join(errs...)
}
