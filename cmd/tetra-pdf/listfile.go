// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// listFile is a saved file selection for merge --list.
//
//	output: merged.pdf
//	files:
//	  - chapter1.pdf
//	  - chapter2.pdf
type listFile struct {
	Output string   `yaml:"output"`
	Files  []string `yaml:"files"`
}

// readListFile parses path. Relative entries are resolved against the
// directory holding the list.
func readListFile(path string) (listFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return listFile{}, fmt.Errorf("reading list file: %w", err)
	}

	var lf listFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return listFile{}, fmt.Errorf("parsing list file %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, f := range lf.Files {
		if !filepath.IsAbs(f) {
			lf.Files[i] = filepath.Join(base, f)
		}
	}
	if lf.Output != "" && !filepath.IsAbs(lf.Output) {
		lf.Output = filepath.Join(base, lf.Output)
	}
	return lf, nil
}
