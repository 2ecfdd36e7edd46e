// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
)

const appTitle = "Tetra PDF Utility Tool"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed help.md
var helpMarkdown []byte

var pageNames = []string{"main", "pick", "confirm", "result", "view", "history", "help"}

var funcs = template.FuncMap{
	"size": pdfinfo.FormatSize,
	"inc":  func(i int) int { return i + 1 },
	"dec":  func(i int) int { return i - 1 },
	"base": filepath.Base,
	"when": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
}

// parsePages builds one template set per screen, each combining the shared
// layout with the screen's content block.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func renderHelp() (template.HTML, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(helpMarkdown, &buf); err != nil {
		return "", fmt.Errorf("rendering help: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// render writes the named screen. The status banner set by the previous
// action is consumed here.
func (s *Server) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["AppTitle"] = appTitle
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = s.takeFlash()
	}
	c.Render(status, render.HTML{Template: s.pages[page], Name: "layout", Data: data})
}
