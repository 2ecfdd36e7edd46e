// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ui

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/merge"
	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
	"github.com/pdiddy/tetra-pdf/internal/picker"
	"github.com/pdiddy/tetra-pdf/internal/thumbnail"
	"github.com/pdiddy/tetra-pdf/pkg/types"
)

// MsgNeedFiles is shown when a merge is requested with nothing selected.
const MsgNeedFiles = "Need at least 1 file to merge"

const maxThumbWidth = 512

func (s *Server) home(c *gin.Context) {
	sel := s.deps.Selection
	s.render(c, http.StatusOK, "main", gin.H{
		"Entries":    sel.Entries(),
		"TotalPages": sel.TotalPages(),
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "selected": s.deps.Selection.Count()})
}

func (s *Server) selectionJSON(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"files":       s.deps.Selection.Entries(),
		"total_pages": s.deps.Selection.TotalPages(),
	})
}

func (s *Server) pick(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		dir = picker.StartDir(s.deps.Config.UI.StartDir)
	}
	listing, err := picker.List(dir)
	if err != nil {
		s.logger.Warn("listing directory", zap.String("dir", dir), zap.Error(err))
		s.render(c, http.StatusOK, "pick", gin.H{
			"Listing": picker.Listing{Dir: dir, Parent: filepath.Dir(dir)},
			"Flash":   &types.Response{Status: types.StatusError, Message: "Cannot open folder: " + listReason(err)},
		})
		return
	}
	s.render(c, http.StatusOK, "pick", gin.H{"Listing": listing})
}

func listReason(err error) string {
	if errors.Is(err, picker.ErrPermission) {
		return "permission denied"
	}
	return pdfinfo.Reason(err)
}

func (s *Server) cancelPick(c *gin.Context) {
	s.setFlash(types.Response{Status: types.StatusCancelled, Message: "Selection cancelled"})
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) selectFiles(c *gin.Context) {
	paths := c.PostFormArray("path")
	resp := s.deps.Selection.Add(c.Request.Context(), paths...)
	s.setFlash(resp)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) removeFile(c *gin.Context) {
	index, ok := s.index(c)
	if !ok {
		return
	}
	s.setFlash(s.deps.Selection.Remove(index))
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) moveFile(c *gin.Context) {
	index, ok := s.index(c)
	if !ok {
		return
	}
	to, err := strconv.Atoi(c.DefaultQuery("to", c.PostForm("to")))
	if err != nil {
		s.setFlash(types.Response{Status: types.StatusError, Message: "Invalid indices"})
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.setFlash(s.deps.Selection.Move(index, to))
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) clearFiles(c *gin.Context) {
	s.setFlash(s.deps.Selection.Clear())
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) confirmMerge(c *gin.Context) {
	sel := s.deps.Selection
	if sel.Count() == 0 {
		s.needFiles(c)
		return
	}
	s.render(c, http.StatusOK, "confirm", gin.H{
		"Entries":    sel.Entries(),
		"TotalPages": sel.TotalPages(),
		"Output":     merge.DefaultOutputPath(s.deps.Config.Merge.OutputDir),
	})
}

func (s *Server) runMerge(c *gin.Context) {
	sel := s.deps.Selection
	if sel.Count() == 0 {
		s.needFiles(c)
		return
	}
	output := strings.TrimSpace(c.PostForm("output"))
	if output == "" {
		output = merge.DefaultOutputPath(s.deps.Config.Merge.OutputDir)
	}

	ctx := c.Request.Context()
	result, err := s.deps.Merger.Merge(ctx, sel.Paths(), output)
	if err != nil {
		s.logger.Warn("merge failed", zap.String("output", output), zap.Error(err))
	}
	if s.deps.History != nil {
		if herr := s.deps.History.Record(ctx, result); herr != nil {
			s.logger.Warn("recording merge", zap.String("id", result.ID), zap.Error(herr))
		}
	}

	status := http.StatusOK
	flash := &types.Response{Status: types.StatusSuccess, Message: result.Message}
	if err != nil {
		status = http.StatusUnprocessableEntity
		flash = &types.Response{Status: types.StatusError, Message: result.Message}
	}
	s.render(c, status, "result", gin.H{"Result": result, "Flash": flash})
}

func (s *Server) needFiles(c *gin.Context) {
	s.setFlash(types.Response{Status: types.StatusError, Message: MsgNeedFiles})
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) view(c *gin.Context) {
	index, ok := s.index(c)
	if !ok {
		return
	}
	entry, ok := s.deps.Selection.Entry(index)
	if !ok {
		s.setFlash(types.Response{Status: types.StatusError, Message: "Invalid index"})
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil {
		page = p
	}
	prev, err := s.deps.Previewer.Preview(c.Request.Context(), entry.Path, page)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, pdfinfo.ErrPageRange) {
			status = http.StatusNotFound
		}
		s.render(c, status, "view", gin.H{
			"Index": index,
			"Entry": entry,
			"Flash": &types.Response{Status: types.StatusError, Message: fmt.Sprintf("Cannot show page %d: %s", page, pdfinfo.Reason(err))},
		})
		return
	}
	s.render(c, http.StatusOK, "view", gin.H{"Index": index, "Entry": entry, "Preview": prev})
}

func (s *Server) thumb(c *gin.Context) {
	raw := strings.TrimSuffix(c.Param("file"), ".png")
	index, err := strconv.Atoi(raw)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	entry, ok := s.deps.Selection.Entry(index)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	width := thumbnail.DefaultWidth
	if w, err := strconv.Atoi(c.Query("w")); err == nil && w <= maxThumbWidth {
		width = w
	}
	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "no-store")
	if err := thumbnail.EncodePNG(c.Writer, thumbnail.Render(entry, width)); err != nil {
		s.logger.Warn("encoding thumbnail", zap.Int("index", index), zap.Error(err))
	}
}

func (s *Server) historyPage(c *gin.Context) {
	if s.deps.History == nil {
		s.render(c, http.StatusOK, "history", gin.H{"Disabled": true})
		return
	}
	results, err := s.deps.History.Recent(c.Request.Context(), s.deps.Config.History.MaxResults)
	if err != nil {
		s.logger.Warn("listing history", zap.Error(err))
		s.render(c, http.StatusInternalServerError, "history", gin.H{
			"Flash": &types.Response{Status: types.StatusError, Message: "Cannot read history"},
		})
		return
	}
	s.render(c, http.StatusOK, "history", gin.H{"Results": results})
}

func (s *Server) helpPage(c *gin.Context) {
	s.render(c, http.StatusOK, "help", gin.H{"Body": s.help})
}

// index parses the :index path parameter; on failure it redirects home
// with an error banner.
func (s *Server) index(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		s.setFlash(types.Response{Status: types.StatusError, Message: "Invalid index"})
		c.Redirect(http.StatusSeeOther, "/")
		return 0, false
	}
	return i, true
}
