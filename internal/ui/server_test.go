// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/history"
	"github.com/pdiddy/tetra-pdf/internal/merge"
	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
	"github.com/pdiddy/tetra-pdf/internal/selection"
	"github.com/pdiddy/tetra-pdf/internal/testpdf"
	"github.com/pdiddy/tetra-pdf/pkg/types"
)

type harness struct {
	t      *testing.T
	router *gin.Engine
	sel    *selection.Selection
	dir    string
	outDir string
}

func newHarness(t *testing.T, withHistory bool) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	logger := zap.NewNop()

	cfg := types.Config{
		PDF:     types.PDFConfig{Validation: types.ValidationRelaxed},
		Merge:   types.MergeConfig{OutputDir: outDir},
		UI:      types.UIConfig{StartDir: dir},
		History: types.HistoryConfig{Enabled: withHistory, Dir: filepath.Join(dir, "history"), MaxResults: 10},
	}
	reader := pdfinfo.NewReader(cfg.PDF, nil, nil, logger)
	sel := selection.New(reader, logger)

	deps := Deps{
		Selection: sel,
		Previewer: reader,
		Merger:    merge.New(reader, cfg.Merge, logger),
		Config:    cfg,
		Logger:    logger,
	}
	if withHistory {
		store, err := history.NewStore(cfg.History)
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		deps.History = store
	}

	srv, err := New(deps)
	require.NoError(t, err)
	return &harness{t: t, router: srv.Handler(), sel: sel, dir: dir, outDir: outDir}
}

func (h *harness) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	h.t.Helper()
	return h.doWithHeaders(method, target, form, nil)
}

func (h *harness) doWithHeaders(method, target string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	h.t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) doc(method, target string, form url.Values) (*goquery.Document, int) {
	h.t.Helper()
	w := h.do(method, target, form)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(h.t, err)
	return doc, w.Code
}

func (h *harness) selectFiles(paths ...string) {
	h.t.Helper()
	w := h.do(http.MethodPost, "/select", url.Values{"path": paths})
	require.Equal(h.t, http.StatusSeeOther, w.Code)
	require.Equal(h.t, "/", w.Header().Get("Location"))
}

func (h *harness) banner() string {
	h.t.Helper()
	doc, _ := h.doc(http.MethodGet, "/", nil)
	return strings.TrimSpace(doc.Find("#banner").Text())
}

func (h *harness) names() []string {
	h.t.Helper()
	doc, _ := h.doc(http.MethodGet, "/", nil)
	var names []string
	doc.Find("tr.file td.name").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})
	return names
}

func TestHome_Empty(t *testing.T) {
	h := newHarness(t, false)
	doc, code := h.doc(http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, appTitle, doc.Find("title").Text())
	assert.Equal(t, "No files selected", doc.Find("#empty").Text())
	assert.Equal(t, 0, doc.Find("tr.file").Length())
	assert.Equal(t, 0, doc.Find("#banner").Length())
}

func TestSelect_ListsMetadata(t *testing.T) {
	h := newHarness(t, false)
	a := testpdf.Write(t, h.dir, "a.pdf", 2)
	b := testpdf.Write(t, h.dir, "b.pdf", 3)

	h.selectFiles(a, b)

	doc, _ := h.doc(http.MethodGet, "/", nil)
	assert.Equal(t, "Added 2 files", strings.TrimSpace(doc.Find("#banner").Text()))
	rows := doc.Find("tr.file")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "a.pdf", rows.Eq(0).Find("td.name").Text())
	assert.Equal(t, "2", rows.Eq(0).Find("td.pages").Text())
	assert.Equal(t, "3", rows.Eq(1).Find("td.pages").Text())
	assert.Equal(t, "2 files, 5 pages", doc.Find("#total").Text())

	// The banner is shown once.
	assert.Empty(t, h.banner())
}

func TestSelect_SkipsInvalid(t *testing.T) {
	h := newHarness(t, false)
	good := testpdf.Write(t, h.dir, "good.pdf", 1)
	bad := testpdf.WriteCorrupt(t, h.dir, "bad.pdf")

	h.selectFiles(good, bad)
	msg := h.banner()
	assert.Contains(t, msg, "Added 1 files; skipped 1 invalid")
	assert.Contains(t, msg, "bad.pdf (corrupted)")
	assert.Equal(t, []string{"good.pdf"}, h.names())
}

func TestSelect_NothingChecked(t *testing.T) {
	h := newHarness(t, false)
	h.selectFiles()
	assert.Equal(t, "No files provided", h.banner())
}

func TestRemoveAndMove(t *testing.T) {
	h := newHarness(t, false)
	a := testpdf.Write(t, h.dir, "a.pdf", 1)
	b := testpdf.Write(t, h.dir, "b.pdf", 1)
	c := testpdf.Write(t, h.dir, "c.pdf", 1)
	h.selectFiles(a, b, c)

	w := h.do(http.MethodPost, "/files/2/move?to=0", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"c.pdf", "a.pdf", "b.pdf"}, h.names())

	h.do(http.MethodPost, "/files/1/remove", nil)
	assert.Equal(t, []string{"c.pdf", "b.pdf"}, h.names())
	assert.Equal(t, []string{c, b}, h.sel.Paths())

	h.do(http.MethodPost, "/files/x/remove", nil)
	assert.Equal(t, "Invalid index", h.banner())

	h.do(http.MethodPost, "/files/7/remove", nil)
	assert.Equal(t, "Invalid index", h.banner())

	h.do(http.MethodPost, "/files/0/move?to=9", nil)
	assert.Equal(t, "Invalid indices", h.banner())

	h.do(http.MethodPost, "/clear", nil)
	assert.Equal(t, "Cleared 2 files", h.banner())
	assert.Empty(t, h.names())
}

func TestMerge_NothingSelected(t *testing.T) {
	h := newHarness(t, false)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := h.do(method, "/merge", url.Values{"output": {filepath.Join(h.outDir, "x.pdf")}})
		assert.Equal(t, http.StatusSeeOther, w.Code, method)
		assert.Equal(t, MsgNeedFiles, h.banner(), method)
	}
	_, err := os.Stat(h.outDir)
	assert.True(t, os.IsNotExist(err), "no output may be written")
}

func TestMerge_Flow(t *testing.T) {
	h := newHarness(t, true)
	a := testpdf.Write(t, h.dir, "a.pdf", 2)
	b := testpdf.Write(t, h.dir, "b.pdf", 3)
	h.selectFiles(a, b)

	doc, code := h.doc(http.MethodGet, "/merge", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, doc.Find("#inputs li").Length())
	assert.Equal(t, "5 pages in total", doc.Find("#total").Text())
	out, _ := doc.Find("#output").Attr("value")
	assert.Equal(t, filepath.Join(h.outDir, merge.DefaultFileName), out)

	target := filepath.Join(h.outDir, "combined")
	doc, code = h.doc(http.MethodPost, "/merge", url.Values{"output": {target}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "5", doc.Find("#pages").Text())
	assert.Equal(t, target+".pdf", doc.Find("#output").Text())
	assert.Contains(t, doc.Find("#banner").Text(), "Merged 2 PDFs to combined.pdf")

	_, err := os.Stat(target + ".pdf")
	require.NoError(t, err)

	doc, code = h.doc(http.MethodGet, "/history", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, doc.Find("tr.merge").Length())
}

func TestMerge_UnreadableInput(t *testing.T) {
	h := newHarness(t, true)
	a := testpdf.Write(t, h.dir, "a.pdf", 2)
	b := testpdf.Write(t, h.dir, "b.pdf", 1)
	h.selectFiles(a, b)

	// The file breaks after it was selected.
	require.NoError(t, os.WriteFile(b, []byte("garbage"), 0o644))

	target := filepath.Join(h.outDir, "broken.pdf")
	doc, code := h.doc(http.MethodPost, "/merge", url.Values{"output": {target}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, doc.Find("#reason").Text(), "Merge failed")
	assert.Contains(t, doc.Find("#reason").Text(), "b.pdf")

	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err), "no partial output")

	doc, _ = h.doc(http.MethodGet, "/history", nil)
	assert.Equal(t, 1, doc.Find("tr.merge").Length(), "failures are recorded too")
}

func TestView(t *testing.T) {
	h := newHarness(t, false)
	a := testpdf.Write(t, h.dir, "a.pdf", 2)
	h.selectFiles(a)

	doc, code := h.doc(http.MethodGet, "/view/0", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a.pdf", doc.Find("#name").Text())
	assert.Equal(t, "Page 1 of 2", doc.Find("#position").Text())
	assert.Equal(t, 1, doc.Find("#next").Length())
	assert.Equal(t, 0, doc.Find("#prev").Length())
	assert.Equal(t, 1, doc.Find("#text").Length())

	doc, _ = h.doc(http.MethodGet, "/view/0?page=2", nil)
	assert.Equal(t, "Page 2 of 2", doc.Find("#position").Text())
	assert.Equal(t, 0, doc.Find("#next").Length())
	assert.Equal(t, 1, doc.Find("#prev").Length())

	_, code = h.doc(http.MethodGet, "/view/0?page=9", nil)
	assert.Equal(t, http.StatusNotFound, code)

	w := h.do(http.MethodGet, "/view/3", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestThumb(t *testing.T) {
	h := newHarness(t, false)
	a := testpdf.Write(t, h.dir, "a.pdf", 4)
	h.selectFiles(a)

	w := h.do(http.MethodGet, "/thumb/0.png?w=64", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/thumb/1.png", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/thumb/x.png", nil).Code)
}

func TestPick(t *testing.T) {
	h := newHarness(t, false)
	testpdf.Write(t, h.dir, "a.pdf", 1)
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(h.dir, "sub"), 0o755))

	doc, code := h.doc(http.MethodGet, "/pick", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, h.dir, doc.Find("#dir").Text())
	assert.Equal(t, 1, doc.Find("tr.pdf").Length())
	assert.Equal(t, 1, doc.Find("tr.dir").Length())
	value, _ := doc.Find("tr.pdf input").Attr("value")
	assert.Equal(t, filepath.Join(h.dir, "a.pdf"), value)

	doc, code = h.doc(http.MethodGet, "/pick?dir="+url.QueryEscape(filepath.Join(h.dir, "missing")), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, doc.Find("#banner").Text(), "Cannot open folder")

	w := h.do(http.MethodGet, "/pick/cancel", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "Selection cancelled", h.banner())
}

func TestHistory_Disabled(t *testing.T) {
	h := newHarness(t, false)
	doc, code := h.doc(http.MethodGet, "/history", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, doc.Find("#disabled").Length())
}

func TestHelp(t *testing.T) {
	h := newHarness(t, false)
	doc, code := h.doc(http.MethodGet, "/help", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, appTitle, doc.Find("#help h1").Text())
	assert.Equal(t, 1, doc.Find("#help table").Length())
}

func TestHealthAndSelectionJSON(t *testing.T) {
	h := newHarness(t, false)
	a := testpdf.Write(t, h.dir, "a.pdf", 2)
	h.selectFiles(a)

	w := h.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 1, health["selected"])

	w = h.do(http.MethodGet, "/api/selection", nil)
	var body struct {
		Files      []types.FileEntry `json:"files"`
		TotalPages int               `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Files, 1)
	assert.Equal(t, 2, body.TotalPages)
}

func TestNew_RequiresComponents(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := pdfinfo.NewReader(types.PDFConfig{}, nil, nil, zap.NewNop())
	srv, err := New(Deps{
		Selection: selection.New(reader, nil),
		Previewer: reader,
		Merger:    merge.New(reader, types.MergeConfig{}, nil),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var status int
	go func() {
		done <- srv.Run(ctx, "127.0.0.1:0", func(base string) {
			resp, err := http.Get(base + "healthz")
			if err == nil {
				status = resp.StatusCode
				resp.Body.Close()
			}
			cancel()
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, http.StatusOK, status)
}

func TestCrossSiteRequestsRejected(t *testing.T) {
	h := newHarness(t, false)
	a := testpdf.Write(t, h.dir, "a.pdf", 1)
	form := url.Values{"path": {a}}

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"foreign origin", map[string]string{"Origin": "http://evil.example"}, http.StatusForbidden},
		{"opaque origin", map[string]string{"Origin": "null"}, http.StatusForbidden},
		{"cross-site fetch metadata", map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusForbidden},
		{"same-site other port", map[string]string{"Sec-Fetch-Site": "same-site"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.doWithHeaders(http.MethodPost, "/select", form, tt.headers)
			assert.Equal(t, tt.want, w.Code)
			assert.Zero(t, h.sel.Count())
		})
	}

	w := h.doWithHeaders(http.MethodPost, "/merge", url.Values{"output": {filepath.Join(h.dir, "evil.pdf")}},
		map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoFileExists(t, filepath.Join(h.dir, "evil.pdf"))

	// The UI's own form posts carry its origin.
	w = h.doWithHeaders(http.MethodPost, "/select", form, map[string]string{
		"Origin":         "http://example.com",
		"Sec-Fetch-Site": "same-origin",
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, h.sel.Count())
}

func TestMerge_ExcludesRemovedFile(t *testing.T) {
	h := newHarness(t, false)
	a := testpdf.Write(t, h.dir, "a.pdf", 1)
	b := testpdf.Write(t, h.dir, "b.pdf", 2)
	c := testpdf.Write(t, h.dir, "c.pdf", 4)
	h.selectFiles(a, b, c)

	w := h.do(http.MethodPost, "/files/1/remove", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, []string{"a.pdf", "c.pdf"}, h.names())

	target := filepath.Join(h.outDir, "ac.pdf")
	doc, code := h.doc(http.MethodPost, "/merge", url.Values{"output": {target}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "5", doc.Find("#pages").Text())

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	n, err := api.PageCount(f, pdfinfo.NewConfiguration(types.ValidationRelaxed, ""))
	require.NoError(t, err)
	assert.Equal(t, 5, n, "pages of a.pdf and c.pdf only")
}
