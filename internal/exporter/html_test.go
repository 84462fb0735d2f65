package exporter_test

import (
	"strings"
	"testing"

	"gotest.tools/v3/golden"

	"github.com/linkhoard/linkhoard/internal/exporter"
	"github.com/linkhoard/linkhoard/internal/importer"
	"github.com/linkhoard/linkhoard/internal/model"
)

func TestExportHTML_Empty(t *testing.T) {
	html := exporter.ExportHTML(nil)

	for _, want := range []string{
		"<!DOCTYPE NETSCAPE-Bookmark-file-1>",
		"<TITLE>Bookmarks</TITLE>",
		"<H1>Bookmarks</H1>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestExportHTML_Golden(t *testing.T) {
	bookmarks := []model.Bookmark{
		{
			ID:             "b1",
			Title:          "React Docs",
			URL:            "https://react.dev",
			OriginalFolder: "Development > React",
			AddDate:        1234567890,
		},
		{
			ID:             "b2",
			Title:          "GitHub",
			URL:            "https://github.com",
			OriginalFolder: "Development",
			AddDate:        1700000000,
			Tags:           model.NewTagSet("go", "git"),
		},
		{
			ID:    "b3",
			Title: "Google",
			URL:   "https://google.com",
		},
	}

	golden.Assert(t, exporter.ExportHTML(bookmarks), "golden/export.golden")
}

func TestExportHTML_NewFolderWinsOverOriginal(t *testing.T) {
	html := exporter.ExportHTML([]model.Bookmark{{
		ID:             "b1",
		Title:          "Moved",
		URL:            "https://example.com",
		OriginalFolder: "Inbox",
		NewFolder:      "Archive > 2020",
	}})

	if strings.Contains(html, "Inbox</H3>") {
		t.Error("original folder should not appear for a moved bookmark")
	}
	archiveIdx := strings.Index(html, "Archive</H3>")
	yearIdx := strings.Index(html, "2020</H3>")
	bookmarkIdx := strings.Index(html, "Moved</A>")
	if archiveIdx == -1 || yearIdx == -1 || bookmarkIdx == -1 {
		t.Fatalf("missing elements in output:\n%s", html)
	}
	if archiveIdx >= yearIdx || yearIdx >= bookmarkIdx {
		t.Error("expected nesting order Archive > 2020 > Moved")
	}
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	html := exporter.ExportHTML([]model.Bookmark{{
		ID:    "b1",
		Title: "Test <script>alert('xss')</script>",
		URL:   "https://example.com?foo=bar&baz=qux",
	}})

	if strings.Contains(html, "<script>") {
		t.Error("script tag should be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped script tag")
	}
	if strings.Contains(html, "foo=bar&baz") {
		t.Error("ampersand should be escaped in URL")
	}
	if !strings.Contains(html, "foo=bar&amp;baz") {
		t.Error("expected escaped ampersand in URL")
	}
}

func TestExportHTML_RoundTripsThroughImporter(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: "b1", Title: "GitHub", URL: "https://github.com", OriginalFolder: "Dev", AddDate: 1700000000},
		{ID: "b2", Title: "Google", URL: "https://google.com"},
	}

	// Re-parse our own output; the flat paths must survive.
	html := exporter.ExportHTML(bookmarks)
	reparsed, folders, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(reparsed) != 2 {
		t.Fatalf("got %d bookmarks after round trip", len(reparsed))
	}
	if reparsed[0].OriginalFolder != "Dev" || reparsed[0].AddDate != 1700000000 {
		t.Errorf("first bookmark = %+v", reparsed[0])
	}
	if len(folders) != 1 || folders[0].Name != "Dev" {
		t.Errorf("folders = %+v", folders)
	}
}
