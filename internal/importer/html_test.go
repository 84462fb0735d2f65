package importer_test

import (
	"strings"
	"testing"

	"github.com/linkhoard/linkhoard/internal/importer"
)

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	bookmarks, folders, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(folders) != 0 {
		t.Errorf("expected 0 folders, got %d", len(folders))
	}
	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(bookmarks))
	}

	b := bookmarks[0]
	if b.Title != "Example Site" {
		t.Errorf("title = %q", b.Title)
	}
	if b.URL != "https://example.com" {
		t.Errorf("url = %q", b.URL)
	}
	if b.OriginalFolder != "" {
		t.Errorf("expected empty folder for root bookmark, got %q", b.OriginalFolder)
	}
	if b.AddDate != 1234567890 {
		t.Errorf("addDate = %d", b.AddDate)
	}
	if b.ID == "" {
		t.Error("expected non-empty ID")
	}
}

func TestParseHTML_NestedFoldersFlattenToPaths(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

	bookmarks, folders, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFolders := []string{"Development", "Development > React"}
	if len(folders) != len(wantFolders) {
		t.Fatalf("got %d folders, want %d", len(folders), len(wantFolders))
	}
	for i, want := range wantFolders {
		if folders[i].Name != want {
			t.Errorf("folders[%d] = %q, want %q", i, folders[i].Name, want)
		}
		if folders[i].Order != i {
			t.Errorf("folders[%d].Order = %d, want %d", i, folders[i].Order, i)
		}
	}

	wantPaths := map[string]string{
		"React Docs": "Development > React",
		"GitHub":     "Development",
		"Google":     "",
	}
	if len(bookmarks) != len(wantPaths) {
		t.Fatalf("got %d bookmarks, want %d", len(bookmarks), len(wantPaths))
	}
	for _, b := range bookmarks {
		if b.OriginalFolder != wantPaths[b.Title] {
			t.Errorf("%s: folder = %q, want %q", b.Title, b.OriginalFolder, wantPaths[b.Title])
		}
	}
}

func TestParseHTML_EmptyFile(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
</DL><p>`

	bookmarks, folders, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(folders) != 0 || len(bookmarks) != 0 {
		t.Errorf("expected empty result, got %d folders %d bookmarks", len(folders), len(bookmarks))
	}
}

func TestParseHTML_MissingHref(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A ADD_DATE="1234567890">No URL</A>
    <DT><A HREF="https://valid.com" ADD_DATE="1234567890">Valid</A>
</DL><p>`

	bookmarks, _, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark (skip missing href), got %d", len(bookmarks))
	}
	if bookmarks[0].Title != "Valid" {
		t.Errorf("title = %q", bookmarks[0].Title)
	}
}

func TestParseHTML_TitleFallsBackToURL(t *testing.T) {
	html := `<DL><p>
    <DT><A HREF="https://example.com"></A>
</DL><p>`

	bookmarks, _, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookmarks) != 1 || bookmarks[0].Title != "https://example.com" {
		t.Errorf("bookmarks = %+v", bookmarks)
	}
}

func TestParseHTML_TagsAttribute(t *testing.T) {
	html := `<DL><p>
    <DT><A HREF="https://example.com" TAGS="go, web">Example</A>
</DL><p>`

	bookmarks, _, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("got %d bookmarks", len(bookmarks))
	}
	tags := bookmarks[0].Tags
	if !tags.Contains("go") || !tags.Contains("web") || len(tags) != 2 {
		t.Errorf("tags = %v", tags)
	}
}
