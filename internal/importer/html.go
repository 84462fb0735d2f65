// Package importer parses Netscape bookmark HTML exports into flat bookmark
// records. Folder hierarchy is flattened into the originalFolder path with
// segments joined by the canonical separator.
package importer

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/linkhoard/linkhoard/internal/model"
)

// ParseHTML parses Netscape bookmark HTML and returns the bookmarks plus the
// folder taxonomy entries discovered along the way, in document order.
func ParseHTML(r io.Reader) ([]model.Bookmark, []model.Folder, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, err
	}

	var bookmarks []model.Bookmark
	var folders []model.Folder
	seenFolders := make(map[string]bool)

	// Current folder path segments; pendingFolder is an H3 name waiting for
	// its DL to open.
	var path []string
	var pendingFolder string
	havePending := false

	recordFolder := func(p []string) {
		name := model.JoinFolderPath(p)
		if name == "" || seenFolders[name] {
			return
		}
		seenFolders[name] = true
		folders = append(folders, model.NewFolder(name, len(folders)))
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				if name := textContent(n); name != "" {
					pendingFolder = name
					havePending = true
				}
				return

			case "a":
				href := attr(n, "href")
				if href == "" {
					return
				}
				title := textContent(n)
				if title == "" {
					title = href
				}

				params := model.NewBookmarkParams{
					URL:            href,
					Title:          title,
					OriginalFolder: model.JoinFolderPath(path),
				}
				if raw := attr(n, "add_date"); raw != "" {
					if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
						params.AddDate = ts
					}
				}
				if raw := attr(n, "tags"); raw != "" {
					params.Tags = []string{raw}
				}
				bookmarks = append(bookmarks, model.NewBookmark(params))
				return

			case "dl":
				pushed := false
				if havePending {
					path = append(path, pendingFolder)
					havePending = false
					pushed = true
					recordFolder(path)
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pushed {
					path = path[:len(path)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return bookmarks, folders, nil
}

func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// attr returns the value of an attribute, matched case-insensitively.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
