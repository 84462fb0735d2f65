// Package exporter serializes bookmarks back to Netscape bookmark HTML.
// Flat folder-path records are regrouped into the nested folder structure
// browsers expect on import.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linkhoard/linkhoard/internal/model"
)

// DefaultExportPath returns ~/Downloads/bookmarks-export-YYYY-MM-DD.html.
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// node is one folder level of the rebuilt hierarchy. Child order and
// bookmark order follow first appearance in the input.
type node struct {
	children   map[string]*node
	childOrder []string
	bookmarks  []model.Bookmark
}

func newNode() *node {
	return &node{children: map[string]*node{}}
}

func (n *node) child(name string) *node {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := newNode()
	n.children[name] = c
	n.childOrder = append(n.childOrder, name)
	return c
}

// ExportHTML serializes the bookmarks to Netscape bookmark HTML, nesting
// each record under its effective folder path.
func ExportHTML(bookmarks []model.Bookmark) string {
	root := newNode()
	for _, b := range bookmarks {
		cur := root
		for _, segment := range model.SplitFolderPath(b.EffectiveFolder()) {
			cur = cur.child(segment)
		}
		cur.bookmarks = append(cur.bookmarks, b)
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	sb.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	sb.WriteString("<TITLE>Bookmarks</TITLE>\n")
	sb.WriteString("<H1>Bookmarks</H1>\n")
	sb.WriteString("<DL><p>\n")
	writeNode(&sb, root, 1)
	sb.WriteString("</DL><p>\n")
	return sb.String()
}

func writeNode(sb *strings.Builder, n *node, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, name := range n.childOrder {
		fmt.Fprintf(sb, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(name))
		fmt.Fprintf(sb, "%s<DL><p>\n", prefix)
		writeNode(sb, n.children[name], indent+1)
		fmt.Fprintf(sb, "%s</DL><p>\n", prefix)
	}

	for _, b := range n.bookmarks {
		fmt.Fprintf(sb, "%s<DT><A HREF=\"%s\"", prefix, html.EscapeString(b.URL))
		if b.AddDate > 0 {
			fmt.Fprintf(sb, " ADD_DATE=\"%d\"", b.AddDate)
		}
		if len(b.Tags) > 0 {
			fmt.Fprintf(sb, " TAGS=\"%s\"", html.EscapeString(b.Tags.String()))
		}
		fmt.Fprintf(sb, ">%s</A>\n", html.EscapeString(b.Title))
	}
}
