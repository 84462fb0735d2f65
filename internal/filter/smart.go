package filter

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/linkhoard/linkhoard/internal/model"
)

// Smart names a fixed predicate over bookmark heuristics.
type Smart string

const (
	SmartOld      Smart = "old"      // added more than staleAfter ago
	SmartHTTP     Smart = "http"     // insecure scheme
	SmartUntitled Smart = "untitled" // empty, placeholder, or URL-echoing title
	SmartDocs     Smart = "docs"     // document file extension or docs host
	SmartLongURL  Smart = "longurl"  // URL length >= longURLMin
	SmartMedia    Smart = "media"
	SmartSocial   Smart = "social"
	SmartShopping Smart = "shopping"
	SmartNews     Smart = "news"
)

// AllSmart lists the nine smart filters in display order.
var AllSmart = []Smart{
	SmartOld, SmartHTTP, SmartUntitled, SmartDocs, SmartLongURL,
	SmartMedia, SmartSocial, SmartShopping, SmartNews,
}

const (
	staleAfter = 5 * 365 * 24 * time.Hour
	longURLMin = 200
)

var docExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".txt": true, ".md": true, ".epub": true,
	".csv": true, ".rtf": true,
}

// Catalog evaluates smart filters against a set of category domain lists.
// DefaultCatalog ships the built-in lists; config may override per category.
type Catalog struct {
	domains map[Smart][]string
}

// DefaultCatalog returns the catalog with the built-in domain lists.
func DefaultCatalog() Catalog {
	return Catalog{domains: map[Smart][]string{
		SmartDocs: {
			"docs.google.com", "notion.so", "readthedocs.io", "gitbook.io",
			"confluence.com", "drive.google.com",
		},
		SmartMedia: {
			"youtube.com", "youtu.be", "vimeo.com", "twitch.tv",
			"spotify.com", "soundcloud.com", "netflix.com",
		},
		SmartSocial: {
			"twitter.com", "x.com", "facebook.com", "instagram.com",
			"reddit.com", "linkedin.com", "tiktok.com", "mastodon.social",
		},
		SmartShopping: {
			"amazon.com", "ebay.com", "etsy.com", "aliexpress.com",
			"walmart.com", "target.com",
		},
		SmartNews: {
			"nytimes.com", "theguardian.com", "bbc.co.uk", "cnn.com",
			"washingtonpost.com", "reuters.com", "bloomberg.com",
		},
	}}
}

// WithDomains returns a copy of the catalog with the given category's domain
// list replaced.
func (c Catalog) WithDomains(category Smart, domains []string) Catalog {
	merged := make(map[Smart][]string, len(c.domains))
	for k, v := range c.domains {
		merged[k] = v
	}
	merged[category] = domains
	return Catalog{domains: merged}
}

// Match reports whether the bookmark satisfies the smart filter at time now.
func (c Catalog) Match(b model.Bookmark, s Smart, now time.Time) bool {
	switch s {
	case SmartOld:
		return b.AddDate > 0 && time.Unix(b.AddDate, 0).Before(now.Add(-staleAfter))
	case SmartHTTP:
		return strings.HasPrefix(strings.ToLower(b.URL), "http://")
	case SmartUntitled:
		return isUntitled(b)
	case SmartDocs:
		return isDoc(b.URL) || c.hostInList(b.URL, SmartDocs)
	case SmartLongURL:
		return len(b.URL) >= longURLMin
	case SmartMedia, SmartSocial, SmartShopping, SmartNews:
		return c.hostInList(b.URL, s)
	default:
		return false
	}
}

// BySmart keeps the bookmarks matching the smart filter.
func (c Catalog) BySmart(bookmarks []model.Bookmark, s Smart, now time.Time) []model.Bookmark {
	if s == "" {
		return bookmarks
	}
	var out []model.Bookmark
	for _, b := range bookmarks {
		if c.Match(b, s, now) {
			out = append(out, b)
		}
	}
	return out
}

// Counts computes the nine smart-filter counts over the whole set.
func (c Catalog) Counts(bookmarks []model.Bookmark, now time.Time) map[Smart]int {
	counts := make(map[Smart]int, len(AllSmart))
	for _, s := range AllSmart {
		counts[s] = 0
	}
	for _, b := range bookmarks {
		for _, s := range AllSmart {
			if c.Match(b, s, now) {
				counts[s]++
			}
		}
	}
	return counts
}

func isUntitled(b model.Bookmark) bool {
	title := strings.TrimSpace(b.Title)
	if title == "" {
		return true
	}
	lower := strings.ToLower(title)
	if lower == "untitled" || lower == "no title" || lower == "new tab" {
		return true
	}
	return title == b.URL
}

func isDoc(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return docExtensions[strings.ToLower(path.Ext(parsed.Path))]
}

// hostInList matches the URL's host against a category list, accepting the
// domain itself and its subdomains. Unparseable URLs never match.
func (c Catalog) hostInList(rawURL string, category Smart) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	for _, domain := range c.domains[category] {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
