// Package health checks bookmark URLs for dead links.
//
// URLs are checked in small fixed-size batches issued sequentially; within a
// batch the checks run concurrently. Each finished batch is streamed to the
// caller so partial progress is visible during long scans. A checker runs at
// most one scan at a time.
package health

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linkhoard/linkhoard/internal/model"
)

// Status classifies the outcome of checking one URL.
type Status int

const (
	Alive       Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, 5xx, auth walls
)

func (s Status) String() string {
	switch s {
	case Alive:
		return "alive"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check outcome for a single bookmark.
type Result struct {
	Bookmark   model.Bookmark
	Status     Status
	StatusCode int    // 0 when the connection itself failed
	Error      string // normalized message for unreachable URLs
}

// BatchFunc receives each finished batch plus overall progress.
type BatchFunc func(batch []Result, completed, total int)

// ErrCheckInProgress is returned when a scan is started while another one is
// still running on the same checker.
var ErrCheckInProgress = errors.New("health: check already in progress")

const batchSize = 5

// Checker runs link-health scans. Zero value is not usable; use NewChecker.
type Checker struct {
	client         *http.Client
	excludeDomains map[string]bool
	checking       atomic.Bool
}

// NewChecker creates a checker with the given per-request timeout.
// excludeDomains lists hosts whose 404s are reported as possibly-private
// instead of dead (auth-walled forges and the like).
func NewChecker(timeout time.Duration, excludeDomains []string) *Checker {
	exclude := make(map[string]bool, len(excludeDomains))
	for _, domain := range excludeDomains {
		exclude[strings.ToLower(domain)] = true
	}
	return &Checker{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		excludeDomains: exclude,
	}
}

// Check scans the given bookmarks in sequential batches, invoking onBatch
// after each batch completes. It returns ErrCheckInProgress if another scan
// is running, and the context error if ctx is done between batches.
func (c *Checker) Check(ctx context.Context, bookmarks []model.Bookmark, onBatch BatchFunc) ([]Result, error) {
	if !c.checking.CompareAndSwap(false, true) {
		return nil, ErrCheckInProgress
	}
	defer c.checking.Store(false)

	if len(bookmarks) == 0 {
		return nil, nil
	}

	// Suppress noisy http client logging (protocol errors, unsolicited
	// responses) for the duration of the scan.
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	results := make([]Result, 0, len(bookmarks))
	for start := 0; start < len(bookmarks); start += batchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := start + batchSize
		if end > len(bookmarks) {
			end = len(bookmarks)
		}

		batch := make([]Result, end-start)
		var wg sync.WaitGroup
		for i, b := range bookmarks[start:end] {
			wg.Add(1)
			go func(i int, b model.Bookmark) {
				defer wg.Done()
				batch[i] = c.checkOne(b)
			}(i, b)
		}
		wg.Wait()

		results = append(results, batch...)
		if onBatch != nil {
			onBatch(batch, len(results), len(bookmarks))
		}
	}
	return results, nil
}

// Checking reports whether a scan is currently running.
func (c *Checker) Checking() bool {
	return c.checking.Load()
}

func (c *Checker) checkOne(b model.Bookmark) Result {
	result := Result{Bookmark: b}

	// HEAD first; some servers reject it, so fall back to GET.
	resp, err := c.client.Head(b.URL)
	if err != nil {
		resp, err = c.client.Get(b.URL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Alive
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if c.isExcludedDomain(b.URL) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 5xx, 403 and friends: could be temporary or auth-walled.
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}
	return result
}

func (c *Checker) isExcludedDomain(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	if c.excludeDomains[host] {
		return true
	}
	for domain := range c.excludeDomains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError collapses verbose transport errors into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)
	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
