// Package classify suggests folders and tags for bookmarks via the Anthropic
// API. Bookmarks are sent in fixed-size chunks processed by a small worker
// pool; per-id suggestion maps merge commutatively, so arrival order does not
// matter.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/linkhoard/linkhoard/internal/model"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	betaHeader     = "structured-outputs-2025-11-13"
	haikuModel     = "claude-haiku-4-5-20251001"

	chunkSize = 20
	poolSize  = 3
)

var (
	ErrNoAPIKey        = errors.New("ANTHROPIC_API_KEY environment variable not set")
	ErrAPIRequest      = errors.New("API request failed")
	ErrInvalidResponse = errors.New("invalid API response")
)

// Suggestion is the suggested categorization for one bookmark.
type Suggestion struct {
	Folder string
	Tags   []string
}

// Client handles communication with the Anthropic API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a classification client.
// Returns an error if ANTHROPIC_API_KEY is not set.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Categorize suggests a folder and tags for every bookmark, keyed by id.
// storeContext is the taxonomy summary from BuildContext. Chunks that fail
// are reported through the joined error; suggestions from successful chunks
// are still returned.
func (c *Client) Categorize(ctx context.Context, bookmarks []model.Bookmark, storeContext string) (map[string]Suggestion, error) {
	if len(bookmarks) == 0 {
		return nil, nil
	}

	var chunks [][]model.Bookmark
	for start := 0; start < len(bookmarks); start += chunkSize {
		end := start + chunkSize
		if end > len(bookmarks) {
			end = len(bookmarks)
		}
		chunks = append(chunks, bookmarks[start:end])
	}

	merged := make(map[string]Suggestion)
	var mu sync.Mutex
	var errs []error

	jobs := make(chan []model.Bookmark, len(chunks))
	var wg sync.WaitGroup
	workers := poolSize
	if len(chunks) < workers {
		workers = len(chunks)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range jobs {
				suggestions, err := c.categorizeChunk(ctx, chunk, storeContext)
				mu.Lock()
				if err != nil {
					errs = append(errs, err)
				}
				for id, s := range suggestions {
					merged[id] = s
				}
				mu.Unlock()
			}
		}()
	}
	for _, chunk := range chunks {
		jobs <- chunk
	}
	close(jobs)
	wg.Wait()

	return merged, errors.Join(errs...)
}

func (c *Client) categorizeChunk(ctx context.Context, chunk []model.Bookmark, storeContext string) (map[string]Suggestion, error) {
	reqBody := apiRequest{
		Model:     haikuModel,
		MaxTokens: 4096,
		Messages: []apiMessage{
			{Role: "user", Content: buildCategorizePrompt(chunk, storeContext)},
		},
		OutputFormat: &outputFormat{
			Type: "json_schema",
			Schema: jsonSchema{
				Type: "object",
				Properties: map[string]schemaProp{
					"suggestions": {
						Type: "array",
						Items: &schemaProp{
							Type: "object",
							Properties: map[string]schemaProp{
								"id":         {Type: "string"},
								"folderPath": {Type: "string"},
								"tags":       {Type: "array", Items: &schemaProp{Type: "string"}},
							},
							Required:             []string{"id", "folderPath", "tags"},
							AdditionalProperties: false,
						},
					},
				},
				Required:             []string{"suggestions"},
				AdditionalProperties: false,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("anthropic-beta", betaHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIRequest, resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResp.Content) == 0 || apiResp.Content[0].Type != "text" {
		return nil, ErrInvalidResponse
	}

	var result categorizeResponse
	if err := json.Unmarshal([]byte(apiResp.Content[0].Text), &result); err != nil {
		return nil, fmt.Errorf("unmarshal suggestions: %w", err)
	}

	suggestions := make(map[string]Suggestion, len(result.Suggestions))
	for _, s := range result.Suggestions {
		suggestions[s.ID] = Suggestion{Folder: s.FolderPath, Tags: s.Tags}
	}
	return suggestions, nil
}

func buildCategorizePrompt(chunk []model.Bookmark, storeContext string) string {
	var sb bytes.Buffer
	sb.WriteString("Categorize these bookmarks into folders and suggest tags.\n\nBookmarks:\n")
	for _, b := range chunk {
		fmt.Fprintf(&sb, "- id: %s\n  title: %s\n  url: %s\n  folder: %s\n", b.ID, b.Title, b.URL, b.EffectiveFolder())
	}
	sb.WriteString("\n")
	sb.WriteString(storeContext)
	sb.WriteString(`

Instructions:
- Return one suggestion per bookmark id, every id exactly once
- Choose the most appropriate folder path from the available folders
- Prefer existing folders; only suggest a new folder path if nothing existing fits
- Suggest 1-3 relevant tags per bookmark, preferring existing tags when they fit
- Keep new tags lowercase and concise
- If a bookmark's current folder is already optimal, return it unchanged`)
	return sb.String()
}
