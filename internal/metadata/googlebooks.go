package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// BookMetadata contains descriptive book information from an external source.
// Any subset of fields may be empty; partial data is still a successful lookup.
type BookMetadata struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Pages  int    `json:"pages,omitempty"`
}

// Provider fetches book metadata by ISBN. Lookups are best effort: callers
// must treat failures as degrading the record, never as aborting the mutation
// that triggered them.
type Provider interface {
	LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error)
}

// GoogleBooksClient fetches book metadata from the Google Books volumes API.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewGoogleBooksClient creates a new Google Books API client with rate limiting.
func NewGoogleBooksClient(baseURL string, timeout time.Duration) *GoogleBooksClient {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/books/v1"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleBooksClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: newRateLimiter(time.Second), // 1 request per second
	}
}

// LookupISBN queries the volumes endpoint for a single ISBN and extracts the
// first matching volume's descriptive fields.
func (c *GoogleBooksClient) LookupISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = NormalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	c.rateLimiter.wait()

	lookupURL := fmt.Sprintf("%s/volumes?q=%s", c.baseURL, url.QueryEscape("isbn:"+isbn))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Librarium/1.0 (https://github.com/avolkov/librarium)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ISBN data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result volumesResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return nil, fmt.Errorf("ISBN not found: %s", isbn)
	}

	return convertVolume(&result.Items[0].VolumeInfo, isbn), nil
}

func convertVolume(info *volumeInfo, isbn string) *BookMetadata {
	md := &BookMetadata{
		ISBN:  isbn,
		Title: info.Title,
		Pages: info.PageCount,
	}
	if len(info.Authors) > 0 {
		md.Author = strings.Join(info.Authors, ", ")
	}
	if len(info.Categories) > 0 {
		md.Genre = info.Categories[0]
	}
	return md
}

// NormalizeISBN removes hyphens and spaces and rejects anything that is not a
// 10- or 13-digit identifier.
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	for i, r := range isbn {
		if r >= '0' && r <= '9' {
			continue
		}
		// ISBN-10 check digit may be X.
		if len(isbn) == 10 && i == 9 && (r == 'X' || r == 'x') {
			continue
		}
		return ""
	}

	return isbn
}

// Google Books API response types (internal)

type volumesResult struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Categories []string `json:"categories"`
	PageCount  int      `json:"pageCount"`
	Publisher  string   `json:"publisher"`
}
