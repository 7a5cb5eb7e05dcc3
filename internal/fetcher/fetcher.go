// Package fetcher loads the rows of remote screens from http(s) or file URLs.
// file: internal/fetcher/fetcher.go
package fetcher

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"GestionBC/internal/tableview"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response is quoted back.
const maxErrorBody = 512

// Credentials are passed explicitly with every fetch; nothing is read from
// ambient state.
type Credentials struct {
	Token string
}

// Fetcher opens the content of a URL for one scheme family.
type Fetcher interface {
	// SupportsScheme reports whether the fetcher handles scheme ("http", "https", "file").
	SupportsScheme(scheme string) bool
	// Fetch opens the resource; the caller closes it.
	Fetch(ctx context.Context, sourceURL *url.URL, creds Credentials) (io.ReadCloser, error)
}

// HTTPFetcher =============================================================================
//
//	HTTP/HTTPS fetcher
//
// =============================================================================
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) SupportsScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

func (f *HTTPFetcher) Fetch(ctx context.Context, sourceURL *url.URL, creds Credentials) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("HTTP request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

// FileFetcher =============================================================================
//
//	local file fetcher
//
// =============================================================================
type FileFetcher struct{}

func (f *FileFetcher) SupportsScheme(scheme string) bool {
	return scheme == "file"
}

func (f *FileFetcher) Fetch(_ context.Context, sourceURL *url.URL, _ Credentials) (io.ReadCloser, error) {
	return os.Open(resolveLocalFilePath(sourceURL))
}

// resolveLocalFilePath turns a file URL into a local path, dropping the leading
// separator before a Windows drive letter.
func resolveLocalFilePath(u *url.URL) string {
	path := filepath.FromSlash(u.Path)
	if len(path) > 2 && path[0] == filepath.Separator && path[2] == ':' {
		path = path[1:]
	}
	return filepath.Clean(path)
}

// Remote fetches and decodes the rows of URL-sourced screens.
type Remote struct {
	fetchers     []Fetcher
	defaultToken string
}

// NewRemote builds a Remote with the HTTP and file fetchers. defaultToken is used for
// sources that carry no token of their own.
func NewRemote(timeout time.Duration, defaultToken string) *Remote {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Remote{
		fetchers: []Fetcher{
			&HTTPFetcher{Client: &http.Client{Timeout: timeout}},
			&FileFetcher{},
		},
		defaultToken: defaultToken,
	}
}

// NewRemoteWith uses the given fetchers; mostly for tests.
func NewRemoteWith(defaultToken string, fetchers ...Fetcher) *Remote {
	return &Remote{fetchers: fetchers, defaultToken: defaultToken}
}

// Rows loads the source of a screen. Every failure wraps port.ErrFetchFailed.
func (r *Remote) Rows(ctx context.Context, src domain.ScreenSource) ([]tableview.Row, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %q: %v", port.ErrFetchFailed, src.URL, err)
	}
	var chosen Fetcher
	for _, f := range r.fetchers {
		if f.SupportsScheme(u.Scheme) {
			chosen = f
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: unsupported scheme %q", port.ErrFetchFailed, u.Scheme)
	}

	creds := Credentials{Token: src.Token}
	if creds.Token == "" {
		creds.Token = r.defaultToken
	}
	body, err := chosen.Fetch(ctx, u, creds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrFetchFailed, err)
	}
	defer body.Close()

	rows, err := DecodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrFetchFailed, err)
	}
	return rows, nil
}

// DecodeRows accepts a JSON array of objects, or an object wrapping one under "data".
func DecodeRows(r io.Reader) ([]tableview.Row, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
		if len(envelope.Data) == 0 {
			return nil, fmt.Errorf("decode JSON: object without a data array")
		}
		raw = envelope.Data
	}

	var rows []tableview.Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode JSON: expected an array of objects: %w", err)
	}
	if rows == nil {
		rows = []tableview.Row{}
	}
	return rows, nil
}
