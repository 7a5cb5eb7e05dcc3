// file: internal/fetcher/fetcher_test.go
package fetcher

import (
	"GestionBC/internal/core/domain"
	"GestionBC/internal/core/port"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
//  HTTPFetcher Tests
// ============================================================================

func TestHTTPFetcher_SupportsScheme(t *testing.T) {
	f := &HTTPFetcher{}
	testCases := []struct {
		scheme   string
		expected bool
	}{
		{"http", true},
		{"https", true},
		{"file", false},
		{"ftp", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.scheme, func(t *testing.T) {
			assert.Equal(t, tc.expected, f.SupportsScheme(tc.scheme))
		})
	}
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Run("sends explicit bearer credentials", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		f := &HTTPFetcher{Client: server.Client()}
		u, _ := url.Parse(server.URL)
		body, err := f.Fetch(context.Background(), u, Credentials{Token: "t0k"})
		require.NoError(t, err)
		defer body.Close()
		assert.Equal(t, "Bearer t0k", gotAuth)
	})

	t.Run("no token no header", func(t *testing.T) {
		var hasAuth bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasAuth = r.Header["Authorization"]
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		f := &HTTPFetcher{Client: server.Client()}
		u, _ := url.Parse(server.URL)
		body, err := f.Fetch(context.Background(), u, Credentials{})
		require.NoError(t, err)
		body.Close()
		assert.False(t, hasAuth)
	})

	t.Run("server error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("The requested resource was not found"))
		}))
		defer server.Close()

		f := &HTTPFetcher{Client: server.Client()}
		u, _ := url.Parse(server.URL)
		_, err := f.Fetch(context.Background(), u, Credentials{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
		assert.Contains(t, err.Error(), "The requested resource was not found")
	})

	t.Run("any 2xx is a success", func(t *testing.T) {
		for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNonAuthoritativeInfo, http.StatusPartialContent} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`[{"id":1}]`))
			}))
			f := &HTTPFetcher{Client: server.Client()}
			u, _ := url.Parse(server.URL)
			body, err := f.Fetch(context.Background(), u, Credentials{})
			require.NoError(t, err, "status %d", status)
			body.Close()
			server.Close()
		}
	})

	t.Run("redirect status without location fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotModified)
		}))
		defer server.Close()

		f := &HTTPFetcher{Client: server.Client()}
		u, _ := url.Parse(server.URL)
		_, err := f.Fetch(context.Background(), u, Credentials{})
		assert.ErrorContains(t, err, "status 304")
	})

	t.Run("network error", func(t *testing.T) {
		f := &HTTPFetcher{Client: http.DefaultClient}
		u, _ := url.Parse("http://127.0.0.1:1")
		_, err := f.Fetch(context.Background(), u, Credentials{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP request failed")
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := &HTTPFetcher{Client: server.Client()}
		u, _ := url.Parse(server.URL)
		_, err := f.Fetch(ctx, u, Credentials{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// ============================================================================
//  FileFetcher Tests
// ============================================================================

func TestFileFetcher(t *testing.T) {
	f := &FileFetcher{}
	assert.True(t, f.SupportsScheme("file"))
	assert.False(t, f.SupportsScheme("http"))

	dir := t.TempDir()
	path := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"a":1}]`), 0o644))

	u, err := url.Parse("file:///" + filepath.ToSlash(path))
	require.NoError(t, err)
	body, err := f.Fetch(context.Background(), u, Credentials{})
	require.NoError(t, err)
	defer body.Close()
	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1}]`, string(content))

	missing, _ := url.Parse("file:///" + filepath.ToSlash(filepath.Join(dir, "nope.json")))
	_, err = f.Fetch(context.Background(), missing, Credentials{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveLocalFilePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		u, _ := url.Parse("file:///C:/Program%20Files/app.json")
		assert.Equal(t, `C:\Program Files\app.json`, resolveLocalFilePath(u))
		return
	}
	u, _ := url.Parse("file:///home/user/rows.json")
	assert.Equal(t, "/home/user/rows.json", resolveLocalFilePath(u))
}

// ============================================================================
//  Remote / DecodeRows Tests
// ============================================================================

func TestDecodeRows(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"array", `[{"a":1},{"a":2}]`, 2, false},
		{"empty array", `[]`, 0, false},
		{"data envelope", `{"data":[{"a":1}],"total":1}`, 1, false},
		{"object without data", `{"items":[]}`, 0, true},
		{"scalar array", `[1,2]`, 0, true},
		{"garbage", `not json`, 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := DecodeRows(strings.NewReader(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tc.want)
			assert.NotNil(t, rows)
		})
	}
}

func TestRemote_Rows(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":[{"sku":"A","price":12.5,"dims":{"w":3}}]}`))
	}))
	defer server.Close()

	remote := NewRemoteWith("fallback", &HTTPFetcher{Client: server.Client()}, &FileFetcher{})

	rows, err := remote.Rows(context.Background(), domain.ScreenSource{URL: server.URL})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0]["sku"])
	assert.Equal(t, 12.5, rows[0]["price"])
	assert.Equal(t, map[string]any{"w": 3.0}, rows[0]["dims"])
	assert.Equal(t, "Bearer fallback", gotAuth, "default token when the source has none")

	_, err = remote.Rows(context.Background(), domain.ScreenSource{URL: server.URL, Token: "own"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer own", gotAuth)

	_, err = remote.Rows(context.Background(), domain.ScreenSource{URL: "ftp://example.com/x"})
	assert.ErrorIs(t, err, port.ErrFetchFailed)

	_, err = remote.Rows(context.Background(), domain.ScreenSource{URL: "http://127.0.0.1:1"})
	assert.ErrorIs(t, err, port.ErrFetchFailed)
}
