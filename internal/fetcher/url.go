package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"neve/internal/store"
)

const (
	defaultTimeout   = 5 * time.Minute
	defaultUserAgent = "neve-fetch/0.1"
	maxRedirects     = 10
)

type httpClient struct {
	*http.Client
}

func newHTTPClient() *httpClient {
	return &httpClient{Client: &http.Client{
		Timeout: defaultTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("fetcher: stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}}
}

func (c *httpClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetcher: %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// fetchURL downloads src.URL, retrying with exponential backoff on
// transient errors, then verifies and places the result in the store.
// When src.Unpack is set the download is treated as a tar archive and
// its extracted tree, not the raw bytes, is what gets stored.
func (f *Fetcher) fetchURL(ctx context.Context, src Source) (store.Path, error) {
	var content []byte
	var err error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt <= f.retries; attempt++ {
		content, err = f.client.get(ctx, src.URL)
		if err == nil {
			break
		}
		if attempt == f.retries {
			break
		}
		select {
		case <-ctx.Done():
			return store.Path{}, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if err != nil {
		return store.Path{}, fmt.Errorf("fetcher: download %s: %w", src.URL, err)
	}

	if !src.Unpack {
		return f.verifyAndAddFile(src, content)
	}

	dir, err := os.MkdirTemp("", "neve-fetch-*")
	if err != nil {
		return store.Path{}, err
	}
	defer os.RemoveAll(dir)
	format, ok := archiveFormatFromName(src.URL)
	if !ok {
		return store.Path{}, fmt.Errorf("fetcher: %s: cannot determine archive format from name", src.URL)
	}
	if err := extractArchive(content, format, dir); err != nil {
		return store.Path{}, fmt.Errorf("fetcher: extract %s: %w", src.URL, err)
	}
	return f.verifyAndAddDir(src, dir)
}
