package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	appLog "festsched/internal/log"
)

// maxBody bounds a downloaded calendar.
const maxBody = 4 << 20

// cacheEntry holds the conditional-request state for one URL. It lives in
// memory only.
type cacheEntry struct {
	ETag         string
	LastModified string
	Body         []byte
}

// Fetcher downloads draft calendars shared by the program committee
// (e.g. an exported planning calendar). Repeated fetches of the same URL
// send If-None-Match / If-Modified-Since and reuse the previous body on
// 304 or when the server is unreachable.
type Fetcher struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client, cache: make(map[string]cacheEntry)}
}

// Fetch returns the calendar body at rawURL and whether it came from the
// in-memory cache.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, bool, error) {
	const op = "ics.Fetch"

	if rawURL == "" {
		return nil, false, fmt.Errorf("%s: source URL is empty", op)
	}

	f.mu.Lock()
	cached, haveCache := f.cache[rawURL]
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if cached.ETag != "" {
		req.Header.Set("If-None-Match", cached.ETag)
	}
	if cached.LastModified != "" {
		req.Header.Set("If-Modified-Since", cached.LastModified)
	}

	appLog.Debug("ics fetch start", "url", redactURL(rawURL))

	resp, err := f.client.Do(req)
	if err != nil {
		if haveCache {
			appLog.Error("ics fetch network error, using cached body", err, "url", redactURL(rawURL))
			return cached.Body, true, nil
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", op, err)
		}
		f.mu.Lock()
		f.cache[rawURL] = cacheEntry{
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			Body:         body,
		}
		f.mu.Unlock()
		appLog.Info("ics fetch success", "url", redactURL(rawURL), "bytes", len(body))
		return body, false, nil

	case http.StatusNotModified:
		if !haveCache {
			return nil, false, fmt.Errorf("%s: 304 Not Modified without a cached body", op)
		}
		appLog.Debug("ics fetch not modified; using cache", "url", redactURL(rawURL))
		return cached.Body, true, nil

	default:
		if haveCache {
			appLog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status), "url", redactURL(rawURL))
			return cached.Body, true, nil
		}
		return nil, false, fmt.Errorf("%s: %s", op, resp.Status)
	}
}

// redactURL keeps scheme and host only; shared calendar links usually
// carry a secret token in the path or query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
