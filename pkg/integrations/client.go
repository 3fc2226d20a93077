package integrations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/kdeps/pkg/cache"
	"github.com/matzehuels/kdeps/pkg/httputil"
	"github.com/matzehuels/kdeps/pkg/observability"
)

// Client provides shared HTTP functionality for repository clients.
// It handles caching, retry logic, and common request headers.
//
// All methods are safe for concurrent use.
type Client struct {
	http     *http.Client
	download *http.Client
	cache    cache.Cache
	prefix   string
	ttl      time.Duration
	headers  map[string]string
	retry    httputil.Policy
}

// NewClient creates a Client with the given cache and default headers.
// Cache keys are prefixed with namespace and stored for ttl.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:     NewHTTPClient(),
		download: NewDownloadClient(),
		cache:    c,
		prefix:   namespace,
		ttl:      ttl,
		headers:  headers,
	}
}

// SetRetry sets the retry policy for every request. The default makes a
// single attempt.
func (c *Client) SetRetry(p httputil.Policy) { c.retry = p }

// SetHTTPClient replaces the transport used for both metadata and downloads.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
	c.download = h
}

// Cached returns the bytes stored under key, or runs fetch and caches its
// result. If refresh is true, the cached value is ignored but the fresh
// value is still written back. Cache failures never fail the call.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	return c.CachedValid(ctx, key, refresh, fetch, nil)
}

// CachedValid is [Client.Cached] with a content check. Cached bytes failing
// valid count as a miss, and fetched bytes failing it are returned to the
// caller without being stored. A nil valid accepts everything.
func (c *Client) CachedValid(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error), valid func([]byte) error) ([]byte, error) {
	key = c.prefix + key
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok && (valid == nil || valid(data) == nil) {
			return data, nil
		}
	}
	var data []byte
	err := c.retry.Do(ctx, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	if valid != nil && valid(data) != nil {
		return data, nil
	}
	_ = c.cache.Set(ctx, key, data, c.ttl)
	return data, nil
}

// GetBytes performs an HTTP GET and returns the whole body. It retries
// transient failures according to the client's policy.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := c.retry.Do(ctx, func() error {
		body, err := c.doRequest(ctx, c.http, url)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err = io.ReadAll(body)
		if err != nil {
			return httputil.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
		}
		return nil
	})
	return data, err
}

// GetCached is GetBytes behind the response cache, keyed by URL.
func (c *Client) GetCached(ctx context.Context, url string, refresh bool) ([]byte, error) {
	return c.GetCachedValid(ctx, url, refresh, nil)
}

// GetCachedValid is GetCached, caching only bodies accepted by valid.
func (c *Client) GetCachedValid(ctx context.Context, url string, refresh bool, valid func([]byte) error) ([]byte, error) {
	return c.CachedValid(ctx, url, refresh, func() ([]byte, error) {
		body, err := c.doRequest(ctx, c.http, url)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, httputil.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
		}
		return data, nil
	}, valid)
}

// Download streams url into dest. The body is written to a temporary file
// in dest's directory and renamed into place, so dest either holds a
// complete file or does not exist.
func (c *Client) Download(ctx context.Context, url, dest string) (int64, error) {
	var n int64
	err := c.retry.Do(ctx, func() error {
		var err error
		n, err = c.downloadOnce(ctx, url, dest)
		return err
	})
	return n, err
}

// Materialize downloads url to dest unless dest already exists. It reports
// whether the download was skipped. An existing file is trusted as is.
func (c *Client) Materialize(ctx context.Context, url, dest string) (skipped bool, err error) {
	if _, err := os.Stat(dest); err == nil {
		return true, nil
	}
	_, err = c.Download(ctx, url, dest)
	return false, err
}

func (c *Client) downloadOnce(ctx context.Context, url, dest string) (int64, error) {
	body, err := c.doRequest(ctx, c.download, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

func (c *Client) doRequest(ctx context.Context, hc *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
