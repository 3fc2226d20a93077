package maven

import (
	"context"
	stderrors "errors"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/matzehuels/kdeps/pkg/cache"
	"github.com/matzehuels/kdeps/pkg/errors"
	"github.com/matzehuels/kdeps/pkg/httputil"
	"github.com/matzehuels/kdeps/pkg/integrations"
	mvn "github.com/matzehuels/kdeps/pkg/maven"
)

// CacheNamespace prefixes every metadata cache key written by this client.
const CacheNamespace = "pom:"

// Client talks to one Maven 2 repository.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	layout  mvn.Layout
	refresh bool
}

// Options configures a [Client].
type Options struct {
	Layout   mvn.Layout      // zero value selects mvn.DefaultLayout()
	Cache    cache.Cache     // nil disables metadata caching
	CacheTTL time.Duration   // zero selects cache.DefaultTTL
	Refresh  bool            // ignore cached metadata, still write fresh copies
	Retry    httputil.Policy // zero value makes a single attempt
	Headers  map[string]string
}

// NewClient creates a repository client.
func NewClient(opts Options) *Client {
	if opts.Layout.Base == "" {
		opts.Layout = mvn.DefaultLayout()
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = cache.DefaultTTL
	}
	base := integrations.NewClient(opts.Cache, CacheNamespace, opts.CacheTTL, opts.Headers)
	base.SetRetry(opts.Retry)
	return &Client{
		Client:  base,
		layout:  opts.Layout,
		refresh: opts.Refresh,
	}
}

// Layout returns the URL layout of the repository.
func (c *Client) Layout() mvn.Layout { return c.layout }

// Metadata is one fetched POM.
type Metadata struct {
	URL  string
	Data []byte
}

// FileName is the last path element of the metadata URL.
func (m *Metadata) FileName() string { return path.Base(m.URL) }

// FetchMetadata retrieves the POM for coord, through the cache.
//
// Returns:
//   - [errors.ErrCodeNotFound] if the repository has no such document
//   - [errors.ErrCodeNetwork] for every other transport failure
//
// Both wrap the underlying [integrations.ErrNotFound] / [integrations.ErrNetwork].
func (c *Client) FetchMetadata(ctx context.Context, coord mvn.Coordinate) (*Metadata, error) {
	url := c.layout.MetadataURL(coord)
	data, err := c.GetCachedValid(ctx, url, c.refresh, validPOM)
	if err != nil {
		return nil, classify(err, "fetch metadata %s", url)
	}
	return &Metadata{URL: url, Data: data}, nil
}

// validPOM keeps documents that do not decode, such as proxy error pages,
// out of the metadata cache.
func validPOM(data []byte) error {
	_, err := mvn.DecodeProject(data)
	return err
}

// DownloadArtifact materializes the artifact of coord into dir, named by the
// URL's file name. An existing file is left untouched and reported as
// skipped.
func (c *Client) DownloadArtifact(ctx context.Context, coord mvn.Coordinate, dir string) (skipped bool, err error) {
	url := c.layout.ArtifactURL(coord)
	dest := filepath.Join(dir, path.Base(url))
	skipped, err = c.Materialize(ctx, url, dest)
	if err != nil {
		return false, classify(err, "download %s", url)
	}
	return skipped, nil
}

// PersistMetadata writes a fetched POM into dir under its URL file name,
// replacing any earlier copy.
func PersistMetadata(dir string, m *Metadata) error {
	dest := filepath.Join(dir, m.FileName())
	if err := os.WriteFile(dest, m.Data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "persist metadata %s", dest)
	}
	return nil
}

func classify(err error, format string, args ...any) error {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, format, args...)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, format, args...)
	}
}
