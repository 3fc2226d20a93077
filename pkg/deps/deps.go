package deps

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	mavenrepo "github.com/matzehuels/kdeps/pkg/integrations/maven"
	"github.com/matzehuels/kdeps/pkg/maven"
)

const (
	DefaultWorkers     = 4     // Default concurrent artifact downloads
	DefaultOutputDir   = "lib" // Default artifact directory
	DefaultMetadataDir = "pom" // Default metadata audit directory
)

// Options configures a resolution run.
type Options struct {
	OutputDir   string             // Artifact directory (default: lib)
	MetadataDir string             // Metadata audit directory (default: pom)
	SkipAudit   bool               // Do not persist metadata documents
	Workers     int                // Concurrent artifact downloads (default: 4)
	MaxDepth    int                // Maximum traversal depth; 0 means unlimited
	Parse       maven.ParseOptions // POM extraction rules, including the exclusion key mode
	Logger      *log.Logger        // Structured logger (default: discards)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.MetadataDir == "" {
		opts.MetadataDir = DefaultMetadataDir
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Repository retrieves metadata and artifacts for coordinates.
// [mavenrepo.Client] is the production implementation.
type Repository interface {
	// FetchMetadata returns the raw metadata document of coord.
	FetchMetadata(ctx context.Context, coord maven.Coordinate) (*mavenrepo.Metadata, error)
	// DownloadArtifact materializes the artifact of coord into dir and
	// reports whether an existing file made the download unnecessary.
	DownloadArtifact(ctx context.Context, coord maven.Coordinate, dir string) (skipped bool, err error)
}

// Context is the state that lives for a whole run: the visited set and the
// aggregated exclusion table. Both are owned by the resolver's coordinator
// goroutine; a Context must not be shared between concurrent runs.
type Context struct {
	visited    map[string]bool
	order      []maven.Coordinate
	exclusions *maven.ExclusionTable
}

// NewContext returns an empty run context whose exclusion table uses mode.
func NewContext(mode maven.KeyMode) *Context {
	return &Context{
		visited:    make(map[string]bool),
		exclusions: maven.NewExclusionTable(mode),
	}
}

// Visit marks coord as visited. It returns false if coord was already
// present, in which case nothing changes.
func (c *Context) Visit(coord maven.Coordinate) bool {
	key := coord.String()
	if c.visited[key] {
		return false
	}
	c.visited[key] = true
	c.order = append(c.order, coord)
	return true
}

// Visited reports whether coord has been visited.
func (c *Context) Visited(coord maven.Coordinate) bool { return c.visited[coord.String()] }

// Order returns visited coordinates in visit order.
func (c *Context) Order() []maven.Coordinate { return c.order }

// Len returns the number of visited coordinates.
func (c *Context) Len() int { return len(c.order) }

// Exclusions returns the run-wide exclusion table.
func (c *Context) Exclusions() *maven.ExclusionTable { return c.exclusions }
