package deps

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kdeps/pkg/dag"
	"github.com/matzehuels/kdeps/pkg/errors"
	mavenrepo "github.com/matzehuels/kdeps/pkg/integrations/maven"
	"github.com/matzehuels/kdeps/pkg/maven"
	"github.com/matzehuels/kdeps/pkg/observability"
)

// Metadata keys written to graph nodes and edges.
const (
	MetaStatus        = "status"        // node: one of the Status* values
	MetaDownload      = "download"      // node: artifact outcome (observability.Outcome*)
	MetaDownloadError = "download_error"
	MetaMetadataError = "metadata_error"
	MetaDeclarations  = "declarations" // node: surviving declarations in its document
	MetaScope         = "scope"        // edge: declared scope
	MetaOptional      = "optional"     // edge: declared optional
	MetaExcluded      = "excluded"     // edge: rule that excluded the child
	MetaRepeat        = "repeat"       // edge: child was already visited
	MetaPruned        = "pruned"       // edge: child lies beyond MaxDepth
)

// Resolver walks the transitive dependency graph of a set of seeds.
//
// Metadata expansion happens on the calling goroutine over an explicit
// LIFO stack, so children are expanded depth-first in document order and
// the visited set needs no locking. Artifact downloads run concurrently
// on a bounded pool and never block expansion beyond the pool limit.
type Resolver struct {
	repo  Repository
	opts  Options
	state *Context
}

// NewResolver returns a Resolver backed by repo.
func NewResolver(repo Repository, opts Options) *Resolver {
	return &Resolver{repo: repo, opts: opts.WithDefaults()}
}

// WithContext makes the resolver use c as its run state instead of a fresh
// one per Resolve call. The exclusion key mode of c wins over Options.
func (r *Resolver) WithContext(c *Context) *Resolver {
	r.state = c
	return r
}

// Resolve visits seeds in order, followed by everything they transitively
// declare. Seeds share one visited set and one exclusion table.
//
// Only invalid seeds or an unusable output directory are returned as
// errors. Fetch and parse failures are node-local: they are logged,
// counted in Result.Stats and recorded on the graph. If ctx is cancelled
// the partial result is returned together with ctx.Err().
func (r *Resolver) Resolve(ctx context.Context, seeds []maven.Coordinate) (*Result, error) {
	for _, s := range seeds {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory %s", r.opts.OutputDir)
	}
	if !r.opts.SkipAudit {
		if err := os.MkdirAll(r.opts.MetadataDir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create metadata directory %s", r.opts.MetadataDir)
		}
	}

	opts := r.opts
	state := r.state
	if state == nil {
		state = NewContext(opts.Parse.KeyMode)
	}
	opts.Parse.KeyMode = state.Exclusions().Mode()

	seedIDs := make([]string, len(seeds))
	for i, s := range seeds {
		seedIDs[i] = s.String()
	}
	runID := uuid.NewString()

	w := &walk{
		ctx:   ctx,
		repo:  r.repo,
		opts:  opts,
		state: state,
		log:   opts.Logger.With("run", runID[:8]),
		hooks: observability.Resolve(),
		g: dag.New(dag.Metadata{
			"run_id":        runID,
			"seeds":         seedIDs,
			"exclusion_key": opts.Parse.KeyMode.String(),
		}),
		artifacts: make(map[string]artifactResult),
		claimed:   make(map[string]string),
		res:       &Result{RunID: runID, Seeds: seeds},
	}
	w.downloads.SetLimit(opts.Workers)
	return w.run()
}

type frame struct {
	parent *maven.Coordinate // nil for seeds
	coord  maven.Coordinate
	decl   maven.Declaration
	depth  int
}

type artifactResult struct {
	outcome string
	err     error
}

type walk struct {
	ctx   context.Context
	repo  Repository
	opts  Options
	state *Context
	log   *log.Logger
	hooks observability.ResolveHooks

	g   *dag.DAG
	res *Result

	downloads errgroup.Group
	mu        sync.Mutex
	artifacts map[string]artifactResult

	// claimed maps output file names to the coordinate that owns them.
	// Only the coordinator touches it.
	claimed map[string]string
}

func (w *walk) run() (*Result, error) {
	start := time.Now()

	stack := make([]frame, 0, len(w.res.Seeds))
	for i := len(w.res.Seeds) - 1; i >= 0; i-- {
		stack = append(stack, frame{coord: w.res.Seeds[i]})
	}

	var cancelled error
	for len(stack) > 0 {
		if err := w.ctx.Err(); err != nil {
			cancelled = err
			break
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := w.step(f)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	_ = w.downloads.Wait()
	w.applyArtifacts()
	if cancelled == nil {
		cancelled = w.ctx.Err()
	}

	w.res.Graph = w.g
	w.res.Stats.Duration = time.Since(start)
	w.hooks.OnRunComplete(w.ctx, w.res.Stats.Visited, w.res.Stats.Duration)
	w.log.Info("resolution finished",
		"visited", w.res.Stats.Visited,
		"downloaded", w.res.Stats.Downloaded,
		"skipped", w.res.Stats.SkippedExisting,
		"failed", w.res.Stats.DownloadFailed+w.res.Stats.MetadataFailed,
		"excluded", w.res.Stats.Excluded,
		"elapsed", w.res.Stats.Duration.Round(time.Millisecond))
	return w.res, cancelled
}

// step handles one popped frame and returns the children to expand.
func (w *walk) step(f frame) []frame {
	id := f.coord.String()
	if f.parent != nil {
		if err := f.coord.Validate(); err != nil {
			w.res.Stats.Dropped++
			w.hooks.OnDropped(w.ctx, "invalid-coordinate")
			w.log.Warn("declaration dropped", "parent", f.parent, "coord", id, "err", err)
			return nil
		}
	}
	n := w.node(f.coord, f.depth)

	if f.parent != nil {
		pid := f.parent.String()
		if rule, ok := w.state.Exclusions().Excludes(*f.parent, f.coord); ok {
			w.edge(f, dag.Metadata{MetaExcluded: rule.String()})
			w.setStatus(n, StatusExcluded, false)
			w.res.Stats.Excluded++
			w.hooks.OnExcluded(w.ctx, pid, id)
			w.log.Info("dependency excluded", "parent", pid, "coord", id, "rule", rule)
			return nil
		}
		if w.state.Visited(f.coord) {
			w.edge(f, dag.Metadata{MetaRepeat: true})
			w.log.Debug("dependency already processed", "coord", id)
			return nil
		}
		if w.opts.MaxDepth > 0 && f.depth > w.opts.MaxDepth {
			w.edge(f, dag.Metadata{MetaPruned: true})
			w.setStatus(n, StatusPruned, false)
			w.res.Stats.Pruned++
			w.log.Debug("depth limit reached", "coord", id, "depth", f.depth)
			return nil
		}
		w.edge(f, nil)
	}

	if !w.state.Visit(f.coord) {
		w.log.Debug("dependency already processed", "coord", id)
		return nil
	}
	w.res.Visited = append(w.res.Visited, f.coord)
	w.res.Stats.Visited++
	w.setStatus(n, StatusResolved, true)
	w.hooks.OnNodeVisited(w.ctx, id, f.depth)
	w.log.Info("resolving", "coord", id, "depth", f.depth)

	w.download(f.coord)
	return w.expand(f, n)
}

// expand fetches and parses the metadata of a freshly visited node.
func (w *walk) expand(f frame, n *dag.Node) []frame {
	id := f.coord.String()

	start := time.Now()
	m, err := w.repo.FetchMetadata(w.ctx, f.coord)
	if err != nil {
		if w.ctx.Err() != nil {
			return nil
		}
		w.metadataFailed(n, StatusMetadataFailed, time.Since(start), err)
		return nil
	}
	doc, err := maven.Parse(m.Data, w.opts.Parse)
	if err != nil {
		w.metadataFailed(n, StatusInvalidMetadata, time.Since(start), err)
		return nil
	}
	w.hooks.OnMetadata(w.ctx, id, time.Since(start), nil)

	if !w.opts.SkipAudit {
		if err := mavenrepo.PersistMetadata(w.opts.MetadataDir, m); err != nil {
			w.log.Warn("metadata not persisted", "coord", id, "err", err)
		}
	}

	w.state.Exclusions().Merge(doc.Exclusions)

	for _, warn := range doc.Warnings {
		w.res.Stats.Dropped++
		w.res.Diagnostics = append(w.res.Diagnostics, Diagnostic{Parent: f.coord, Warning: warn})
		w.hooks.OnDropped(w.ctx, string(warn.Kind))
		w.log.Warn("declaration dropped", "parent", id, "reason", warn)
	}
	for _, fl := range doc.Filtered {
		w.res.Stats.Filtered++
		w.log.Debug("declaration filtered", "parent", id, "dep", fl.Group+":"+fl.Artifact, "reason", fl.Reason)
	}

	n.Meta[MetaDeclarations] = len(doc.Declarations)
	children := make([]frame, 0, len(doc.Declarations))
	parent := f.coord
	for _, d := range doc.Declarations {
		for _, rule := range d.Exclusions {
			if rule.IsTotal() {
				w.log.Warn("declaration excludes all transitive dependencies", "parent", id, "coord", d.Coordinate)
			}
		}
		children = append(children, frame{parent: &parent, coord: d.Coordinate, decl: d, depth: f.depth + 1})
	}
	return children
}

func (w *walk) metadataFailed(n *dag.Node, status string, d time.Duration, err error) {
	w.res.Stats.MetadataFailed++
	n.Meta[MetaStatus] = status
	n.Meta[MetaMetadataError] = err.Error()
	w.hooks.OnMetadata(w.ctx, n.ID, d, err)
	w.log.Warn("failed to download or parse POM", "coord", n.ID, "err", err)
}

// download submits the artifact of c to the download pool. Go blocks while
// the pool is full.
//
// The output directory is flat, so coordinates differing only in group share
// a file name. The first one to claim the name is downloaded; later ones are
// skipped as if the file already existed, whatever the pool's timing.
func (w *walk) download(c maven.Coordinate) {
	id := c.String()
	name := c.FileName(maven.ArtifactExt)
	if owner, ok := w.claimed[name]; ok {
		w.log.Info("file already exists", "coord", id, "file", name, "owner", owner)
		w.hooks.OnArtifact(w.ctx, id, observability.OutcomeSkipped, 0)
		w.mu.Lock()
		w.artifacts[id] = artifactResult{outcome: observability.OutcomeSkipped}
		w.mu.Unlock()
		return
	}
	w.claimed[name] = id

	w.downloads.Go(func() error {
		start := time.Now()
		skipped, err := w.repo.DownloadArtifact(w.ctx, c, w.opts.OutputDir)

		res := artifactResult{outcome: observability.OutcomeDownloaded, err: err}
		switch {
		case err != nil:
			res.outcome = observability.OutcomeFailed
			w.log.Warn("artifact download failed", "coord", id, "err", err)
		case skipped:
			res.outcome = observability.OutcomeSkipped
			w.log.Info("file already exists", "coord", id)
		default:
			w.log.Info("download completed", "coord", id)
		}
		w.hooks.OnArtifact(w.ctx, id, res.outcome, time.Since(start))

		w.mu.Lock()
		w.artifacts[id] = res
		w.mu.Unlock()
		return nil
	})
}

// applyArtifacts copies download outcomes onto graph nodes. It runs after
// the pool has drained.
func (w *walk) applyArtifacts() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, a := range w.artifacts {
		switch a.outcome {
		case observability.OutcomeDownloaded:
			w.res.Stats.Downloaded++
		case observability.OutcomeSkipped:
			w.res.Stats.SkippedExisting++
		case observability.OutcomeFailed:
			w.res.Stats.DownloadFailed++
		}
		n, ok := w.g.Node(id)
		if !ok {
			continue
		}
		n.Meta[MetaDownload] = a.outcome
		if a.err != nil {
			n.Meta[MetaDownloadError] = a.err.Error()
		}
	}
}

func (w *walk) node(c maven.Coordinate, depth int) *dag.Node {
	n, _ := w.g.EnsureNode(dag.Node{ID: c.String(), Row: depth, Meta: dag.Metadata{
		"group":    c.Group,
		"artifact": c.Artifact,
		"version":  c.Version,
	}})
	return n
}

// setStatus records status on n. Unless force is set, an existing status
// is kept: a node reached once through a live path stays resolved.
func (w *walk) setStatus(n *dag.Node, status string, force bool) {
	if _, ok := n.Meta[MetaStatus]; ok && !force {
		return
	}
	n.Meta[MetaStatus] = status
}

func (w *walk) edge(f frame, meta dag.Metadata) {
	if meta == nil {
		meta = dag.Metadata{}
	}
	if f.decl.Scope != "" {
		meta[MetaScope] = f.decl.Scope
	}
	if f.decl.Optional {
		meta[MetaOptional] = true
	}
	_ = w.g.AddEdge(dag.Edge{From: f.parent.String(), To: f.coord.String(), Meta: meta})
}
