package deps

import (
	"time"

	"github.com/matzehuels/kdeps/pkg/dag"
	"github.com/matzehuels/kdeps/pkg/maven"
)

// Node status values stored under the "status" key of graph node metadata.
const (
	StatusResolved        = "resolved"
	StatusMetadataFailed  = "metadata-failed"
	StatusInvalidMetadata = "invalid-metadata"
	StatusExcluded        = "excluded"
	StatusPruned          = "pruned"
)

// Stats counts what happened during a run.
type Stats struct {
	Visited         int           // coordinates added to the visited set
	Downloaded      int           // artifacts fetched from the repository
	SkippedExisting int           // artifacts already present locally
	DownloadFailed  int           // artifact downloads that failed
	MetadataFailed  int           // metadata fetch or parse failures
	Excluded        int           // children skipped by an exclusion rule
	Dropped         int           // declarations dropped with a warning
	Filtered        int           // declarations discarded by scope or optional
	Pruned          int           // children beyond MaxDepth
	Duration        time.Duration // wall time of the run
}

// Diagnostic is a dropped declaration together with the document it came from.
type Diagnostic struct {
	Parent  maven.Coordinate
	Warning maven.Warning
}

// Result describes a finished (or cancelled) run.
type Result struct {
	RunID       string             // unique identifier of the run
	Seeds       []maven.Coordinate // seeds in input order
	Visited     []maven.Coordinate // visited coordinates in visit order
	Graph       *dag.DAG           // every node and declaration seen
	Stats       Stats
	Diagnostics []Diagnostic
}

// Failed reports whether any artifact or metadata request failed.
func (r *Result) Failed() bool {
	return r.Stats.DownloadFailed > 0 || r.Stats.MetadataFailed > 0
}
