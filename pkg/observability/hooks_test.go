package observability

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Resolve hooks
	r := NoopResolveHooks{}
	r.OnNodeVisited(ctx, "a:b:1.0", 0)
	r.OnArtifact(ctx, "a:b:1.0", OutcomeDownloaded, time.Second)
	r.OnMetadata(ctx, "a:b:1.0", time.Second, nil)
	r.OnExcluded(ctx, "a:b:1.0", "x:y:3.0")
	r.OnDropped(ctx, "missing-version")
	r.OnRunComplete(ctx, 10, time.Second)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "pom")
	c.OnCacheMiss(ctx, "pom")
	c.OnCacheSet(ctx, "pom", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "repo1.maven.org", "/maven2/a/b/1.0/b-1.0.pom")
	h.OnResponse(ctx, "GET", "repo1.maven.org", "/maven2/a/b/1.0/b-1.0.pom", 200, time.Second)
	h.OnError(ctx, "GET", "repo1.maven.org", "/maven2/a/b/1.0/b-1.0.pom", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Resolve() should return NoopResolveHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customResolve := &testResolveHooks{}
	SetResolveHooks(customResolve)
	if Resolve() != customResolve {
		t.Error("SetResolveHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Reset() should restore NoopResolveHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testResolveHooks{}
	SetResolveHooks(custom)

	// Setting nil should be ignored
	SetResolveHooks(nil)

	if Resolve() != custom {
		t.Error("SetResolveHooks(nil) should be ignored")
	}

	Reset()
}

func TestPrometheusTextfile(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheus()

	p.OnNodeVisited(ctx, "a:b:1.0", 0)
	p.OnNodeVisited(ctx, "c:d:2.0", 1)
	p.OnArtifact(ctx, "a:b:1.0", OutcomeDownloaded, 50*time.Millisecond)
	p.OnArtifact(ctx, "c:d:2.0", OutcomeSkipped, 0)
	p.OnMetadata(ctx, "a:b:1.0", 10*time.Millisecond, nil)
	p.OnMetadata(ctx, "c:d:2.0", 10*time.Millisecond, errors.New("boom"))
	p.OnExcluded(ctx, "c:d:2.0", "x:y:3.0")
	p.OnDropped(ctx, "missing-version")
	p.OnRunComplete(ctx, 2, time.Second)
	p.OnCacheMiss(ctx, "pom")
	p.OnCacheSet(ctx, "pom", 512)
	p.OnRequest(ctx, "GET", "repo.test", "/x")
	p.OnResponse(ctx, "GET", "repo.test", "/x", 404, time.Millisecond)
	p.OnError(ctx, "GET", "repo.test", "/y", errors.New("reset"))

	path := filepath.Join(t.TempDir(), "kdeps.prom")
	if err := p.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		"kdeps_nodes_visited_total 2",
		`kdeps_artifacts_total{outcome="downloaded"} 1`,
		`kdeps_artifacts_total{outcome="skipped"} 1`,
		`kdeps_metadata_total{result="error"} 1`,
		"kdeps_excluded_total 1",
		`kdeps_dropped_declarations_total{reason="missing-version"} 1`,
		"kdeps_run_visited 2",
		`kdeps_cache_events_total{event="miss",key_type="pom"} 1`,
		"kdeps_cache_set_bytes_total 512",
		`kdeps_http_responses_total{code="404",host="repo.test",method="GET"} 1`,
		`kdeps_http_errors_total{host="repo.test",method="GET"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

// Test implementations
type testResolveHooks struct{ NoopResolveHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
