package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kdeps/pkg/dag"
	"github.com/matzehuels/kdeps/pkg/errors"
	"github.com/matzehuels/kdeps/pkg/io"
	"github.com/matzehuels/kdeps/pkg/maven"
)

func TestParseSeeds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "lines in order",
			input: "org.jetbrains.kotlinx:kotlinx-coroutines-core-jvm:1.8.0\na:b:1.0\n",
			want:  []string{"org.jetbrains.kotlinx:kotlinx-coroutines-core-jvm:1.8.0", "a:b:1.0"},
		},
		{
			name:  "blank and comment lines",
			input: "# seeds\n\n  a:b:1.0  \n\t\n# c:d:2.0\n",
			want:  []string{"a:b:1.0"},
		},
		{
			name:  "duplicates kept",
			input: "a:b:1.0\na:b:1.0\n",
			want:  []string{"a:b:1.0", "a:b:1.0"},
		},
		{name: "empty", input: ""},
		{name: "two fields", input: "a:b:1.0\na:b\n", wantErr: true},
		{name: "four fields", input: "a:b:jar:1.0", wantErr: true},
		{name: "empty field", input: "a::1.0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeds, err := parseSeeds(strings.NewReader(tt.input), "seeds.txt")
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidCoordinate) {
					t.Fatalf("err = %v, want %s", err, errors.ErrCodeInvalidCoordinate)
				}
				if !errors.IsInput(err) {
					t.Error("malformed seed should be an input error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(seeds) != len(tt.want) {
				t.Fatalf("got %d seeds, want %d", len(seeds), len(tt.want))
			}
			for i, s := range seeds {
				if s.String() != tt.want[i] {
					t.Errorf("seed[%d] = %s, want %s", i, s, tt.want[i])
				}
			}
		})
	}
}

func TestParseSeedsReportsLine(t *testing.T) {
	_, err := parseSeeds(strings.NewReader("a:b:1.0\n# ok\nbroken\n"), "seeds.txt")
	if err == nil || !strings.Contains(err.Error(), "seeds.txt:3") {
		t.Errorf("err = %v, want position seeds.txt:3", err)
	}
}

func TestReadSeedsMissingFile(t *testing.T) {
	opts := &fetchOptions{file: filepath.Join(t.TempDir(), "nope.txt")}
	_, err := opts.readSeeds(strings.NewReader("a:b:1.0"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{context.Canceled, 130},
		{fmt.Errorf("resolve: %w", context.Canceled), 130},
		{errors.New(errors.ErrCodeInvalidCoordinate, "bad"), 1},
		{errors.New(errors.ErrCodeInvalidPath, "bad"), 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestCacheDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(xdg, "kdeps"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", "kdeps"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestSettingsPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kdeps.toml")
	body := "workers = 8\nmax_depth = 3\nexclusion_key = \"module\"\noutput = \"jars\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := &fetchOptions{}
	cmd := &cobra.Command{Use: "kdeps"}
	opts.register(cmd)
	if err := cmd.ParseFlags([]string{"--config", path, "--workers", "2", "--no-cache"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := opts.settings(cmd)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want flag value 2", cfg.Workers)
	}
	if cfg.MaxDepth != 3 || cfg.Output != "jars" {
		t.Errorf("config values lost: %+v", cfg)
	}
	if m, _ := cfg.KeyMode(); m != maven.KeyWithoutVersion {
		t.Errorf("KeyMode = %v", m)
	}
	if !cfg.Cache.Disabled {
		t.Error("--no-cache not applied")
	}
	if cfg.PomDir != "pom" {
		t.Errorf("PomDir = %q, want built-in default", cfg.PomDir)
	}
}

func TestSettingsInvalidFlag(t *testing.T) {
	opts := &fetchOptions{}
	cmd := &cobra.Command{Use: "kdeps"}
	opts.register(cmd)
	if err := cmd.ParseFlags([]string{"--exclusion-key", "nope"}); err != nil {
		t.Fatal(err)
	}
	if _, err := opts.settings(cmd); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func newTestRepo(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"/a/b/1.0/b-1.0.pom": `<project><dependencies>
  <dependency><groupId>c</groupId><artifactId>d</artifactId><version>2.0</version></dependency>
  <dependency><groupId>e</groupId><artifactId>f</artifactId><version>1.0</version><scope>test</scope></dependency>
</dependencies></project>`,
		"/a/b/1.0/b-1.0.jar": "jar a:b",
		"/c/d/2.0/d-2.0.pom": `<project/>`,
		"/c/d/2.0/d-2.0.jar": "jar c:d",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandFetch(t *testing.T) {
	server := newTestRepo(t)
	dir := t.TempDir()
	seeds := filepath.Join(dir, "seeds.txt")
	if err := os.WriteFile(seeds, []byte("# app\na:b:1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := execute(t, "",
		"-f", seeds,
		"-o", filepath.Join(dir, "lib"),
		"--pom-dir", filepath.Join(dir, "pom"),
		"--repo", server.URL,
		"--no-cache",
		"--graph", filepath.Join(dir, "out", "graph.json"),
		"--dot", filepath.Join(dir, "out", "graph.dot"),
		"--metrics-file", filepath.Join(dir, "out", "kdeps.prom"),
	)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	for _, name := range []string{"lib/b-1.0.jar", "lib/d-2.0.jar", "pom/b-1.0.pom", "pom/d-2.0.pom"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "lib", "f-1.0.jar")); err == nil {
		t.Error("test-scoped artifact downloaded")
	}

	g, err := io.ImportJSON(filepath.Join(dir, "out", "graph.json"))
	if err != nil {
		t.Fatal(err)
	}
	if got := dag.NodeIDs(g.Nodes()); strings.Join(got, " ") != "a:b:1.0 c:d:2.0" {
		t.Errorf("graph nodes = %v", got)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "out", "graph.dot"))
	if err != nil || !strings.Contains(string(dot), `"a:b:1.0" -> "c:d:2.0"`) {
		t.Errorf("dot output = %q, %v", dot, err)
	}
	metrics, err := os.ReadFile(filepath.Join(dir, "out", "kdeps.prom"))
	if err != nil || !strings.Contains(string(metrics), "kdeps_nodes_visited_total 2") {
		t.Errorf("metrics output = %q, %v", metrics, err)
	}
}

func TestRootCommandStdinAndIdempotence(t *testing.T) {
	server := newTestRepo(t)
	dir := t.TempDir()
	args := []string{"-o", filepath.Join(dir, "lib"), "--no-audit", "--repo", server.URL, "--no-cache"}

	for i := range 2 {
		if err := execute(t, "a:b:1.0\n", args...); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "lib"))
	if len(entries) != 2 {
		t.Errorf("lib holds %d files, want 2", len(entries))
	}
	if _, err := os.Stat(filepath.Join(dir, "pom")); !os.IsNotExist(err) {
		t.Error("pom dir created with --no-audit")
	}
}

func TestRootCommandInputErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"malformed seed", "a:b\n", nil},
		{"missing file", "", []string{"-f", filepath.Join(dir, "missing.txt")}},
		{"bad exclusion key", "a:b:1.0\n", []string{"--exclusion-key", "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-o", filepath.Join(dir, "lib"), "--no-cache"}, tt.args...)
			err := execute(t, tt.stdin, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsInput(err) {
				t.Errorf("err = %v, want an input error", err)
			}
			if ExitCode(err) != 1 {
				t.Errorf("ExitCode = %d, want 1", ExitCode(err))
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a:b:1.0"})
	_ = g.AddNode(dag.Node{ID: "c:d:2.0", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "a:b:1.0", To: "c:d:2.0"})
	graphPath := filepath.Join(dir, "graph.json")
	if err := io.ExportJSON(g, graphPath); err != nil {
		t.Fatal(err)
	}

	dotPath := filepath.Join(dir, "graph.dot")
	if err := execute(t, "", "render", graphPath, "--dot", dotPath, "--detailed"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `row: 1`) {
		t.Errorf("detailed DOT missing row label:\n%s", data)
	}

	if err := execute(t, "", "render", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing graph file")
	}
}

func TestCacheCommands(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != filepath.Join(xdg, "kdeps") {
		t.Errorf("cache path = %q", got)
	}

	if err := execute(t, "", "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		root := New(&bytes.Buffer{}, LogInfo).RootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"completion", shell})
		if err := root.Execute(); err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out.String(), "kdeps") {
			t.Errorf("completion %s does not mention kdeps", shell)
		}
	}

	if err := execute(t, "", "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
