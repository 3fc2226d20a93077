package io

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/kdeps/pkg/dag"
)

func sampleGraph(t *testing.T) *dag.DAG {
	t.Helper()
	g := dag.New(dag.Metadata{"run_id": "r1"})
	for _, n := range []dag.Node{
		{ID: "a:b:1.0", Meta: dag.Metadata{"status": "resolved"}},
		{ID: "c:d:2.0", Row: 1, Meta: dag.Metadata{"status": "resolved"}},
		{ID: "x:y:3.0", Row: 2, Meta: dag.Metadata{"status": "excluded"}},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	edges := []dag.Edge{
		{From: "a:b:1.0", To: "c:d:2.0", Meta: dag.Metadata{"scope": "compile"}},
		{From: "c:d:2.0", To: "x:y:3.0", Meta: dag.Metadata{"excluded": "x:y"}},
		{From: "c:d:2.0", To: "a:b:1.0", Meta: dag.Metadata{"repeat": true}},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "graph.json")
	if err := ExportJSON(sampleGraph(t), path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	g, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	if g.Meta()["run_id"] != "r1" {
		t.Errorf("graph meta = %v", g.Meta())
	}
	if got := dag.NodeIDs(g.Nodes()); strings.Join(got, ",") != "a:b:1.0,c:d:2.0,x:y:3.0" {
		t.Errorf("node order = %v", got)
	}
	n, _ := g.Node("x:y:3.0")
	if n.Row != 2 || n.Meta["status"] != "excluded" {
		t.Errorf("x:y node = %+v", n)
	}
	edges := g.Edges()
	if len(edges) != 3 {
		t.Fatalf("edges = %d, want 3", len(edges))
	}
	if edges[1].Meta["excluded"] != "x:y" || edges[2].Meta["repeat"] != true {
		t.Errorf("edge meta lost: %v", edges)
	}
	if g.IsAcyclic() {
		t.Error("cycle lost on import")
	}
}

func TestWriteJSONOmitsSeedRow(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleGraph(t), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, `"row"`) != 2 {
		t.Errorf("expected rows only for non-seed nodes:\n%s", out)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"duplicate", `{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`, dag.ErrDuplicateNodeID},
		{"empty id", `{"nodes":[{"id":""}],"edges":[]}`, dag.ErrInvalidNodeID},
		{"unknown target", `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"b"}]}`, dag.ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ReadJSON(strings.NewReader("{")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected open error")
	}
}
