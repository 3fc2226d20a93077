// Package dag provides the dependency graph recorded by a resolution run.
//
// # Overview
//
// Every coordinate the resolver reaches becomes a [Node]; every declaration
// it reads becomes an [Edge], including declarations that were skipped by an
// exclusion rule or pointed at an already visited coordinate. The graph is
// the machine-readable record of a run and feeds the JSON, DOT and SVG
// exports.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "a:b:1.0", Row: 0})
//	g.AddNode(dag.Node{ID: "c:d:2.0", Row: 1})
//	g.AddEdge(dag.Edge{From: "a:b:1.0", To: "c:d:2.0"})
//
// Nodes and edges keep insertion order, so a graph built by a depth-first
// traversal exports in traversal order.
//
// # Rows
//
// A node's Row is the depth at which it was first discovered. Later,
// shallower paths to the same coordinate do not move it: the resolver visits
// each coordinate once, and the row records when that happened.
//
// # Cycles
//
// Repository metadata can be cyclic. The graph accepts such edges and
// [DAG.BackEdges] reports the ones that close a cycle.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. The resolver builds the
// graph from its single coordinator goroutine.
package dag
