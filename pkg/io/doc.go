// Package io reads and writes resolved dependency graphs as JSON.
//
// # JSON Format
//
//	{
//	  "meta": {"run_id": "…", "seeds": ["a:b:1.0"], "exclusion_key": "version"},
//	  "nodes": [
//	    {"id": "a:b:1.0", "meta": {"status": "resolved", "download": "downloaded"}},
//	    {"id": "x:y:3.0", "row": 2, "meta": {"status": "excluded"}}
//	  ],
//	  "edges": [
//	    {"from": "a:b:1.0", "to": "c:d:2.0", "meta": {"scope": "compile"}},
//	    {"from": "c:d:2.0", "to": "x:y:3.0", "meta": {"excluded": "x:y"}}
//	  ]
//	}
//
// A node's row is the depth at which it was first discovered; it is
// omitted for seeds. Node and edge metadata use the keys defined by
// package deps (status, download, excluded, repeat, pruned, scope, …).
//
// # Export and Import
//
// [ExportJSON] and [WriteJSON] serialize a graph; [ImportJSON] and
// [ReadJSON] restore it so a saved run can be rendered again without
// touching the repository:
//
//	if err := io.ExportJSON(res.Graph, "graph.json"); err != nil {
//	    return err
//	}
//	g, err := io.ImportJSON("graph.json")
package io
