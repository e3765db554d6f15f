// Package relgraph indexes the typed edges of a type catalog.
//
// The graph is built in one linear pass over the catalog and is immutable
// afterwards, so queries may run from any number of goroutines. Forward
// (what a type points at) and inverse (who points at a type) lookups are
// map reads; neither walks the graph.
//
// Edges that point at identifiers missing from the catalog are kept as-is.
// They are reported by Dangling and left for consumers to render.
package relgraph
