// Package report reads the JSON stats RapidCompact writes with
// --write_info and turns them into before/after summaries.
//
// The tool's stats schema is not fixed across versions, so counts are
// located by key name rather than by path: the shallowest numeric field
// whose key mentions triangles (or faces) and vertices wins.
package report
