// Package types defines the shared domain types for the Virtual TA
// retrieval pipeline: source documents, indexed chunks, retrieval
// results, and the query API request/response shapes.
package types
