// Package recordstore keeps the durable log of a search: the run
// specification, every root input and every accepted candidate.
//
// Rows are keyed by a sha256 of their content and inserted only if absent,
// so replaying a search after a crash never duplicates rows.
package recordstore
