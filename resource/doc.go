// Package resource bounds the background work of a search: how many jobs run
// at once, how much memory their buffered data may hold, and how fast they
// may write.
package resource
