// Package inmemoryarg provides a thread-safe, in-memory arena implementation
// of the argstore.Store interface. Nodes live in a slice of slots; removed
// slots go on a free list and their generation is bumped on reuse so stale
// handles are detected.
package inmemoryarg
