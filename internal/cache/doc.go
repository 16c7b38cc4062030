// Package cache holds the in-memory resource cache shared by every fetch.
//
// LRU is bounded by entry count, by summed value weight, or both. Get marks a
// value most recently used; Put evicts from the least recently used end until
// the bounds hold. Values are never persisted and never expire on their own:
// they leave only through eviction, Remove or Clear.
//
// All methods lock internally, so callers share one *LRU across goroutines
// without further coordination.
package cache
