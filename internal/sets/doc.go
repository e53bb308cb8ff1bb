// Package sets implements the ordered sets and map helpers the analysis
// phases share.
//
// Every set the analyzer derives (branch groups, concurrency pairs,
// subscriptions, successor relations) must iterate in a defined order so
// that graph construction and reports are reproducible. Sets here are
// hash maps for O(1) membership; iteration whose order can reach a result
// goes through [Set.Sorted] or [SortedKeys], while order-insensitive set
// algebra ranges over the maps directly.
package sets
