// Package search is a small client of the paginated search API.
//
// FetchPage requests one page as JSON and returns the ordered item
// identifiers and the last page number. Identifiers are taken from the
// detail URL of each item: the part after "/aggregation/". Latency and
// failures are tracked in a go-metrics registry.
package search
