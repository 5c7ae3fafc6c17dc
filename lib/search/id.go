package search

import (
	"strings"
)

// AggregationMarker separates the host part of a detail URL from the item id
const AggregationMarker = "/aggregation/"

// ItemID extracts the item identifier from a detail URL: everything after
// the first "/aggregation/" up to the query or fragment, without trailing
// slash. The id may itself contain slashes ("dataset/local-id") and is kept
// exactly as written, percent-escapes included.
func ItemID(detailURL string) (string, bool) {
	path, _, _ := strings.Cut(detailURL, "#")
	path, _, _ = strings.Cut(path, "?")
	_, id, found := strings.Cut(path, AggregationMarker)
	if !found {
		return "", false
	}
	id = strings.TrimRight(id, "/")
	if id == "" {
		return "", false
	}
	return id, true
}

// DetailPath returns the path of the detail page of id
func DetailPath(id string) string {
	return "/resource" + AggregationMarker + id
}
