// Package nav lets a user step through search results one item at a time
// from an item detail page.
//
// The state lives in a store.IStore under three keys: the base64 encoded
// results URL (KeyResultsQuery), the ids of the current result page
// (KeyTree) and the highest known page (KeyLastPage). Remember writes them
// from a result list, Load turns them into a Context for one detail page,
// and Cursor.Step moves the Context to the previous or next item. Steps
// inside the stored page are served locally, steps across a page boundary
// fetch the adjacent page through a PageFetcher.
package nav
