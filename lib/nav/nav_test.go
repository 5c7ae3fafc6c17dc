package nav

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/delving/itemnav/lib/db/engines/memory"
	"github.com/delving/itemnav/lib/search"
	"github.com/delving/itemnav/lib/store"
	"github.com/delving/itemnav/lib/store/sstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsURL = "/search/?q=vermeer&qf=type:painting"

// fakeFetcher serves pages by number and records every request
type fakeFetcher struct {
	pages   map[int]search.Page
	err     error
	calls   []string
	onFetch func(apiPath string)
}

func (f *fakeFetcher) FetchPage(_ context.Context, apiPath string) (search.Page, error) {
	f.calls = append(f.calls, apiPath)
	if f.onFetch != nil {
		f.onFetch(apiPath)
	}
	if f.err != nil {
		return search.Page{}, f.err
	}
	u, err := url.Parse(apiPath)
	if err != nil {
		return search.Page{}, err
	}
	page, _ := strconv.Atoi(u.Query().Get("page"))
	return f.pages[page], nil
}

func newStore(t *testing.T) store.IStore {
	database := memory.NewMemoryDB(&memory.DBOptions{GCInterval: time.Hour})
	t.Cleanup(func() { _ = database.Close() })
	return sstore.NewSessionStore(database, "test", time.Hour)
}

func setup(t *testing.T, results string, tree []string, lastPage int) store.IStore {
	st := newStore(t)
	require.NoError(t, Remember(st, results, tree, lastPage))
	return st
}

func load(t *testing.T, st store.IStore, id string) *Context {
	nc, err := Load(st, "/resource/aggregation/"+id+"/")
	require.NoError(t, err)
	return nc
}

func storedPage(t *testing.T, st store.IStore) int {
	encoded, ok, err := store.GetString(st, KeyResultsQuery)
	require.NoError(t, err)
	require.True(t, ok)
	query, err := DecodeResultsQuery(encoded)
	require.NoError(t, err)
	return query.Page()
}

func storedTree(t *testing.T, st store.IStore) []string {
	var tree []string
	_, err := store.GetJSON(st, KeyTree, &tree)
	require.NoError(t, err)
	return tree
}

// --------------------------------------------------------------------------
// Results query
// --------------------------------------------------------------------------

func TestParseResultsQuery(t *testing.T) {
	q, err := ParseResultsQuery("/search/?qf=type:painting")
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page())
	assert.Equal(t, "", q.params.Get("q"))
	_, hasQ := q.params["q"]
	assert.True(t, hasQ)
	_, hasPage := q.params["page"]
	assert.False(t, hasPage)

	q, err = ParseResultsQuery("/search/?q=x&page=4")
	require.NoError(t, err)
	assert.Equal(t, 4, q.Page())

	q, err = ParseResultsQuery("/search/?q=x&page=abc")
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page())

	_, err = ParseResultsQuery("  ")
	assert.ErrorIs(t, err, ErrNoResultsContext)
}

func TestWithPage(t *testing.T) {
	q, err := ParseResultsQuery(resultsURL)
	require.NoError(t, err)

	next := q.WithPage(2)
	assert.Equal(t, 2, next.Page())
	assert.Equal(t, 1, q.Page())
	assert.Equal(t, "/search/?page=2&q=vermeer&qf=type%3Apainting", next.String())
	assert.Equal(t, "/search/?q=vermeer&qf=type%3Apainting", q.String())

	decoded, err := DecodeResultsQuery(next.Encode())
	require.NoError(t, err)
	assert.Equal(t, next.String(), decoded.String())
}

func TestAPIPath(t *testing.T) {
	tests := []struct {
		results string
		want    string
	}{
		{"/search/?q=x&page=2", "/api/search/v2/?format=json&page=2&q=x"},
		{"http://example.org/search/?q=x", "/api/search/v2/?format=json&q=x"},
		{"/vw/museum/search/?q=x", "/vw/museum/api/?format=json&q=x"},
		{"/search/?format=html", "/api/search/v2/?format=json&q="},
	}
	for _, tt := range tests {
		q, err := ParseResultsQuery(tt.results)
		require.NoError(t, err)
		assert.Equal(t, tt.want, q.APIPath(), tt.results)
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"previous": Previous, "prev": Previous, " Next ": Next} {
		got, err := ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDirection("up")
	assert.Error(t, err)
	assert.Equal(t, "next", Next.String())
}

// --------------------------------------------------------------------------
// Load and controls
// --------------------------------------------------------------------------

func TestLoadWithoutResultsContext(t *testing.T) {
	st := newStore(t)
	_, err := Load(st, "/resource/aggregation/s/a")
	assert.ErrorIs(t, err, ErrNoResultsContext)

	require.NoError(t, st.Set(KeyResultsQuery, "not base64!"))
	_, err = Load(st, "/resource/aggregation/s/a")
	assert.ErrorIs(t, err, ErrNoResultsContext)

	controls := DisabledControls(err, nil)
	assert.False(t, controls.Enabled)
	assert.True(t, controls.Previous.Disabled)
	assert.True(t, controls.Next.Disabled)
}

func TestLoadMalformedURL(t *testing.T) {
	st := setup(t, resultsURL, []string{"s/a"}, 1)
	_, err := Load(st, "/resource/other/s/a")
	assert.ErrorIs(t, err, ErrMalformedURL)
}

func TestLoad(t *testing.T) {
	st := setup(t, "/search/?q=x&page=2", []string{"s/a", "s/b", "s/b"}, 5)
	nc := load(t, st, "s/b")

	assert.Equal(t, []string{"s/a", "s/b", "s/b"}, nc.Tree)
	assert.Equal(t, 2, nc.CurrentPage)
	assert.Equal(t, 5, nc.LastPage)
	assert.Equal(t, 1, nc.CurrentIndex)
	assert.Equal(t, "s/b", nc.CurrentID)

	nc = load(t, st, "s/z")
	assert.Equal(t, -1, nc.CurrentIndex)
	controls := nc.Controls()
	assert.False(t, controls.Enabled)
	assert.True(t, controls.Previous.Disabled)
	assert.True(t, controls.Next.Disabled)
}

func TestLoadToleratesMalformedState(t *testing.T) {
	st := setup(t, resultsURL, []string{"s/a"}, 0)
	require.NoError(t, st.Set(KeyTree, "{broken"))
	require.NoError(t, st.Set(KeyLastPage, "many"))

	nc := load(t, st, "s/a")
	assert.Empty(t, nc.Tree)
	assert.Zero(t, nc.LastPage)
	assert.Equal(t, -1, nc.CurrentIndex)
}

func TestControls(t *testing.T) {
	tests := []struct {
		name         string
		results      string
		current      string
		lastPage     int
		prevDisabled bool
		nextDisabled bool
	}{
		{"absolute start", "/search/?q=x", "s/a", 3, true, false},
		{"start of later page", "/search/?q=x&page=2", "s/a", 3, false, false},
		{"middle", "/search/?q=x", "s/b", 3, false, false},
		{"end of earlier page", "/search/?q=x&page=2", "s/c", 3, false, false},
		{"absolute end", "/search/?q=x&page=3", "s/c", 3, false, true},
		{"end with unknown last page", "/search/?q=x&page=3", "s/c", 0, false, false},
		{"single page", "/search/?q=x", "s/c", 1, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := setup(t, tt.results, []string{"s/a", "s/b", "s/c"}, tt.lastPage)
			controls := load(t, st, tt.current).Controls()
			assert.True(t, controls.Enabled)
			assert.Equal(t, tt.prevDisabled, controls.Previous.Disabled, "previous")
			assert.Equal(t, tt.nextDisabled, controls.Next.Disabled, "next")
		})
	}

	st := setup(t, resultsURL, []string{"s/a", "s/b", "s/c"}, 3)
	controls := load(t, st, "s/b").Controls()
	assert.Equal(t, "/resource/aggregation/s/a", controls.Previous.Target)
	assert.Equal(t, "/resource/aggregation/s/c", controls.Next.Target)
	assert.Equal(t, "/search/?q=vermeer&qf=type%3Apainting", controls.ReturnTo)
}

func TestUnsupportedContext(t *testing.T) {
	st := setup(t, "/vc/collection/?q=x", []string{"s/a", "s/b"}, 2)
	fetcher := &fakeFetcher{}

	nc, err := Load(st, "/resource/aggregation/s/b")
	require.ErrorIs(t, err, ErrUnsupportedContext)
	require.NotNil(t, nc)

	controls := DisabledControls(err, nc.Query)
	assert.False(t, controls.Enabled)
	assert.True(t, controls.Previous.Disabled)
	assert.True(t, controls.Next.Disabled)
	assert.Equal(t, "/vc/collection/?q=x", controls.ReturnTo)

	result, err := NewCursor(st, fetcher).Step(context.Background(), nc, Next)
	require.NoError(t, err)
	assert.False(t, result.Moved())
	assert.Empty(t, fetcher.calls)
}

// --------------------------------------------------------------------------
// Steps
// --------------------------------------------------------------------------

func TestFastPath(t *testing.T) {
	st := setup(t, resultsURL, []string{"s/a", "s/b", "s/c"}, 3)
	fetcher := &fakeFetcher{}
	cursor := NewCursor(st, fetcher)
	fastBefore := stepsFast.Get()

	nc := load(t, st, "s/b")
	result, err := cursor.Step(context.Background(), nc, Next)
	require.NoError(t, err)
	assert.Equal(t, Result{Target: "/resource/aggregation/s/c", ID: "s/c", Path: PathFast}, result)
	assert.Equal(t, 2, nc.CurrentIndex)

	nc = load(t, st, "s/b")
	result, err = cursor.Step(context.Background(), nc, Previous)
	require.NoError(t, err)
	assert.Equal(t, "/resource/aggregation/s/a", result.Target)

	assert.Empty(t, fetcher.calls)
	assert.Equal(t, fastBefore+2, stepsFast.Get())
}

func TestSlowPathForward(t *testing.T) {
	st := setup(t, resultsURL, []string{"s/a", "s/b", "s/c"}, 3)

	var pageDuringFetch int
	fetcher := &fakeFetcher{
		pages: map[int]search.Page{2: {IDs: []string{"s/d", "s/e"}, LastPage: 3}},
	}
	fetcher.onFetch = func(string) { pageDuringFetch = storedPage(t, st) }

	nc := load(t, st, "s/c")
	result, err := NewCursor(st, fetcher).Step(context.Background(), nc, Next)
	require.NoError(t, err)

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, "/api/search/v2/?format=json&page=2&q=vermeer&qf=type%3Apainting", fetcher.calls[0])
	assert.Equal(t, 2, pageDuringFetch)

	assert.Equal(t, Result{Target: "/resource/aggregation/s/d", ID: "s/d", Path: PathSlow}, result)
	assert.Equal(t, []string{"s/d", "s/e"}, storedTree(t, st))
	assert.Equal(t, 2, storedPage(t, st))

	assert.Equal(t, 2, nc.CurrentPage)
	assert.Equal(t, 0, nc.CurrentIndex)
	assert.Equal(t, []string{"s/d", "s/e"}, nc.Tree)

	// the detail page of the target sees the new window
	next := load(t, st, "s/d")
	assert.Equal(t, 0, next.CurrentIndex)
	assert.False(t, next.Controls().Previous.Disabled)
}

func TestSlowPathBackward(t *testing.T) {
	st := setup(t, "/search/?q=x&page=2", []string{"s/d", "s/e"}, 0)
	fetcher := &fakeFetcher{
		pages: map[int]search.Page{1: {IDs: []string{"s/a", "s/b", "s/c"}, LastPage: 3}},
	}

	nc := load(t, st, "s/d")
	result, err := NewCursor(st, fetcher).Step(context.Background(), nc, Previous)
	require.NoError(t, err)

	assert.Equal(t, "/resource/aggregation/s/c", result.Target)
	assert.Equal(t, []string{"s/a", "s/b", "s/c"}, storedTree(t, st))
	assert.Equal(t, 1, storedPage(t, st))

	lastPage, ok, err := store.GetInt(st, KeyLastPage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, lastPage)
	assert.Equal(t, 3, nc.LastPage)
}

func TestEscapedIDsStayOpaque(t *testing.T) {
	const (
		video = "http%3A%2F%2Fwww.openbeelden.nl%2Ffiles%2F01%2F65%2F165083.mpg"
		odd   = "ds/what%3Fis%23this"
	)
	st := setup(t, resultsURL, []string{"s/a", video}, 3)
	fetcher := &fakeFetcher{
		pages: map[int]search.Page{2: {IDs: []string{odd, "s/z"}, LastPage: 3}},
	}

	nc := load(t, st, video)
	require.Equal(t, 1, nc.CurrentIndex)
	assert.Equal(t, "/resource/aggregation/s/a", nc.Controls().Previous.Target)

	result, err := NewCursor(st, fetcher).Step(context.Background(), nc, Next)
	require.NoError(t, err)
	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, Result{Target: "/resource/aggregation/" + odd, ID: odd, Path: PathSlow}, result)
	assert.Equal(t, []string{odd, "s/z"}, storedTree(t, st))

	// the redirect target resolves back to the same window position
	next, err := Load(st, result.Target)
	require.NoError(t, err)
	assert.Equal(t, odd, next.CurrentID)
	assert.Equal(t, 0, next.CurrentIndex)
}

func TestSlowPathFailure(t *testing.T) {
	st := setup(t, resultsURL, []string{"s/a", "s/b", "s/c"}, 3)
	encodedBefore, _, _ := store.GetString(st, KeyResultsQuery)
	failuresBefore := stepFailures.Get()

	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	nc := load(t, st, "s/c")
	result, err := NewCursor(st, fetcher).Step(context.Background(), nc, Next)

	assert.ErrorIs(t, err, ErrStepAbandoned)
	assert.False(t, result.Moved())
	assert.Len(t, fetcher.calls, 1)
	assert.Equal(t, []string{"s/a", "s/b", "s/c"}, storedTree(t, st))

	encodedAfter, _, _ := store.GetString(st, KeyResultsQuery)
	assert.Equal(t, encodedBefore, encodedAfter)
	assert.Equal(t, 1, nc.CurrentPage)
	assert.Equal(t, 2, nc.CurrentIndex)
	assert.Equal(t, failuresBefore+1, stepFailures.Get())
}

func TestEmptyPageIsInert(t *testing.T) {
	st := setup(t, resultsURL, []string{"s/a", "s/b", "s/c"}, 0)
	fetcher := &fakeFetcher{pages: map[int]search.Page{2: {}}}

	nc := load(t, st, "s/c")
	result, err := NewCursor(st, fetcher).Step(context.Background(), nc, Next)
	require.NoError(t, err)
	assert.False(t, result.Moved())
	assert.Len(t, fetcher.calls, 1)
	assert.Equal(t, []string{"s/a", "s/b", "s/c"}, storedTree(t, st))
	assert.Equal(t, 1, storedPage(t, st))
}

func TestSeamDuplicatesAreSkipped(t *testing.T) {
	st := setup(t, resultsURL, []string{"s/a", "s/b", "s/c"}, 0)
	fetcher := &fakeFetcher{pages: map[int]search.Page{2: {IDs: []string{"s/c", "s/d"}}}}

	nc := load(t, st, "s/c")
	result, err := NewCursor(st, fetcher).Step(context.Background(), nc, Next)
	require.NoError(t, err)
	assert.Equal(t, "s/d", result.ID)
	assert.Equal(t, 1, nc.CurrentIndex)

	// a page holding only the current item is inert
	st = setup(t, resultsURL, []string{"s/a", "s/b", "s/c"}, 0)
	fetcher = &fakeFetcher{pages: map[int]search.Page{2: {IDs: []string{"s/c"}}}}
	nc = load(t, st, "s/c")
	result, err = NewCursor(st, fetcher).Step(context.Background(), nc, Next)
	require.NoError(t, err)
	assert.False(t, result.Moved())
}

func TestStepsBeyondKnownPagesAreInert(t *testing.T) {
	fetcher := &fakeFetcher{}

	st := setup(t, resultsURL, []string{"s/a", "s/b"}, 3)
	nc := load(t, st, "s/a")
	result, err := NewCursor(st, fetcher).Step(context.Background(), nc, Previous)
	require.NoError(t, err)
	assert.False(t, result.Moved())

	st = setup(t, "/search/?q=x&page=3", []string{"s/a", "s/b"}, 3)
	nc = load(t, st, "s/b")
	result, err = NewCursor(st, fetcher).Step(context.Background(), nc, Next)
	require.NoError(t, err)
	assert.False(t, result.Moved())

	assert.Empty(t, fetcher.calls)
}

func TestRememberAndForget(t *testing.T) {
	st := newStore(t)
	require.NoError(t, Remember(st, resultsURL, []string{"s/a"}, 2))

	encoded, _, err := store.GetString(st, KeyResultsQuery)
	require.NoError(t, err)
	assert.Equal(t, EncodeResultsURL(resultsURL), encoded)
	assert.Equal(t, []string{"s/a"}, storedTree(t, st))

	require.NoError(t, Remember(st, resultsURL, nil, 0))
	_, ok, err := st.Get(KeyLastPage)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{}, storedTree(t, st))

	require.NoError(t, Forget(st))
	for _, key := range []string{KeyResultsQuery, KeyTree, KeyLastPage} {
		_, ok, err := st.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	assert.ErrorIs(t, Remember(st, "", nil, 0), ErrNoResultsContext)
}
