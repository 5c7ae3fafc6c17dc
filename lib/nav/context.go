package nav

import (
	"errors"
	"fmt"

	"github.com/delving/itemnav/lib/search"
	"github.com/delving/itemnav/lib/store"
)

// Context is the navigation state of one detail page load.
// It is built by Load and updated in place by Cursor.Step.
type Context struct {
	Query        *ResultsQuery
	Tree         []string
	LastPage     int // 0 = unknown
	CurrentPage  int
	CurrentIndex int // -1 = current item not in Tree
	CurrentID    string

	// storedQuery is the persisted results query as read, restored when a step fails
	storedQuery string
}

// Load rebuilds the navigation context of the detail page at currentURL
// from st.
//
// ErrNoResultsContext and ErrUnsupportedContext disable navigation, for
// the latter the returned Context still carries the Query so the page can
// link back to the results. ErrMalformedURL is returned when currentURL
// does not identify an item.
func Load(st store.IStore, currentURL string) (*Context, error) {
	encoded, ok, err := store.GetString(st, KeyResultsQuery)
	if err != nil && !store.IsCode(err, store.RetCMalformedValue) {
		return nil, fmt.Errorf("read results query: %w", err)
	}
	if err != nil || !ok {
		return nil, ErrNoResultsContext
	}

	query, err := DecodeResultsQuery(encoded)
	if err != nil {
		log.Debugf("ignoring stored results query: %v", err)
		return nil, ErrNoResultsContext
	}
	if query.Unsupported() {
		return &Context{Query: query, CurrentPage: query.Page(), CurrentIndex: -1}, ErrUnsupportedContext
	}

	currentID, ok := search.ItemID(currentURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedURL, currentURL)
	}

	nc := &Context{
		Query:        query,
		CurrentPage:  query.Page(),
		CurrentIndex: -1,
		CurrentID:    currentID,
		storedQuery:  encoded,
	}

	if _, err := store.GetJSON(st, KeyTree, &nc.Tree); err != nil {
		if !store.IsCode(err, store.RetCMalformedValue) {
			return nil, fmt.Errorf("read navigation tree: %w", err)
		}
		log.Warningf("ignoring malformed navigation tree: %v", err)
		nc.Tree = nil
	}

	lastPage, _, err := store.GetInt(st, KeyLastPage)
	if err != nil {
		if !store.IsCode(err, store.RetCMalformedValue) {
			return nil, fmt.Errorf("read last page: %w", err)
		}
		log.Warningf("ignoring malformed last page: %v", err)
	}
	if lastPage > 0 {
		nc.LastPage = lastPage
	}

	nc.CurrentIndex = indexOf(nc.Tree, currentID)
	return nc, nil
}

// indexOf returns the first position of id in tree or -1
func indexOf(tree []string, id string) int {
	for i, v := range tree {
		if v == id {
			return i
		}
	}
	return -1
}

// --------------------------------------------------------------------------
// Controls
// --------------------------------------------------------------------------

// Control is the state of one navigation button
type Control struct {
	Disabled bool
	// Target is the detail path of the adjacent item when it is in the
	// cached window, empty when the step crosses a page boundary
	Target string
}

// Controls is the state of the navigation controls of a detail page
type Controls struct {
	Enabled  bool
	Reason   string // why navigation is off, empty when Enabled
	Previous Control
	Next     Control
	ReturnTo string // link back to the result list
}

// Controls returns the control state for the context.
func (c *Context) Controls() Controls {
	if c.CurrentIndex < 0 {
		return Controls{
			Reason:   "current item is not part of the stored results",
			Previous: Control{Disabled: true},
			Next:     Control{Disabled: true},
			ReturnTo: c.Query.String(),
		}
	}

	controls := Controls{
		Enabled: true,
		Previous: Control{
			Disabled: c.CurrentIndex == 0 && c.CurrentPage == 1,
		},
		Next: Control{
			Disabled: c.CurrentIndex == len(c.Tree)-1 && c.CurrentPage == c.LastPage,
		},
		ReturnTo: c.Query.String(),
	}
	if c.CurrentIndex > 0 {
		controls.Previous.Target = search.DetailPath(c.Tree[c.CurrentIndex-1])
	}
	if c.CurrentIndex < len(c.Tree)-1 {
		controls.Next.Target = search.DetailPath(c.Tree[c.CurrentIndex+1])
	}
	return controls
}

// DisabledControls returns the controls shown when Load reported err.
// query may be nil.
func DisabledControls(err error, query *ResultsQuery) Controls {
	controls := Controls{
		Reason:   "navigation unavailable",
		Previous: Control{Disabled: true},
		Next:     Control{Disabled: true},
	}
	switch {
	case errors.Is(err, ErrNoResultsContext):
		controls.Reason = ErrNoResultsContext.Error()
	case errors.Is(err, ErrUnsupportedContext):
		controls.Reason = ErrUnsupportedContext.Error()
	}
	if query != nil {
		controls.ReturnTo = query.String()
	}
	return controls
}
