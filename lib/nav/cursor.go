package nav

import (
	"context"
	"fmt"

	"github.com/delving/itemnav/lib/search"
	"github.com/delving/itemnav/lib/store"
)

// PageFetcher loads one page of results from the search API
type PageFetcher interface {
	FetchPage(ctx context.Context, apiPath string) (search.Page, error)
}

// Path tells how a step found its target
type Path string

const (
	PathNone Path = ""     // inert step
	PathFast Path = "fast" // target was in the cached window
	PathSlow Path = "slow" // target was fetched from the adjacent page
)

// Result is the outcome of a step. An inert step has an empty Target.
type Result struct {
	Target string // detail path to navigate to
	ID     string
	Path   Path
}

// Moved reports whether the step has a target
func (r Result) Moved() bool {
	return r.Target != ""
}

// Cursor moves through a result list one item at a time
type Cursor struct {
	store   store.IStore
	fetcher PageFetcher
}

// NewCursor creates a cursor persisting its state in st and loading pages with fetcher
func NewCursor(st store.IStore, fetcher PageFetcher) *Cursor {
	return &Cursor{store: st, fetcher: fetcher}
}

// Step moves from the current item of nc in direction dir.
//
// Within the cached window no request is made. At the edge of the window
// the adjacent page is requested, after the results query pointing to it
// has been persisted. On success the page replaces the window and nc is
// updated. When the request fails the stored query is restored and an
// error wrapping ErrStepAbandoned is returned. Steps beyond the first or the
// last known page and steps onto an empty page are inert.
func (c *Cursor) Step(ctx context.Context, nc *Context, dir Direction) (Result, error) {
	if dir != Previous && dir != Next {
		return Result{}, fmt.Errorf("invalid direction %d", int(dir))
	}
	if nc.CurrentIndex < 0 {
		stepsInert.Inc()
		return Result{}, nil
	}

	target := nc.CurrentIndex + int(dir)
	if target >= 0 && target < len(nc.Tree) {
		nc.CurrentIndex = target
		nc.CurrentID = nc.Tree[target]
		stepsFast.Inc()
		return Result{Target: search.DetailPath(nc.CurrentID), ID: nc.CurrentID, Path: PathFast}, nil
	}

	return c.crossBoundary(ctx, nc, dir)
}

// crossBoundary loads the adjacent page and moves onto its first or last item
func (c *Cursor) crossBoundary(ctx context.Context, nc *Context, dir Direction) (Result, error) {
	newPage := nc.CurrentPage + int(dir)
	if newPage < 1 || (nc.LastPage > 0 && newPage > nc.LastPage) {
		stepsInert.Inc()
		return Result{}, nil
	}

	query := nc.Query.WithPage(newPage)
	if err := c.store.Set(KeyResultsQuery, query.Encode()); err != nil {
		stepFailures.Inc()
		return Result{}, fmt.Errorf("%w: persist results query: %v", ErrStepAbandoned, err)
	}

	page, err := c.fetcher.FetchPage(ctx, query.APIPath())
	if err != nil {
		c.restore(nc)
		stepFailures.Inc()
		log.Warningf("abandoned %s step to page %d: %v", dir, newPage, err)
		return Result{}, fmt.Errorf("%w: %v", ErrStepAbandoned, err)
	}

	target := seamTarget(page.IDs, nc.CurrentID, dir)
	if target < 0 {
		c.restore(nc)
		stepsInert.Inc()
		log.Infof("page %d has no item to move to, staying on %s", newPage, nc.CurrentID)
		return Result{}, nil
	}

	if err := c.store.Set(KeyTree, page.IDs); err != nil {
		c.restore(nc)
		stepFailures.Inc()
		return Result{}, fmt.Errorf("%w: persist navigation tree: %v", ErrStepAbandoned, err)
	}
	if page.LastPage > 0 {
		if err := c.store.Set(KeyLastPage, page.LastPage); err != nil {
			log.Warningf("could not persist last page %d: %v", page.LastPage, err)
		} else {
			nc.LastPage = page.LastPage
		}
	}

	nc.Query = query
	nc.storedQuery = query.Encode()
	nc.CurrentPage = newPage
	nc.Tree = page.IDs
	nc.CurrentIndex = target
	nc.CurrentID = page.IDs[target]

	stepsSlow.Inc()
	return Result{Target: search.DetailPath(nc.CurrentID), ID: nc.CurrentID, Path: PathSlow}, nil
}

// restore writes back the results query nc was loaded with
func (c *Cursor) restore(nc *Context) {
	previous := nc.storedQuery
	if previous == "" {
		previous = nc.Query.Encode()
	}
	if err := c.store.Set(KeyResultsQuery, previous); err != nil {
		log.Errorf("could not restore results query: %v", err)
	}
}

// seamTarget returns the index to move to on a freshly loaded page: the
// first id when moving forward, the last when moving backward. Ids equal
// to the current one at the seam are skipped. -1 means nothing to move to.
func seamTarget(ids []string, currentID string, dir Direction) int {
	if dir == Next {
		for i := 0; i < len(ids); i++ {
			if ids[i] != currentID {
				return i
			}
		}
		return -1
	}
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] != currentID {
			return i
		}
	}
	return -1
}
