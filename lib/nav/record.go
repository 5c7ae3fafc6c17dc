package nav

import (
	"fmt"

	"github.com/delving/itemnav/lib/store"
)

// Remember stores the result list the user is looking at so that its
// detail pages can navigate through it. lastPage 0 means unknown.
func Remember(st store.IStore, resultsURL string, ids []string, lastPage int) error {
	query, err := ParseResultsQuery(resultsURL)
	if err != nil {
		return err
	}
	if query.Unsupported() {
		log.Debugf("remembering results of an unsupported context: %s", resultsURL)
	}
	if ids == nil {
		ids = []string{}
	}

	if err := st.Set(KeyResultsQuery, EncodeResultsURL(resultsURL)); err != nil {
		return fmt.Errorf("store results query: %w", err)
	}
	if err := st.Set(KeyTree, ids); err != nil {
		return fmt.Errorf("store navigation tree: %w", err)
	}
	if lastPage > 0 {
		if err := st.Set(KeyLastPage, lastPage); err != nil {
			return fmt.Errorf("store last page: %w", err)
		}
	} else if err := st.Remove(KeyLastPage); err != nil {
		return fmt.Errorf("remove last page: %w", err)
	}
	return nil
}

// Forget removes the stored result list
func Forget(st store.IStore) error {
	for _, key := range []string{KeyResultsQuery, KeyTree, KeyLastPage} {
		if err := st.Remove(key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}
