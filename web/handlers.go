package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/delving/itemnav/lib/nav"
	"github.com/delving/itemnav/lib/search"
	"github.com/go-chi/chi/v5"
)

// --------------------------------------------------------------------------
// Request and response bodies
// --------------------------------------------------------------------------

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// resultsRequest describes the result list a results page shows
type resultsRequest struct {
	Query    string   `json:"query"`
	Items    []string `json:"items"`
	LastPage int      `json:"lastPage"`
}

type controlResponse struct {
	Href     string `json:"href,omitempty"`
	Disabled bool   `json:"disabled"`
}

type controlsResponse struct {
	Enabled  bool            `json:"enabled"`
	Reason   string          `json:"reason,omitempty"`
	Previous controlResponse `json:"previous"`
	Next     controlResponse `json:"next"`
	ReturnTo string          `json:"returnTo,omitempty"`
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Backend: string(s.selector.Backend())})
}

func (s *Server) getMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	metrics.WritePrometheus(w, true)
}

func (s *Server) postResults(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "invalid_query", "query is required")
		return
	}
	if req.LastPage < 0 {
		writeError(w, http.StatusBadRequest, "invalid_last_page", "lastPage must not be negative")
		return
	}

	st := s.openStore(w, r)
	if err := nav.Remember(st, req.Query, req.Items, req.LastPage); err != nil {
		if errors.Is(err, nav.ErrNoResultsContext) {
			writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
			return
		}
		Logger.Errorf("remember results: %v", err)
		writeError(w, http.StatusInternalServerError, "store_failed", "could not store results")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteResults(w http.ResponseWriter, r *http.Request) {
	if err := nav.Forget(s.openStore(w, r)); err != nil {
		Logger.Errorf("forget results: %v", err)
		writeError(w, http.StatusInternalServerError, "store_failed", "could not remove results")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getControls(w http.ResponseWriter, r *http.Request) {
	current := r.URL.Query().Get("current")
	nc, err := nav.Load(s.openStore(w, r), current)

	switch {
	case errors.Is(err, nav.ErrMalformedURL):
		writeError(w, http.StatusBadRequest, "malformed_url", err.Error())
	case errors.Is(err, nav.ErrNoResultsContext):
		writeJSON(w, http.StatusOK, toControlsResponse(nav.DisabledControls(err, nil), current))
	case errors.Is(err, nav.ErrUnsupportedContext):
		writeJSON(w, http.StatusOK, toControlsResponse(nav.DisabledControls(err, nc.Query), current))
	case err != nil:
		Logger.Errorf("load navigation context: %v", err)
		writeError(w, http.StatusInternalServerError, "store_failed", "could not load navigation context")
	default:
		writeJSON(w, http.StatusOK, toControlsResponse(nc.Controls(), current))
	}
}

// getStep redirects to the previous or next item. Whenever the step does not
// move, the browser is sent back to the current item.
func (s *Server) getStep(w http.ResponseWriter, r *http.Request) {
	dir, err := nav.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_direction", err.Error())
		return
	}

	current := r.URL.Query().Get("current")
	currentID, ok := search.ItemID(current)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed_url", nav.ErrMalformedURL.Error())
		return
	}
	stay := search.DetailPath(currentID)

	st := s.openStore(w, r)
	nc, err := nav.Load(st, current)
	if err != nil {
		if !errors.Is(err, nav.ErrNoResultsContext) && !errors.Is(err, nav.ErrUnsupportedContext) {
			Logger.Errorf("load navigation context: %v", err)
		}
		http.Redirect(w, r, stay, http.StatusSeeOther)
		return
	}

	result, err := nav.NewCursor(st, s.fetcher).Step(r.Context(), nc, dir)
	if err != nil {
		if !errors.Is(err, nav.ErrStepAbandoned) {
			Logger.Errorf("%s step from %s: %v", dir, currentID, err)
		}
		http.Redirect(w, r, stay, http.StatusSeeOther)
		return
	}
	if !result.Moved() {
		http.Redirect(w, r, stay, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, result.Target, http.StatusSeeOther)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// toControlsResponse links enabled controls either directly to the adjacent
// item or, at a page boundary, to the step endpoint.
func toControlsResponse(c nav.Controls, current string) controlsResponse {
	link := func(dir nav.Direction, control nav.Control) controlResponse {
		resp := controlResponse{Disabled: control.Disabled}
		switch {
		case control.Disabled:
		case control.Target != "":
			resp.Href = control.Target
		default:
			resp.Href = "/nav/" + dir.String() + "?current=" + url.QueryEscape(current)
		}
		return resp
	}

	return controlsResponse{
		Enabled:  c.Enabled,
		Reason:   c.Reason,
		Previous: link(nav.Previous, c.Previous),
		Next:     link(nav.Next, c.Next),
		ReturnTo: c.ReturnTo,
	}
}
