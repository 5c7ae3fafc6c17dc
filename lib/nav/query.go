package nav

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	paramQuery  = "q"
	paramPage   = "page"
	paramFormat = "format"

	searchPath    = "/search/"
	apiSearchPath = "/api/search/v2/"
)

// virtual websites serve their search under /vw/<slug>/search/
var virtualWebsiteSearch = regexp.MustCompile(`^/vw/([^/]+)/search/`)

// ResultsQuery is the URL of a result list the user navigates through.
type ResultsQuery struct {
	u      *url.URL
	params url.Values
	page   int
}

// ParseResultsQuery parses a results URL. A missing search term is added
// as an empty one, a missing or invalid page means page 1.
func ParseResultsQuery(raw string) (*ResultsQuery, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty results url", ErrNoResultsContext)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoResultsContext, err)
	}

	params := u.Query()
	if _, ok := params[paramQuery]; !ok {
		params.Set(paramQuery, "")
	}

	page := 1
	if p, err := strconv.Atoi(params.Get(paramPage)); err == nil && p > 0 {
		page = p
	}

	return &ResultsQuery{u: u, params: params, page: page}, nil
}

// DecodeResultsQuery parses a base64 encoded results URL as stored under KeyResultsQuery
func DecodeResultsQuery(encoded string) (*ResultsQuery, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoResultsContext, err)
	}
	return ParseResultsQuery(string(raw))
}

// Page returns the page number of the query
func (q *ResultsQuery) Page() int {
	return q.page
}

// Unsupported reports whether the results belong to a virtual collection
func (q *ResultsQuery) Unsupported() bool {
	return strings.Contains(q.u.Path, UnsupportedMarker)
}

// WithPage returns a copy of the query pointing to page
func (q *ResultsQuery) WithPage(page int) *ResultsQuery {
	u := *q.u
	params := make(url.Values, len(q.params)+1)
	for k, v := range q.params {
		params[k] = append([]string(nil), v...)
	}
	params.Set(paramPage, strconv.Itoa(page))
	return &ResultsQuery{u: &u, params: params, page: page}
}

// String returns the results URL, used as link back to the results
func (q *ResultsQuery) String() string {
	u := *q.u
	u.RawQuery = q.params.Encode()
	return u.String()
}

// Encode returns the base64 form stored under KeyResultsQuery
func (q *ResultsQuery) Encode() string {
	return EncodeResultsURL(q.String())
}

// APIPath returns path and query of the search API request with the same
// filters. Scheme and host are dropped, the API client resolves the path
// against its own base URL.
func (q *ResultsQuery) APIPath() string {
	path := q.u.Path
	if m := virtualWebsiteSearch.FindStringSubmatch(path); m != nil {
		path = "/vw/" + m[1] + "/api/" + path[len(m[0]):]
	} else {
		path = strings.Replace(path, searchPath, apiSearchPath, 1)
	}

	params := make(url.Values, len(q.params)+1)
	for k, v := range q.params {
		params[k] = v
	}
	params.Set(paramFormat, "json")

	return (&url.URL{Path: path, RawQuery: params.Encode()}).String()
}

// EncodeResultsURL returns the base64 form of a results URL
func EncodeResultsURL(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}
