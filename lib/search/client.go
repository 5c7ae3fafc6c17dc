package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/delving/itemnav/lib/common"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/tidwall/gjson"
)

var log = logger.GetLogger("search")

// maxBodySize bounds the response body that is read for one page
const maxBodySize = 8 << 20

var (
	// ErrMalformedResponse is returned when a response is not a result page
	ErrMalformedResponse = errors.New("malformed search response")
	// ErrUnexpectedStatus is returned for non 2xx responses
	ErrUnexpectedStatus = errors.New("unexpected search response status")
)

// Page is one page of search results
type Page struct {
	IDs      []string // Item identifiers in result order
	LastPage int      // Last page reported by the API (0 = not reported)
	NumFound int      // Total number of hits reported by the API
}

// Client fetches result pages from the search API
type Client struct {
	base        *url.URL
	client      *http.Client
	detailField string

	registry   gometrics.Registry
	fetchTimer gometrics.Timer
	failures   gometrics.Counter
}

// NewClient creates a client for the API at config.BaseURL
func NewClient(config common.ClientConfig) (*Client, error) {
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse search base url: %w", err)
	}
	if config.BaseURL != "" && (base.Scheme == "" || base.Host == "") {
		return nil, fmt.Errorf("search base url must be absolute: %q", config.BaseURL)
	}
	detailField := config.DetailField
	if detailField == "" {
		detailField = common.DefaultDetailField
	}

	registry := gometrics.NewRegistry()
	c := &Client{
		base: base,
		client: &http.Client{
			Timeout: time.Duration(config.TimeoutSecond) * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		detailField: detailField,
		registry:    registry,
		fetchTimer:  gometrics.NewRegisteredTimer("search.fetch", registry),
		failures:    gometrics.NewRegisteredCounter("search.failures", registry),
	}
	return c, nil
}

// FetchPage requests apiPath (resolved against the base url) and parses the
// result page. The request is abandoned when ctx is done.
func (c *Client) FetchPage(ctx context.Context, apiPath string) (Page, error) {
	start := time.Now()
	page, err := c.fetch(ctx, apiPath)
	c.fetchTimer.UpdateSince(start)
	if err != nil {
		c.failures.Inc(1)
		return Page{}, err
	}
	log.Debugf("fetched %s: %d items, last page %d (%s)", apiPath, len(page.IDs), page.LastPage, time.Since(start))
	return page, nil
}

func (c *Client) fetch(ctx context.Context, apiPath string) (Page, error) {
	ref, err := url.Parse(apiPath)
	if err != nil {
		return Page{}, fmt.Errorf("parse api path: %w", err)
	}
	requestURL := c.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return Page{}, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, requestURL.Path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Page{}, fmt.Errorf("read search response: %w", err)
	}
	return ParsePage(body, c.detailField)
}

// ParsePage extracts the item ids and pagination from a result page.
// detailField is the gjson path of the detail URL inside one entry of
// result.items; when it yields an array the first element is used.
// Items without a detail URL are skipped.
func ParsePage(body []byte, detailField string) (Page, error) {
	if !gjson.ValidBytes(body) {
		return Page{}, fmt.Errorf("%w: body is not JSON", ErrMalformedResponse)
	}
	items := gjson.GetBytes(body, "result.items")
	if !items.IsArray() {
		return Page{}, fmt.Errorf("%w: result.items is missing", ErrMalformedResponse)
	}

	page := Page{IDs: make([]string, 0, len(items.Array()))}
	items.ForEach(func(_, item gjson.Result) bool {
		field := item.Get(detailField)
		if field.IsArray() {
			values := field.Array()
			if len(values) == 0 {
				return true
			}
			field = values[0]
		}
		detailURL := strings.TrimSpace(field.String())
		if detailURL == "" {
			return true
		}
		if id, ok := ItemID(detailURL); ok {
			page.IDs = append(page.IDs, id)
		}
		return true
	})

	pagination := gjson.GetBytes(body, "result.pagination")
	if lastPage := pagination.Get("lastPage"); lastPage.Exists() {
		page.LastPage = int(lastPage.Int())
	}
	page.NumFound = int(pagination.Get("numFound").Int())
	return page, nil
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// Stats is a snapshot of the client metrics
type Stats struct {
	Requests    int64
	Failures    int64
	MeanLatency time.Duration
	P95Latency  time.Duration
}

// Stats returns a snapshot of the client metrics
func (c *Client) Stats() Stats {
	timer := c.fetchTimer.Snapshot()
	return Stats{
		Requests:    timer.Count(),
		Failures:    c.failures.Snapshot().Count(),
		MeanLatency: time.Duration(timer.Mean()),
		P95Latency:  time.Duration(timer.Percentile(0.95)),
	}
}

// Registry returns the metrics registry of the client, used for periodic logging
func (c *Client) Registry() gometrics.Registry {
	return c.registry
}

// Close releases idle connections
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
