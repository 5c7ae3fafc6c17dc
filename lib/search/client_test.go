package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/delving/itemnav/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageBody = `{
  "result": {
    "pagination": {"numFound": 45, "lastPage": 3},
    "items": [
      {"item": {"fields": {"system": {"about_uri": "http://data.example.org/resource/aggregation/set/1"}}}},
      {"item": {"fields": {"system": {"about_uri": ["http://data.example.org/resource/aggregation/set/2/", "ignored"]}}}},
      {"item": {"fields": {"system": {}}}},
      {"item": {"fields": {"system": {"about_uri": "http://data.example.org/other/3"}}}},
      {"item": {"fields": {"system": {"about_uri": "/resource/aggregation/set/4"}}}}
    ]
  }
}`

func TestParsePage(t *testing.T) {
	page, err := ParsePage([]byte(pageBody), common.DefaultDetailField)
	require.NoError(t, err)
	assert.Equal(t, []string{"set/1", "set/2", "set/4"}, page.IDs)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, 45, page.NumFound)
}

func TestParsePageWithoutPagination(t *testing.T) {
	page, err := ParsePage([]byte(`{"result":{"items":[]}}`), common.DefaultDetailField)
	require.NoError(t, err)
	assert.Empty(t, page.IDs)
	assert.Zero(t, page.LastPage)
}

func TestParsePageMalformed(t *testing.T) {
	for _, body := range []string{"", "<html>", `{"result":{}}`, `{"result":{"items":{}}}`} {
		_, err := ParsePage([]byte(body), common.DefaultDetailField)
		assert.ErrorIs(t, err, ErrMalformedResponse, "body %q", body)
	}
}

func TestItemID(t *testing.T) {
	tests := []struct {
		url    string
		id     string
		parsed bool
	}{
		{"/resource/aggregation/set/123/", "set/123", true},
		{"http://host/resource/aggregation/set/123?x=1", "set/123", true},
		{"/vw/site/resource/aggregation/a/b", "a/b", true},
		{"/resource/aggregation/http%3A%2F%2Fwww.openbeelden.nl%2Ffiles%2F01%2F65%2F165083.mpg",
			"http%3A%2F%2Fwww.openbeelden.nl%2Ffiles%2F01%2F65%2F165083.mpg", true},
		{"http://host/resource/aggregation/ds/what%3Fis%23this?page=2#top", "ds/what%3Fis%23this", true},
		{"/resource/aggregation/", "", false},
		{"/resource/other/123", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id, ok := ItemID(tt.url)
		assert.Equal(t, tt.parsed, ok, tt.url)
		assert.Equal(t, tt.id, id, tt.url)
	}
	assert.Equal(t, "/resource/aggregation/set/123", DetailPath("set/123"))
}

func TestParsePageKeepsEscapedIDs(t *testing.T) {
	body := `{"result":{"items":[
	  {"item":{"fields":{"system":{"about_uri":"http://data.example.org/resource/aggregation/http%3A%2F%2Fwww.openbeelden.nl%2Ffiles%2F01%2F65%2F165083.mpg"}}}},
	  {"item":{"fields":{"system":{"about_uri":"http://data.example.org/resource/aggregation/ds/what%3Fis%23this"}}}}
	]}}`
	page, err := ParsePage([]byte(body), common.DefaultDetailField)
	require.NoError(t, err)
	require.Equal(t, []string{
		"http%3A%2F%2Fwww.openbeelden.nl%2Ffiles%2F01%2F65%2F165083.mpg",
		"ds/what%3Fis%23this",
	}, page.IDs)

	assert.Equal(t, "/resource/aggregation/ds/what%3Fis%23this", DetailPath(page.IDs[1]))
	id, ok := ItemID(DetailPath(page.IDs[0]))
	assert.True(t, ok)
	assert.Equal(t, page.IDs[0], id)
}

func TestFetchPage(t *testing.T) {
	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pageBody))
	}))
	defer server.Close()

	client, err := NewClient(common.ClientConfig{BaseURL: server.URL, TimeoutSecond: 5})
	require.NoError(t, err)
	defer client.Close()

	page, err := client.FetchPage(context.Background(), "/api/search/v2/?q=&page=2&format=json")
	require.NoError(t, err)
	assert.Equal(t, "/api/search/v2/?q=&page=2&format=json", gotURL)
	assert.Equal(t, []string{"set/1", "set/2", "set/4"}, page.IDs)

	stats := client.Stats()
	assert.Equal(t, int64(1), stats.Requests)
	assert.Equal(t, int64(0), stats.Failures)
}

func TestFetchPageFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/error/":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/html/":
			_, _ = w.Write([]byte("<html></html>"))
		case "/slow/":
			<-r.Context().Done()
		}
	}))
	defer server.Close()

	client, err := NewClient(common.ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.FetchPage(context.Background(), "/error/")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	_, err = client.FetchPage(context.Background(), "/html/")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.FetchPage(ctx, "/slow/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	assert.Equal(t, int64(3), client.Stats().Failures)
	assert.Equal(t, int64(3), client.Stats().Requests)
}

func TestNewClientRejectsRelativeBase(t *testing.T) {
	_, err := NewClient(common.ClientConfig{BaseURL: "example.org/api"})
	assert.Error(t, err)
}
