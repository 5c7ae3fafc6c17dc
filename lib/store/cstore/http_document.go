package cstore

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// HTTPDocument is the Document of one HTTP request. It reads the request
// cookies and sends written cookies with the response. Cookies written
// during the request are visible to later reads of the same request.
type HTTPDocument struct {
	r *http.Request
	w http.ResponseWriter

	mu      sync.Mutex
	written map[string]*http.Cookie
	order   []string
}

// NewHTTPDocument creates the document of the request r answered by w
func NewHTTPDocument(w http.ResponseWriter, r *http.Request) *HTTPDocument {
	return &HTTPDocument{
		r:       r,
		w:       w,
		written: make(map[string]*http.Cookie),
	}
}

func (d *HTTPDocument) Cookie() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	pairs := make([]string, 0, len(d.r.Cookies())+len(d.order))
	seen := make(map[string]bool, len(d.order))
	for _, c := range d.r.Cookies() {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		if w, ok := d.written[c.Name]; ok {
			if !isRemoval(w, now) {
				pairs = append(pairs, w.Name+"="+w.Value)
			}
			continue
		}
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	for _, name := range d.order {
		if seen[name] {
			continue
		}
		if w := d.written[name]; !isRemoval(w, now) {
			pairs = append(pairs, w.Name+"="+w.Value)
		}
	}
	return strings.Join(pairs, "; ")
}

func (d *HTTPDocument) SetCookie(c *http.Cookie) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.written[c.Name]; !ok {
		d.order = append(d.order, c.Name)
	}
	d.written[c.Name] = c
	http.SetCookie(d.w, c)
}
