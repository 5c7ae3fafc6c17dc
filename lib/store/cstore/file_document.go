package cstore

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileDocument is a Document persisted to a text file, one "name=value"
// pair per line. It stands in for a browser cookie jar of the CLI.
type FileDocument struct {
	path string

	mu      sync.Mutex
	names   []string
	cookies map[string]string
}

// OpenFileDocument loads the cookie file at path. A missing file is an
// empty document, it is created on the first write.
func OpenFileDocument(path string) (*FileDocument, error) {
	d := &FileDocument{
		path:    path,
		cookies: make(map[string]string),
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open cookie file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed cookie line %q", line)
		}
		d.put(name, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}
	return d, nil
}

// Path returns the file backing the document
func (d *FileDocument) Path() string {
	return d.path
}

func (d *FileDocument) Cookie() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	pairs := make([]string, 0, len(d.names))
	for _, name := range d.names {
		pairs = append(pairs, name+"="+d.cookies[name])
	}
	return strings.Join(pairs, "; ")
}

// SetCookie stores c and rewrites the file. Write errors are reported by Flush.
func (d *FileDocument) SetCookie(c *http.Cookie) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if isRemoval(c, time.Now()) {
		d.drop(c.Name)
	} else {
		d.put(c.Name, c.Value)
	}
}

// Flush writes all cookies to the file
func (d *FileDocument) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0o700); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	var b strings.Builder
	for _, name := range d.names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(d.cookies[name])
		b.WriteByte('\n')
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("replace cookie file: %w", err)
	}
	return nil
}

func (d *FileDocument) put(name, value string) {
	if _, ok := d.cookies[name]; !ok {
		d.names = append(d.names, name)
	}
	d.cookies[name] = value
}

func (d *FileDocument) drop(name string) {
	if _, ok := d.cookies[name]; !ok {
		return
	}
	delete(d.cookies, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}
