package cstore

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/delving/itemnav/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("store")

// MaxCookieSize is the name plus value size browsers keep per cookie.
// Larger cookies are dropped without notice.
const MaxCookieSize = 4096

// Document is the cookie surface of a page.
// Cookie returns all current cookies as "a=1; b=2", SetCookie writes one.
type Document interface {
	Cookie() string
	SetCookie(c *http.Cookie)
}

// removedAt is the expiry written when a cookie is removed
var removedAt = time.Unix(0, 0).UTC()

// Store is an IStore persisting values as cookies of a Document.
type Store struct {
	doc Document
}

// NewCookieStore creates a cookie backed store on doc
func NewCookieStore(doc Document) *Store {
	return &Store{doc: doc}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Get(key string) (any, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	re, err := regexp.Compile(`(?:^|; )` + regexp.QuoteMeta(EncodeComponent(key)) + `=([^;]*)`)
	if err != nil {
		return nil, false, store.NewError(store.RetCInternalError, err.Error())
	}
	match := re.FindStringSubmatch(s.doc.Cookie())
	if match == nil {
		return nil, false, nil
	}
	payload, err := DecodeComponent(match[1])
	if err != nil {
		return nil, false, store.NewError(store.RetCMalformedValue, fmt.Sprintf("cookie %s: %v", key, err))
	}
	return store.Decode(payload)
}

// Set writes a session cookie. Falsy values are not written.
func (s *Store) Set(key string, value any) error {
	if key == "" || store.IsFalsy(value) {
		return nil
	}
	payload, err := store.Encode(value)
	if err != nil {
		return err
	}
	c := &http.Cookie{
		Name:     EncodeComponent(key),
		Value:    EncodeComponent(payload),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	if oversized(c) {
		log.Warningf("cookie %s is %d bytes, browsers may drop it (limit %d)", key, len(c.Name)+len(c.Value), MaxCookieSize)
	}
	s.doc.SetCookie(c)
	return nil
}

// Remove overwrites the cookie with an empty value that expired in 1970.
func (s *Store) Remove(key string) error {
	if key == "" {
		return nil
	}
	s.doc.SetCookie(&http.Cookie{
		Name:     EncodeComponent(key),
		Value:    "",
		Path:     "/",
		Expires:  removedAt,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Store) Backend() store.Backend {
	return store.BackendCookie
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// EncodeComponent percent-encodes s so it is safe as cookie name or value.
// Spaces become %20, never '+'.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// DecodeComponent reverses EncodeComponent. A literal '+' stays a '+'.
func DecodeComponent(s string) (string, error) {
	return url.PathUnescape(s)
}

// oversized reports whether c exceeds MaxCookieSize
func oversized(c *http.Cookie) bool {
	return len(c.Name)+len(c.Value) > MaxCookieSize
}

// isRemoval reports whether c deletes a cookie
func isRemoval(c *http.Cookie, now time.Time) bool {
	return c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now))
}
