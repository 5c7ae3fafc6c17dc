package web

import (
	"net/http"
	"time"

	"github.com/delving/itemnav/lib/store"
	"github.com/delving/itemnav/lib/store/cstore"
	"github.com/google/uuid"
)

// DefaultSessionCookieName binds a browser to its session storage
const DefaultSessionCookieName = "itemnav_session"

// openStore returns the store of the browser that sent r. With session
// storage a session cookie is issued when the request carries none.
func (s *Server) openStore(w http.ResponseWriter, r *http.Request) store.IStore {
	doc := cstore.NewHTTPDocument(w, r)
	if s.selector.Backend() != store.BackendSession {
		return s.selector.Open("", doc)
	}
	return s.selector.Open(s.sessionID(w, r), doc)
}

// sessionID returns the session of r, starting a new one if needed
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.config.SessionCookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	cookie := &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.config.SessionTTLSecond > 0 {
		cookie.MaxAge = s.config.SessionTTLSecond
		cookie.Expires = time.Now().Add(time.Duration(s.config.SessionTTLSecond) * time.Second)
	}
	http.SetCookie(w, cookie)
	Logger.Debugf("started session %s", id)
	return id
}
