package selector

import (
	"time"

	"github.com/delving/itemnav/lib/db"
	"github.com/delving/itemnav/lib/store"
	"github.com/delving/itemnav/lib/store/cstore"
	"github.com/delving/itemnav/lib/store/sstore"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("store")

// Selector decides once which store backend is active and opens stores of
// that backend for each session.
type Selector struct {
	database db.KVDB
	ttl      time.Duration
	backend  store.Backend
}

// New negotiates the backend. Session storage is used when database is
// configured and supports every feature sstore needs, cookies otherwise.
func New(database db.KVDB, ttl time.Duration) *Selector {
	s := &Selector{database: database, ttl: ttl, backend: store.BackendCookie}

	switch {
	case database == nil:
		log.Infof("no session storage configured, using cookie storage")
	case !database.SupportsFeature(sstore.RequiredFeatures):
		log.Warningf("session storage %s lacks required features, using cookie storage", database.GetInfo().DbType)
	default:
		s.backend = store.BackendSession
		log.Infof("using session storage (%s, ttl %s)", database.GetInfo().DbType, ttl)
	}
	return s
}

// Backend returns the active backend
func (s *Selector) Backend() store.Backend {
	return s.backend
}

// Open returns the store of one session. sessionID is used by the session
// backend and doc by the cookie backend, the other one may be empty.
func (s *Selector) Open(sessionID string, doc cstore.Document) store.IStore {
	if s.backend == store.BackendSession {
		return sstore.NewSessionStore(s.database, sessionID, s.ttl)
	}
	return cstore.NewCookieStore(doc)
}
