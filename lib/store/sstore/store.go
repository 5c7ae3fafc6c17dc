package sstore

import (
	"fmt"
	"time"

	"github.com/delving/itemnav/lib/db"
	"github.com/delving/itemnav/lib/store"
)

// RequiredFeatures are the engine features a session store needs
const RequiredFeatures = db.FeatureSet | db.FeatureSetE | db.FeatureGet | db.FeatureDelete

// Store is an IStore scoped to one session on a shared db.KVDB.
type Store struct {
	db        db.KVDB
	sessionID string
	ttl       time.Duration
}

// NewSessionStore creates a store for sessionID on database.
// Every write refreshes the entry to expire after ttl (0 = never).
func NewSessionStore(database db.KVDB, sessionID string, ttl time.Duration) *Store {
	return &Store{
		db:        database,
		sessionID: sessionID,
		ttl:       ttl,
	}
}

// Prefix returns the key prefix of all entries of a session
func Prefix(sessionID string) string {
	return "session/" + sessionID + "/"
}

func (s *Store) dbKey(key string) string {
	return Prefix(s.sessionID) + key
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Get(key string) (any, bool, error) {
	if !s.db.SupportsFeature(db.FeatureGet) {
		return nil, false, store.NewError(store.RetCUnsupportedOperation, "Get operation is not supported")
	}
	if key == "" {
		return nil, false, nil
	}
	payload, ok, err := s.db.Get(s.dbKey(key))
	if err != nil {
		return nil, false, store.NewError(store.RetCInternalError, err.Error())
	}
	if !ok {
		return nil, false, nil
	}
	return store.Decode(string(payload))
}

func (s *Store) Set(key string, value any) error {
	if key == "" {
		return nil
	}
	payload, err := store.Encode(value)
	if err != nil {
		return err
	}

	if s.ttl > 0 {
		if !s.db.SupportsFeature(db.FeatureSetE) {
			return store.NewError(store.RetCUnsupportedOperation, "SetE operation is not supported")
		}
		err = s.db.SetE(s.dbKey(key), []byte(payload), s.ttl)
	} else {
		if !s.db.SupportsFeature(db.FeatureSet) {
			return store.NewError(store.RetCUnsupportedOperation, "Set operation is not supported")
		}
		err = s.db.Set(s.dbKey(key), []byte(payload))
	}
	if err != nil {
		return store.NewError(store.RetCInternalError, err.Error())
	}
	return nil
}

func (s *Store) Remove(key string) error {
	if key == "" {
		return nil
	}
	if !s.db.SupportsFeature(db.FeatureDelete) {
		return store.NewError(store.RetCUnsupportedOperation, "Delete operation is not supported")
	}
	if err := s.db.Delete(s.dbKey(key)); err != nil {
		return store.NewError(store.RetCInternalError, err.Error())
	}
	return nil
}

func (s *Store) Backend() store.Backend {
	return store.BackendSession
}

// --------------------------------------------------------------------------
// Session Methods
// --------------------------------------------------------------------------

// SessionID returns the id the store is scoped to
func (s *Store) SessionID() string {
	return s.sessionID
}

// Clear removes every value of the session and returns how many were removed.
func (s *Store) Clear() (int, error) {
	if !s.db.SupportsFeature(db.FeatureDeletePrefix) {
		return 0, store.NewError(store.RetCUnsupportedOperation, "DeletePrefix operation is not supported")
	}
	removed, err := s.db.DeletePrefix(Prefix(s.sessionID))
	if err != nil {
		return 0, store.NewError(store.RetCInternalError, fmt.Sprintf("clear session %s: %v", s.sessionID, err))
	}
	return removed, nil
}
