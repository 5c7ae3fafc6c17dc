package memory

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/delving/itemnav/lib/db"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	defaultGCInterval = time.Second

	supportedFeatures = db.FeatureSet | db.FeatureSetE | db.FeatureGet | db.FeatureDelete |
		db.FeatureHas | db.FeatureDeletePrefix
)

// --------------------------------------------------------------------------
// Core memory database structure
// --------------------------------------------------------------------------

// entry is a stored value with its absolute expiration (unix nanos, 0 = never)
type entry struct {
	value    []byte
	expireAt int64
}

// expired reports whether the entry is expired at now (unix nanos)
func (e entry) expired(now int64) bool {
	return e.expireAt != 0 && e.expireAt <= now
}

type memoryImpl struct {
	data *xsync.MapOf[string, entry]
	now  func() time.Time

	// garbage collection
	gcInterval  time.Duration
	gcIsRunning atomic.Bool
	gcStop      chan struct{}
	gcDone      sync.WaitGroup
}

// DBOptions configures the memory engine during initialization
type DBOptions struct {
	GCInterval time.Duration    // Time between GC runs (0 = use default: 1 sec)
	Now        func() time.Time // Clock used for expiration (nil = time.Now)
}

// DefaultOptions returns the default memory engine options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		GCInterval: defaultGCInterval,
		Now:        time.Now,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMemoryDB creates a new in-memory engine with the specified options (optional).
// The garbage collector runs until Close is called.
func NewMemoryDB(opts *DBOptions) db.KVDB {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.GCInterval <= 0 {
		opts.GCInterval = defaultGCInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	newDB := &memoryImpl{
		data:       xsync.NewMapOf[string, entry](),
		now:        opts.Now,
		gcInterval: opts.GCInterval,
		gcStop:     make(chan struct{}),
	}

	newDB.startGC()
	return newDB
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry without expiration.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Set(key string, value []byte) error {
	return m.SetE(key, value, 0)
}

// SetE inserts or updates an entry that expires after expireIn (0 = never).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) SetE(key string, value []byte, expireIn time.Duration) error {
	// Copy value to prevent memory corruption
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	var expireAt int64
	if expireIn > 0 {
		expireAt = m.now().Add(expireIn).UnixNano()
	}

	m.data.Store(key, entry{value: valueCopy, expireAt: expireAt})
	return nil
}

// Delete removes an entry with the specified key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Delete(key string) error {
	m.data.Delete(key)
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix.
//
// Thread-safety: This method is thread-safe, concurrent writes to matching
// keys during the scan may or may not be removed.
func (m *memoryImpl) DeletePrefix(prefix string) (int, error) {
	removed := 0
	m.data.Range(func(key string, _ entry) bool {
		if strings.HasPrefix(key, prefix) {
			m.data.Delete(key)
			removed++
		}
		return true
	})
	return removed, nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves a value for a key.
// The returned value is a copy of the stored data and therefore safe to use and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Get(key string) ([]byte, bool, error) {
	e, ok := m.data.Load(key)
	if !ok || e.expired(m.now().UnixNano()) {
		return nil, false, nil
	}

	data := make([]byte, len(e.value))
	copy(data, e.value)
	return data, true, nil
}

// Has checks if a not expired entry exists for key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Has(key string) (bool, error) {
	e, ok := m.data.Load(key)
	return ok && !e.expired(m.now().UnixNano()), nil
}

// --------------------------------------------------------------------------
// Garbage Collection
// --------------------------------------------------------------------------

// startGC starts the garbage collector
// if the GC is already running, this function does nothing
func (m *memoryImpl) startGC() {
	if m.gcIsRunning.CompareAndSwap(false, true) {
		m.gcDone.Add(1)
		go m.garbageCollector()
	}
}

// stopGC stops the garbage collector and waits for it to exit.
// the gc can't be started again after it has been stopped!
func (m *memoryImpl) stopGC() {
	if m.gcIsRunning.CompareAndSwap(true, false) {
		close(m.gcStop)
		m.gcDone.Wait()
	}
}

// garbageCollector is the main garbage collection loop
// WARNING: this method should never be called! to enable GC, use startGC() and stopGC()
func (m *memoryImpl) garbageCollector() {
	defer m.gcDone.Done()

	ticker := time.NewTicker(m.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.gcStop:
			return
		case <-ticker.C:
			m.collect()
		}
	}
}

// collect removes all entries that are expired at the time the pass starts
func (m *memoryImpl) collect() int {
	now := m.now().UnixNano()
	removed := 0
	m.data.Range(func(key string, _ entry) bool {
		// double-check under Compute, the entry may have been rewritten since Range saw it
		m.data.Compute(key, func(e entry, loaded bool) (entry, bool) {
			if !loaded {
				return e, true
			}
			if e.expired(now) {
				removed++
				return entry{}, true
			}
			return e, false
		})
		return true
	})
	return removed
}

// --------------------------------------------------------------------------
// Feature Support, Info and Close
// --------------------------------------------------------------------------

func (m *memoryImpl) SupportsFeature(feature db.Feature) bool {
	return supportedFeatures&feature == feature
}

func (m *memoryImpl) GetInfo() db.DatabaseInfo {
	return db.DatabaseInfo{
		Keys:              m.data.Size(),
		DbType:            db.ImplMemory,
		SupportedFeatures: db.FeatureList(supportedFeatures),
		Metadata: map[string]interface{}{
			"gc_interval": m.gcInterval.String(),
			"gc_running":  m.gcIsRunning.Load(),
		},
	}
}

// Close stops the garbage collector and drops all data.
func (m *memoryImpl) Close() error {
	m.stopGC()
	m.data.Clear()
	return nil
}
