package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/delving/itemnav/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation.
// The engine must read the current time from now so that expiry can be tested
// without sleeping.
type DBFactory func(now func() time.Time) db.KVDB

// Clock is a manually advanced clock for expiry tests
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock starting at a fixed instant
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current instant of the clock
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory(time.Now))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory(time.Now))
		})

		t.Run("DeletePrefix", func(t *testing.T) {
			testDeletePrefix(t, factory(time.Now))
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory(time.Now))
		})

		t.Run("KeyExpiry", func(t *testing.T) {
			clock := NewClock()
			testKeyExpiry(t, factory(clock.Now), clock)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory(time.Now))
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory(time.Now))
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory(time.Now))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// must fails the test on an unexpected engine error
func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func get(t testing.TB, database db.KVDB, key string) ([]byte, bool) {
	t.Helper()
	value, ok, err := database.Get(key)
	must(t, err)
	return value, ok
}

func has(t testing.TB, database db.KVDB, key string) bool {
	t.Helper()
	ok, err := database.Has(key)
	must(t, err)
	return ok
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	must(t, database.Set(testKey, testValue1))

	result, exists := get(t, database, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	must(t, database.Set(testKey, testValue2))

	result, exists = get(t, database, testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = get(t, database, "nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// returned values are copies
	retrievedValue, _ := get(t, database, testKey)
	retrievedValue[0] = 'X'
	originalValue, _ := get(t, database, testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	// stored values are copies
	input := []byte("input-value")
	must(t, database.Set("copy-key", input))
	input[0] = 'X'
	stored, _ := get(t, database, "copy-key")
	if !bytes.Equal(stored, []byte("input-value")) {
		t.Errorf("Set should copy the value, got %s", stored)
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	testKey := "delete-test-key"
	must(t, database.Set(testKey, []byte("delete-test-value")))

	if _, exists := get(t, database, testKey); !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}

	must(t, database.Delete(testKey))

	if _, exists := get(t, database, testKey); exists {
		t.Errorf("Expected key %s to not exist after Delete", testKey)
	}

	// deleting a missing key is not an error
	must(t, database.Delete("nonexistent-key"))
}

func testDeletePrefix(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDeletePrefix)

	for i := 0; i < 5; i++ {
		must(t, database.Set(fmt.Sprintf("session/a/key-%d", i), []byte("a")))
		must(t, database.Set(fmt.Sprintf("session/ab/key-%d", i), []byte("ab")))
	}

	removed, err := database.DeletePrefix("session/a/")
	must(t, err)
	if removed != 5 {
		t.Errorf("Expected 5 removed entries, got %d", removed)
	}

	for i := 0; i < 5; i++ {
		if _, ok := get(t, database, fmt.Sprintf("session/a/key-%d", i)); ok {
			t.Errorf("Expected session/a/key-%d to be removed", i)
		}
		if _, ok := get(t, database, fmt.Sprintf("session/ab/key-%d", i)); !ok {
			t.Errorf("Expected session/ab/key-%d to survive", i)
		}
	}

	must(t, database.Set("session/ä/key", []byte("a")))
	must(t, database.Set("session/äb/key", []byte("ab")))
	removed, err = database.DeletePrefix("session/ä/")
	must(t, err)
	if removed != 1 {
		t.Errorf("Expected 1 removed entry for non-ASCII prefix, got %d", removed)
	}
	if _, ok := get(t, database, "session/äb/key"); !ok {
		t.Errorf("Expected session/äb/key to survive")
	}

	removed, err = database.DeletePrefix("unknown/")
	must(t, err)
	if removed != 0 {
		t.Errorf("Expected 0 removed entries for unknown prefix, got %d", removed)
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureHas|db.FeatureDelete)

	testKey := "has-test-key"

	if has(t, database, testKey) {
		t.Errorf("Expected Has to return false for nonexistent key")
	}

	must(t, database.Set(testKey, []byte("has-test-value")))
	if !has(t, database, testKey) {
		t.Errorf("Expected Has to return true after Set")
	}

	must(t, database.Delete(testKey))
	if has(t, database, testKey) {
		t.Errorf("Expected Has to return false after Delete")
	}
}

func testKeyExpiry(t *testing.T, database db.KVDB, clock *Clock) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSetE|db.FeatureGet|db.FeatureHas)

	testKey := "expiring-key"
	testValue := []byte("expiring-value")

	must(t, database.SetE(testKey, testValue, 10*time.Second))

	clock.Advance(9 * time.Second)
	result, exists := get(t, database, testKey)
	if !exists {
		t.Errorf("Key should still exist after 9s (get)")
	}
	if !bytes.Equal(result, testValue) {
		t.Errorf("Expected value %s, got %s", testValue, result)
	}
	if !has(t, database, testKey) {
		t.Errorf("Key should still exist after 9s (has)")
	}

	clock.Advance(time.Second)
	if _, exists = get(t, database, testKey); exists {
		t.Errorf("Key should have expired after 10s (get)")
	}
	if has(t, database, testKey) {
		t.Errorf("Key should have expired after 10s (has)")
	}

	// rewriting refreshes the expiration
	must(t, database.SetE("sliding-key", testValue, 10*time.Second))
	clock.Advance(8 * time.Second)
	must(t, database.SetE("sliding-key", testValue, 10*time.Second))
	clock.Advance(8 * time.Second)
	if _, exists = get(t, database, "sliding-key"); !exists {
		t.Errorf("Rewritten key should still exist")
	}

	// Set clears a previous expiration
	must(t, database.SetE("cleared-key", testValue, time.Second))
	must(t, database.Set("cleared-key", testValue))
	clock.Advance(time.Hour)
	if _, exists = get(t, database, "cleared-key"); !exists {
		t.Errorf("Key rewritten with Set should never expire")
	}

	// zero means no expiration
	must(t, database.SetE("not-expiring-key", testValue, 0))
	clock.Advance(24 * time.Hour)
	if _, exists = get(t, database, "not-expiring-key"); !exists {
		t.Errorf("Key with expireIn=0 should never expire")
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	// empty value
	must(t, database.Set("empty-value", []byte{}))
	value, ok := get(t, database, "empty-value")
	if !ok {
		t.Errorf("Expected empty value to be found")
	}
	if len(value) != 0 {
		t.Errorf("Expected empty value, got %q", value)
	}

	// nil value behaves like an empty value
	must(t, database.Set("nil-value", nil))
	if _, ok = get(t, database, "nil-value"); !ok {
		t.Errorf("Expected nil value to be found")
	}

	// empty key
	must(t, database.Set("", []byte("empty-key")))
	value, ok = get(t, database, "")
	if !ok || string(value) != "empty-key" {
		t.Errorf("Expected empty key to be stored, got %q (found=%v)", value, ok)
	}

	// keys with special characters
	specialKey := "session/ä ö/{\"key\"}; %20"
	must(t, database.Set(specialKey, []byte("special")))
	value, ok = get(t, database, specialKey)
	if !ok || string(value) != "special" {
		t.Errorf("Expected special key to be stored, got %q (found=%v)", value, ok)
	}

	// binary values
	binary := []byte{0, 1, 2, 255, 0}
	must(t, database.Set("binary", binary))
	value, _ = get(t, database, "binary")
	if !bytes.Equal(value, binary) {
		t.Errorf("Expected binary value %v, got %v", binary, value)
	}
}

func testConcurrent(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("worker-%d/key-%d", w, i)
				if err := database.Set(key, []byte(key)); err != nil {
					errs <- err
					return
				}
				value, ok, err := database.Get(key)
				if err != nil {
					errs <- err
					return
				}
				if !ok || string(value) != key {
					errs <- fmt.Errorf("read back %s: got %q (found=%v)", key, value, ok)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func testInfo(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)

	must(t, database.Set("info-1", []byte("1")))
	must(t, database.Set("info-2", []byte("2")))

	info := database.GetInfo()
	if info.Keys != 2 {
		t.Errorf("Expected 2 keys, got %d", info.Keys)
	}
	if info.DbType == "" {
		t.Errorf("Expected a database type")
	}
	for _, f := range info.SupportedFeatures {
		if !database.SupportsFeature(f) {
			t.Errorf("Info lists feature %s but SupportsFeature denies it", f)
		}
	}
}
