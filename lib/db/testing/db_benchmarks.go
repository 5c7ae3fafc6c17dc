package testing

import (
	"fmt"
	"testing"
	"time"

	"github.com/delving/itemnav/lib/db"
)

// RunKVDBBenchmarks runs the session storage access pattern benchmarks
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("SetE", func(b *testing.B) {
			benchmarkSetE(b, factory(time.Now))
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory(time.Now))
		})

		b.Run("PageLoad", func(b *testing.B) {
			benchmarkPageLoad(b, factory(time.Now))
		})
	})
}

func benchmarkSetE(b *testing.B, database db.KVDB) {
	defer database.Close()
	value := []byte(`["set/1","set/2","set/3","set/4"]`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = database.SetE(fmt.Sprintf("session/%d/itemNavTree", i%1024), value, time.Hour)
	}
}

func benchmarkGet(b *testing.B, database db.KVDB) {
	defer database.Close()
	for i := 0; i < 1024; i++ {
		_ = database.Set(fmt.Sprintf("session/%d/itemNavTree", i), []byte("value"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = database.Get(fmt.Sprintf("session/%d/itemNavTree", i%1024))
	}
}

// benchmarkPageLoad mimics one detail page: three reads and, every tenth
// load, a boundary crossing with two writes
func benchmarkPageLoad(b *testing.B, database db.KVDB) {
	defer database.Close()
	keys := []string{"itemNavResultsQuery", "itemNavTree", "itemNavLastPage"}
	for s := 0; s < 256; s++ {
		for _, k := range keys {
			_ = database.Set(fmt.Sprintf("session/%d/%s", s, k), []byte("value"))
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		session := i % 256
		for _, k := range keys {
			_, _, _ = database.Get(fmt.Sprintf("session/%d/%s", session, k))
		}
		if i%10 == 0 {
			_ = database.SetE(fmt.Sprintf("session/%d/itemNavResultsQuery", session), []byte("value"), time.Hour)
			_ = database.SetE(fmt.Sprintf("session/%d/itemNavTree", session), []byte("value"), time.Hour)
		}
	}
}
