package monitor

import (
	"log"
	"sync"
	"time"
)

var (
	globalStore *Store
	initOnce    sync.Once
	initErr     error
)

// Init initializes the global metrics store. Safe to call multiple times;
// subsequent calls are no-ops.
func Init() error {
	initOnce.Do(func() {
		globalStore, initErr = NewStore()
		if initErr != nil {
			log.Printf("monitor: failed to initialize store: %v", initErr)
		}
	})
	return initErr
}

// RecordInvocation increments the invocation count for the given mode.
// If the store is not initialized, this attempts lazy init and otherwise
// degrades to a logged no-op.
func RecordInvocation(mode Mode) {
	if globalStore == nil {
		if err := Init(); err != nil {
			log.Printf("monitor: cannot record invocation, store not initialized: %v", err)
			return
		}
	}

	if err := globalStore.Increment(mode); err != nil {
		log.Printf("monitor: failed to record invocation for %s: %v", mode, err)
	}
}

// RecordTaskOutcome stores one task outcome in the global store.
func RecordTaskOutcome(agentID, task string, success bool, duration time.Duration) {
	if globalStore == nil {
		if err := Init(); err != nil {
			return
		}
	}

	if err := globalStore.RecordTask(agentID, task, success, duration); err != nil {
		log.Printf("monitor: failed to record task outcome for %s: %v", agentID, err)
	}
}

// GetStats returns cumulative invocation counts, or nil when uninitialized.
func GetStats() map[Mode]int64 {
	if globalStore == nil {
		return nil
	}

	stats, err := globalStore.GetAllTotals()
	if err != nil {
		log.Printf("monitor: failed to get stats: %v", err)
		return nil
	}
	return stats
}

// Close closes the global metrics store.
func Close() error {
	if globalStore != nil {
		return globalStore.Close()
	}
	return nil
}

// GetStore returns the global store instance. Primarily for testing.
func GetStore() *Store {
	return globalStore
}

// SetStoreForTesting replaces the global store. Tests only.
func SetStoreForTesting(store *Store) {
	globalStore = store
}

// ResetForTesting resets global state. Tests only.
func ResetForTesting() {
	if globalStore != nil {
		_ = globalStore.Close()
	}
	globalStore = nil
	initOnce = sync.Once{}
	initErr = nil
}
