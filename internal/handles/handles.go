// Package handles maps native pointers to Go objects for the
// libwayland-server backend.
//
// When the C side destroys a wl_resource, it invokes our destroy
// listener with the listener's own address as the only usable key. We
// cannot store Go pointers in C memory, so the Go state is parked here
// under that address and recovered inside the callback.
package handles

import (
	"sync"
)

var (
	mu    sync.RWMutex
	table = make(map[uintptr]any)
)

// Put stores v under a native pointer key, replacing any previous value.
//
// Thread-safe.
func Put(key uintptr, v any) {
	mu.Lock()
	defer mu.Unlock()
	table[key] = v
}

// Get retrieves the Go object stored under key.
// Returns nil if nothing is stored.
//
// Thread-safe.
func Get(key uintptr) any {
	mu.RLock()
	defer mu.RUnlock()
	return table[key]
}

// Delete removes a key and allows the Go object to be garbage collected.
// Should be called once the C side can no longer invoke callbacks that
// reference it.
//
// Thread-safe.
func Delete(key uintptr) {
	mu.Lock()
	defer mu.Unlock()
	delete(table, key)
}

// Count returns the number of currently stored entries.
// Useful for debugging and testing memory leaks.
//
// Thread-safe.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(table)
}
