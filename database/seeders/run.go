// Package seeders provides a registry of database seed functions.
//
// Usage (define a seeder in any file in this package):
//
//	func init() {
//	    seeders.Register("dummy_products", SeedDummyProducts)
//	}
//
//	func SeedDummyProducts(ctx context.Context, st *store.Store) error {
//	    // insert rows through the store …
//	    return nil
//	}
//
// Then run via CLI: inventory seed
package seeders

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/shashiranjanraj/inventory/app/store"
)

// SeederFunc is the signature for a seed function. Seeders write through
// the store so validation and notifications apply to seeded rows too.
type SeederFunc func(ctx context.Context, st *store.Store) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
// Call this from init() in your seeder files.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// Names lists registered seeders in registration order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// Run executes the named seeders, or every registered seeder when names is
// empty, in registration order. It stops on the first error.
func Run(ctx context.Context, st *store.Store, log *slog.Logger, names ...string) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if len(names) > 0 {
		wanted := make(map[string]bool, len(names))
		for _, n := range names {
			wanted[n] = true
		}
		filtered := current[:0]
		for _, e := range current {
			if wanted[e.name] {
				filtered = append(filtered, e)
				delete(wanted, e.name)
			}
		}
		if len(wanted) > 0 {
			missing := slices.Sorted(maps.Keys(wanted))
			return fmt.Errorf("seeder %q is not registered", missing[0])
		}
		current = filtered
	}

	if len(current) == 0 {
		log.Info("no seeders registered")
		return nil
	}

	for _, e := range current {
		log.Info("running seeder", "name", e.name)
		if err := e.fn(ctx, st); err != nil {
			log.Error("seeder failed", "name", e.name, "error", err)
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
	}
	return nil
}
