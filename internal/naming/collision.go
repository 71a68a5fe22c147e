package naming

import (
	"fmt"
	"strings"
	"sync"
)

// CollisionResolver tracks output prefixes claimed by input files. Two
// inputs that differ only in extension (teapot.glb, teapot.obj) would
// otherwise write into the same prefix. Keys are case-folded so the result
// is also safe on case-insensitive filesystems. All methods are
// goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // folded prefix → input path that owns it
	counters map[string]int    // folded base prefix → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Claim records input as the owner of prefix. It reports false when the
// prefix is already owned by a different input.
func (cr *CollisionResolver) Claim(input, prefix string) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.claimLocked(input, prefix)
}

// Owner returns the input that claimed prefix, if any.
func (cr *CollisionResolver) Owner(prefix string) (string, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	owner, ok := cr.owners[strings.ToLower(prefix)]
	return owner, ok
}

// Resolve returns the first of prefix, then each alternate, that input can
// claim. When all are taken it falls back to "<prefix>-dupN".
func (cr *CollisionResolver) Resolve(input, prefix string, alternates ...string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.claimLocked(input, prefix) {
		return prefix
	}
	for _, alt := range alternates {
		if cr.claimLocked(input, alt) {
			return alt
		}
	}

	key := strings.ToLower(prefix)
	counter := cr.counters[key]
	if counter == 0 {
		counter = 1
	}
	for {
		candidate := fmt.Sprintf("%s-dup%d", prefix, counter)
		if cr.claimLocked(input, candidate) {
			cr.counters[key] = counter + 1
			return candidate
		}
		counter++
	}
}

func (cr *CollisionResolver) claimLocked(input, prefix string) bool {
	key := strings.ToLower(prefix)
	owner, exists := cr.owners[key]
	if exists && owner != input {
		return false
	}
	cr.owners[key] = input
	return true
}
