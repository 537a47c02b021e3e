package banner

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("banner not found")
	// ErrLocked is returned when a redefinition targets a banner that has
	// already been pulled against. Past pulls must stay auditable against
	// the configuration they ran under.
	ErrLocked = errors.New("banner locked: already pulled against")
)

// Registry is the shared, read-mostly banner table. It is safe for
// concurrent use by many player engines.
type Registry struct {
	mu      sync.RWMutex
	banners map[string]*Banner
	pulled  map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		banners: make(map[string]*Banner),
		pulled:  make(map[string]bool),
	}
}

// Upsert installs or replaces a banner definition. Replacing a banner that
// has been pulled against fails with ErrLocked; use SetActive to retire it.
func (r *Registry) Upsert(b *Banner) error {
	if err := Validate(b); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.banners[b.ID]; exists && r.pulled[b.ID] {
		return fmt.Errorf("%w: %s", ErrLocked, b.ID)
	}
	r.banners[b.ID] = b
	return nil
}

// ReplaceAll reloads the registry from a fresh set of definitions, e.g.
// after a config-file change. Locked banners keep their old definition and
// are reported back; banners absent from the new set are kept too (their
// history references must stay resolvable) but deactivated.
func (r *Registry) ReplaceAll(banners []*Banner) (skipped []string, err error) {
	for _, b := range banners {
		if vErr := Validate(b); vErr != nil {
			return nil, fmt.Errorf("banner %s: %w", b.ID, vErr)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fresh := make(map[string]bool, len(banners))
	for _, b := range banners {
		fresh[b.ID] = true
		if r.pulled[b.ID] {
			// only the active flag may still move
			r.banners[b.ID].Active = b.Active
			skipped = append(skipped, b.ID)
			continue
		}
		r.banners[b.ID] = b
	}
	for id, b := range r.banners {
		if !fresh[id] {
			b.Active = false
		}
	}
	sort.Strings(skipped)
	return skipped, nil
}

// Get returns a banner by id. The result is a point-in-time copy taken
// under the lock: the Active flag on the stored banner may change
// concurrently (hot reload, SetActive), and summons read it lock-free.
// Rate/cost maps are shared and must be treated as read-only.
func (r *Registry) Get(id string) (*Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.banners[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

// ListActive returns every banner pullable at the given instant, sorted by
// id for stable output. Like Get, the results are copies.
func (r *Registry) ListActive(now time.Time) []*Banner {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Banner, 0, len(r.banners))
	for _, b := range r.banners {
		if b.IsActive(now) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetActive toggles a banner's activation flag. This is the only mutation
// allowed on a pulled banner.
func (r *Registry) SetActive(id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.banners[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	b.Active = active
	return nil
}

// MarkPulled freezes a banner's definition. Called by the summon engine
// when a transaction against the banner commits.
func (r *Registry) MarkPulled(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulled[id] = true
}
