package catalog

import "sort"

// Roster is the player's owned-character set. The engine reads it to
// classify new vs. duplicate results and writes newly obtained characters
// back during commit.
type Roster interface {
	Owns(id string) bool
	Add(id string)
}

// MemoryRoster is a plain set-of-ids Roster. Like the ledger it relies on
// the engine's per-player serialization rather than internal locking.
type MemoryRoster struct {
	owned map[string]struct{}
}

func NewMemoryRoster(ids ...string) *MemoryRoster {
	r := &MemoryRoster{owned: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		r.owned[id] = struct{}{}
	}
	return r
}

func (r *MemoryRoster) Owns(id string) bool {
	_, ok := r.owned[id]
	return ok
}

func (r *MemoryRoster) Add(id string) {
	r.owned[id] = struct{}{}
}

// IDs returns the owned ids in sorted order, for snapshots.
func (r *MemoryRoster) IDs() []string {
	out := make([]string, 0, len(r.owned))
	for id := range r.owned {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Overlay layers pending additions over a base roster so that results
// inside one uncommitted batch see characters obtained earlier in the same
// batch. Added ids are flushed to the base roster only at commit.
type Overlay struct {
	base    Roster
	pending map[string]struct{}
}

func NewOverlay(base Roster) *Overlay {
	return &Overlay{base: base, pending: make(map[string]struct{})}
}

func (o *Overlay) Owns(id string) bool {
	if _, ok := o.pending[id]; ok {
		return true
	}
	return o.base.Owns(id)
}

func (o *Overlay) Add(id string) {
	if !o.base.Owns(id) {
		o.pending[id] = struct{}{}
	}
}

// Pending returns the ids added during the batch, in sorted order.
func (o *Overlay) Pending() []string {
	out := make([]string, 0, len(o.pending))
	for id := range o.pending {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Flush commits pending additions to the base roster.
func (o *Overlay) Flush() {
	for id := range o.pending {
		o.base.Add(id)
	}
	o.pending = make(map[string]struct{})
}
