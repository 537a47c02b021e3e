// Package catalog provides the read-only character catalog the engine rolls
// against, plus the player roster (the owned-character set).
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/recruit-engine/internal/rarity"
)

var (
	ErrDuplicateID = errors.New("duplicate character id")
	ErrNotFound    = errors.New("character not found")
)

// Entry is one static character template. Featured status is decided per
// banner, not here.
type Entry struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Tier    rarity.Tier `json:"tier" yaml:"tier"`
	Element string      `json:"element,omitempty" yaml:"element,omitempty"`
}

// Catalog is the read-only character content the engine queries.
type Catalog interface {
	ListByTier(t rarity.Tier) []Entry
	Get(id string) (Entry, bool)
}

// Static is an in-memory Catalog indexed by tier.
type Static struct {
	byID   map[string]Entry
	byTier map[rarity.Tier][]Entry
}

// NewStatic builds a catalog from entries. Duplicate ids and invalid tiers
// are content-configuration errors.
func NewStatic(entries []Entry) (*Static, error) {
	c := &Static{
		byID:   make(map[string]Entry, len(entries)),
		byTier: make(map[rarity.Tier][]Entry),
	}
	for _, e := range entries {
		if e.ID == "" {
			return nil, errors.New("character id must not be empty")
		}
		if !e.Tier.Valid() {
			return nil, fmt.Errorf("character %s: invalid tier %d", e.ID, int(e.Tier))
		}
		if _, ok := c.byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		c.byID[e.ID] = e
		c.byTier[e.Tier] = append(c.byTier[e.Tier], e)
	}
	// deterministic order within a tier, so seeded rolls are reproducible
	for t := range c.byTier {
		sort.Slice(c.byTier[t], func(i, j int) bool {
			return c.byTier[t][i].ID < c.byTier[t][j].ID
		})
	}
	return c, nil
}

// LoadFile reads a catalog YAML file of the form {characters: [...]}.
func LoadFile(path string) (*Static, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc struct {
		Characters []Entry `yaml:"characters"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewStatic(doc.Characters)
}

func (c *Static) ListByTier(t rarity.Tier) []Entry {
	return c.byTier[t]
}

func (c *Static) Get(id string) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}
