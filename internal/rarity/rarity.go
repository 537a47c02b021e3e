// Package rarity defines the closed, ordered set of rarity tiers used by
// banner rate tables and the character catalog.
package rarity

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var ErrUnknownTier = errors.New("unknown rarity tier")

// Tier is a rarity tier. Ordering is significant: higher values are rarer,
// so tiers compare directly with < and >.
type Tier int

const (
	Common Tier = iota
	Rare
	Epic
	Legendary
	Mythical
)

var tierNames = [...]string{
	Common:    "common",
	Rare:      "rare",
	Epic:      "epic",
	Legendary: "legendary",
	Mythical:  "mythical",
}

// Tiers returns all tiers in ascending order (lowest rarity first).
func Tiers() []Tier {
	return []Tier{Common, Rare, Epic, Legendary, Mythical}
}

// TiersDescending returns all tiers from highest rarity to lowest. The
// rarity roller walks tiers in this order so that tie-breaks at cumulative
// weight boundaries always favor the rarer tier.
func TiersDescending() []Tier {
	return []Tier{Mythical, Legendary, Epic, Rare, Common}
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= Common && t <= Mythical
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Parse maps a tier name to its Tier value.
func Parse(s string) (Tier, error) {
	for i, name := range tierNames {
		if name == s {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// MarshalText encodes the tier name; used for JSON values and map keys.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
	}
	return []byte(tierNames[t]), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnmarshalYAML lets tiers appear as names in banner files, including as
// rate-table map keys.
func (t *Tier) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

func (t Tier) MarshalYAML() (interface{}, error) {
	b, err := t.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
