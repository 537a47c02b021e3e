// Package currency implements the player wallet: a fixed set of named
// currencies with atomic, all-or-nothing credit and debit operations.
package currency

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownKind   = errors.New("unknown currency kind")
	ErrInvalidAmount = errors.New("amount must be non-negative")
	ErrInsufficient  = errors.New("insufficient balance")
)

// Kind is a closed enumeration of the currencies the engine manages.
// Adding a currency is a compile-time change: every switch over Kind must
// be extended, nothing is keyed by free-form strings.
type Kind int

const (
	FriendshipPoints Kind = iota
	PremiumGems
	SummonTickets
	GoldCoins
)

var kindNames = [...]string{
	FriendshipPoints: "friendship_points",
	PremiumGems:      "premium_gems",
	SummonTickets:    "summon_tickets",
	GoldCoins:        "gold_coins",
}

// Kinds returns every defined currency kind.
func Kinds() []Kind {
	return []Kind{FriendshipPoints, PremiumGems, SummonTickets, GoldCoins}
}

// Valid reports whether k is a defined currency.
func (k Kind) Valid() bool {
	switch k {
	case FriendshipPoints, PremiumGems, SummonTickets, GoldCoins:
		return true
	}
	return false
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// DisplayName returns the player-facing currency name used in error
// messages, e.g. "Premium Gems".
func (k Kind) DisplayName() string {
	switch k {
	case FriendshipPoints:
		return "Friendship Points"
	case PremiumGems:
		return "Premium Gems"
	case SummonTickets:
		return "Summon Tickets"
	case GoldCoins:
		return "Gold Coins"
	}
	return k.String()
}

// ParseKind maps a currency name to its Kind value.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

func (k Kind) MarshalYAML() (interface{}, error) {
	b, err := k.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Cost is one price: a single currency and a non-negative amount.
type Cost struct {
	Kind   Kind  `json:"kind" yaml:"kind"`
	Amount int64 `json:"amount" yaml:"amount"`
}

// Validate rejects malformed costs at configuration time, before any roll.
func (c Cost) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(c.Kind))
	}
	if c.Amount < 0 {
		return fmt.Errorf("%w: %d %s", ErrInvalidAmount, c.Amount, c.Kind)
	}
	return nil
}
