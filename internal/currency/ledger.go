package currency

import "fmt"

// Ledger holds one player's balances. All mutations are all-or-nothing and
// no balance can ever go negative. The ledger itself is not goroutine-safe;
// the summon engine serializes access per player.
type Ledger struct {
	balances map[Kind]int64
}

// NewLedger creates a ledger from initial balances. Negative balances and
// unknown kinds are configuration errors.
func NewLedger(initial map[Kind]int64) (*Ledger, error) {
	l := &Ledger{balances: make(map[Kind]int64, len(kindNames))}
	for k, v := range initial {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %d %s", ErrInvalidAmount, v, k)
		}
		l.balances[k] = v
	}
	return l, nil
}

// Balance returns the current amount of one currency.
func (l *Ledger) Balance(k Kind) int64 {
	return l.balances[k]
}

// CanAfford reports whether the full cost could be debited right now.
func (l *Ledger) CanAfford(c Cost) bool {
	if c.Validate() != nil {
		return false
	}
	return l.balances[c.Kind] >= c.Amount
}

// Debit removes the cost from the ledger. On any error the ledger is
// untouched; there are no partial debits.
func (l *Ledger) Debit(c Cost) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if l.balances[c.Kind] < c.Amount {
		return fmt.Errorf("%w: need %d %s, have %d",
			ErrInsufficient, c.Amount, c.Kind, l.balances[c.Kind])
	}
	l.balances[c.Kind] -= c.Amount
	return nil
}

// Credit adds amount to one currency.
func (l *Ledger) Credit(k Kind, amount int64) error {
	if !k.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	if amount < 0 {
		return fmt.Errorf("%w: %d %s", ErrInvalidAmount, amount, k)
	}
	l.balances[k] += amount
	return nil
}

// Snapshot returns a copy of all balances, including zero-valued kinds.
func (l *Ledger) Snapshot() map[Kind]int64 {
	out := make(map[Kind]int64, len(kindNames))
	for _, k := range Kinds() {
		out[k] = l.balances[k]
	}
	return out
}
