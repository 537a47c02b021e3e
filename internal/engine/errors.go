package engine

import (
	"errors"
	"fmt"
)

// Category classifies engine failures for callers:
//
//   - Configuration: broken content or rate tables; fatal, should have
//     been caught at banner load.
//   - Validation: recoverable caller mistakes (inactive banner, bad pull
//     count, insufficient currency); nothing was mutated.
//   - Transaction: a commit-phase persistence failure after currency was
//     debited; the engine refuses further play until resolved.
type Category int

const (
	CategoryConfiguration Category = iota
	CategoryValidation
	CategoryTransaction
)

func (c Category) String() string {
	switch c {
	case CategoryConfiguration:
		return "configuration"
	case CategoryValidation:
		return "validation"
	case CategoryTransaction:
		return "transaction"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Error is a categorized engine failure. Reason is safe to show players;
// Err carries the wrapped cause.
type Error struct {
	Category Category
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// CategoryOf extracts the category from an engine error chain.
func CategoryOf(err error) (Category, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Category, true
	}
	return 0, false
}

func validationError(reason string, err error) *Error {
	return &Error{Category: CategoryValidation, Reason: reason, Err: err}
}

func configurationError(reason string, err error) *Error {
	return &Error{Category: CategoryConfiguration, Reason: reason, Err: err}
}

func transactionError(reason string, err error) *Error {
	return &Error{Category: CategoryTransaction, Reason: reason, Err: err}
}
