// Package guard provides the ConstructorGuard used by value objects, commands
// and queries to reject zero-value instances that bypassed their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when a zero-value guard is
// validated with a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded into types that must only be built through a
// constructor. Its zero value means "not constructed", so a struct literal or
// a zero value of the embedding type fails its Validate method while every
// instance returned by the constructor passes.
//
// The guard carries no other state. Copying it copies the flag, which keeps
// value types such as commands and queries cheap to pass around.
//
// Example:
//
//	var ErrQuoteIsNotConstructed = errors.New("Quote must be created via NewQuote")
//
//	type Quote struct {
//	    total decimal.Decimal
//	    guard guard.ConstructorGuard
//	}
//
//	func NewQuote(total decimal.Decimal) (Quote, error) {
//	    if total.IsNegative() {
//	        return Quote{}, errs.NewValueIsInvalidError("total")
//	    }
//	    return Quote{total: total, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (q Quote) Validate() error {
//	    return q.guard.Validate(ErrQuoteIsNotConstructed)
//	}
type ConstructorGuard struct {
	constructed bool
}

// NewConstructorGuard returns a guard marked as constructed. Constructors set
// it last, after every field has been validated.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{constructed: true}
}

// Validate reports whether the embedding value came from its constructor.
//
// Parameters:
//   - err: the error to return for a zero-value guard, usually the type's
//     Err...IsNotConstructed sentinel
//
// Returns:
//   - nil when the guard was created by NewConstructorGuard
//   - err when the guard is the zero value
//   - ErrDefaultConstructorGuard when the guard is the zero value and err is nil
func (g ConstructorGuard) Validate(err error) error {
	if g.constructed {
		return nil
	}
	if err == nil {
		return ErrDefaultConstructorGuard
	}
	return err
}
