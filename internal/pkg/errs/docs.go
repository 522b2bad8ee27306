// Package errs holds the typed errors shared by the domain, the use cases and
// the adapters.
//
// Every type pairs a sentinel with a struct carrying details:
//   - ValueIsRequiredError / ErrValueIsRequired for missing input
//   - ValueIsInvalidError / ErrValueIsInvalid for malformed input
//   - ValueIsOutOfRangeError / ErrValueIsOutOfRange for bounded numbers
//   - ObjectNotFoundError / ErrObjectNotFound for unknown ids
//   - VersionIsInvalidError / ErrVersionIsInvalid when an optimistic update lost a race
//
// Unwrap returns the sentinel, so callers classify with errors.Is. The cause,
// when given, only enriches the message.
package errs
