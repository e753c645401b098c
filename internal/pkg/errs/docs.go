// Package errs defines the validation and lookup error types shared by the
// domain model, the application layer, and the adapters.
//
// Five error families cover the failures the engine reports:
//   - ObjectNotFoundError for lookups that miss (deliveries, segments, handovers)
//   - ValueIsRequiredError for absent constructor arguments
//   - ValueIsInvalidError for malformed values
//   - ValueIsOutOfRangeError for bounded values such as coordinates
//   - VersionIsInvalidError for stale aggregate versions
//
// Each family pairs a sentinel (ErrObjectNotFound and friends) with a struct
// carrying the offending parameter name, so callers can branch with errors.Is
// while handlers and the HTTP layer still get a descriptive message. The
// *WithCause constructors wrap an underlying error without losing the
// sentinel chain.
package errs
