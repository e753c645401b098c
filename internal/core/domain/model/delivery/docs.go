// Package delivery provides domain entities and business logic for partial
// delivery chains. It implements the PartialDelivery aggregate root, which
// decomposes one original delivery job into an ordered chain of segments
// carried by independent couriers.
//
// The package includes:
//   - PartialDelivery: The aggregate root owning the ordered segment chain
//   - Segment: One courier's leg of the route with first-writer-wins assignment
//   - Status / SegmentStatus: State machines enforcing valid transitions
//   - PackageInfo: A value object describing the physical package
//
// Key business rules:
//   - Adjacent segments must share their boundary point within a tolerance radius
//   - At most one courier holds a segment in Accepted/InProgress at any time
//   - The chain is completed iff every segment is completed (derived, not stored)
//   - A failed segment re-opens for a new courier until its re-proposal budget
//     is exhausted, after which the whole chain cascades to cancelled
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package delivery
