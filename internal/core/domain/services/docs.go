// Package services provides domain services that orchestrate business operations
// across multiple domain entities in the delivery system. It implements complex
// business workflows that don't naturally belong to a single aggregate root.
//
// The package includes:
//   - RouteSegmenter: A domain service for splitting a waypoint route into segment drafts
//   - CostEstimator: A domain service for deterministic per-segment cost and ETA estimation
//
// Domain services coordinate between aggregates, implementing business logic that
// spans multiple bounded contexts following Domain-Driven Design principles.
package services
