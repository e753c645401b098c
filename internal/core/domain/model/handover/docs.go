// Package handover provides the domain model for the physical transfer of a
// package between the couriers of two adjacent route segments.
//
// The package includes:
//   - Handover: The aggregate governing one transfer contract
//   - Status: A four-state machine (initiated, awaiting_confirmation,
//     confirmed, completed) with a cancelled state off the happy path
//
// Key business rules:
//   - A handover is initiated by the courier finishing the from-segment while
//     that segment is in progress
//   - Confirmation requires the short verification code generated at
//     initiation; mismatches consume attempts and eventually lock the handover
//   - Completion is the conjunction of two independently observed segment
//     transitions, so neither courier can close the handover unilaterally
package handover
