// Package services provides domain services for rules that span several
// aggregates of the order tracking system.
//
// The package includes:
//   - PricingEngine: computes order totals from line items, offers and a coupon
//
// Domain services hold no state and perform no I/O; callers load the inputs
// and persist the results.
package services
