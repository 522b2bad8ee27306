// Package kernel provides the shared value objects of the order tracking domain.
//
// The package includes:
//   - UUID: identifier for orders, users, coupons, offers and products
//   - GeoLocation: a validated WGS84 latitude/longitude pair reported by delivery agents
//
// Both are immutable and safe for concurrent use. Their zero values are invalid
// and fail Validate, so they must be created through their constructors.
package kernel
