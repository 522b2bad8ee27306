// Package notification models push delivery: device tokens and the message
// sent for an order status change.
package notification
