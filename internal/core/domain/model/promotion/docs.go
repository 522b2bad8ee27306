// Package promotion holds the two discount sources applied at pricing time:
// Offers, which are time-bounded and applied automatically per product, and
// Coupons, which are code-activated and usage-limited.
package promotion
