package tracking

import "context"

// Connection is the broker's view of a client connection.
type Connection interface {
	// ID identifies the connection; it must be unique among live connections.
	ID() string

	// Deliver writes ev to the client. It may block, but must return once ctx
	// is done. A returned error drops the subscription.
	Deliver(ctx context.Context, ev Event) error
}
