package tracking

import "orderflow/internal/core/domain/model/kernel"

// Snapshot returns the current state of an open topic.
func (b *Broker) Snapshot(orderID kernel.UUID) (Snapshot, bool) {
	t, ok := b.lookup(orderID)
	if !ok {
		return Snapshot{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(), true
}
