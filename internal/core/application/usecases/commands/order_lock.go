package commands

import (
	"orderflow/internal/core/domain/model/kernel"

	"github.com/moby/locker"
)

// lockOrder takes the per-order lock shared by every handler that writes an
// order's status or opens its tracking topic from storage.
func lockOrder(locks *locker.Locker, orderID kernel.UUID) func() {
	key := orderID.String()
	locks.Lock(key)
	return func() {
		_ = locks.Unlock(key)
	}
}
