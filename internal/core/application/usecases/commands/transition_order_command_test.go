package commands_test

import (
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransitionOrderCommand(t *testing.T) {
	actor := mustActor(t, kernel.RoleDelivery)
	id := kernel.NewUUID()

	t.Run("valid input", func(t *testing.T) {
		eta := time.Date(2025, 5, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))

		cmd, err := commands.NewTransitionOrderCommand(actor, id, order.OutForDelivery, &eta)

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.Equal(t, actor, cmd.Actor())
		assert.Equal(t, id, cmd.OrderID())
		assert.Equal(t, order.OutForDelivery, cmd.Status())
		require.NotNil(t, cmd.ETA())
		assert.Equal(t, time.UTC, cmd.ETA().Location())
		assert.True(t, cmd.ETA().Equal(eta))
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(actor, id, order.Unknown, nil)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero order id", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(actor, kernel.UUID{}, order.Confirmed, nil)

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("anonymous actor", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(kernel.Actor{}, id, order.Confirmed, nil)

		require.Error(t, err)
	})
}
