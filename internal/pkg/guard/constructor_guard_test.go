package guard_test

import (
	"errors"
	"testing"

	"orderflow/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// Then
		require.NoError(t, g.Validate(errors.New("quote not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_given_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expected := errors.New("command not constructed")

		// When
		err := g.Validate(expected)

		// Then
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_guard_falls_back_to_default_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	errPushTokenNotConstructed := errors.New("push token must be created via constructor")

	type pushToken struct {
		token string
		guard guard.ConstructorGuard
	}

	newPushToken := func(token string) (pushToken, error) {
		if token == "" {
			return pushToken{}, errors.New("token is required")
		}
		return pushToken{token: token, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed_value_passes", func(t *testing.T) {
		tok, err := newPushToken("ExponentPushToken[abc]")
		require.NoError(t, err)
		require.NoError(t, tok.guard.Validate(errPushTokenNotConstructed))
	})

	t.Run("copied_value_keeps_guard", func(t *testing.T) {
		tok, err := newPushToken("ExponentPushToken[abc]")
		require.NoError(t, err)

		tokCopy := tok
		require.NoError(t, tokCopy.guard.Validate(errPushTokenNotConstructed))
	})

	t.Run("zero_value_fails", func(t *testing.T) {
		var tok pushToken
		assert.Equal(t, errPushTokenNotConstructed, tok.guard.Validate(errPushTokenNotConstructed))
	})
}
