package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrMemoryStateNotFound))
	assert.True(t, IsNotFoundError(ErrParametersNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrParametersNotFound)))

	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(ErrVersionConflict))
	assert.False(t, IsNotFoundError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("message includes entity and operation", func(t *testing.T) {
		t.Parallel()
		err := NewStoreError("parameters", "compare_and_set", "update failed", ErrVersionConflict)

		assert.Contains(t, err.Error(), "parameters")
		assert.Contains(t, err.Error(), "compare_and_set")
		assert.Contains(t, err.Error(), ErrVersionConflict.Error())
	})

	t.Run("works without a cause", func(t *testing.T) {
		t.Parallel()
		err := NewStoreError("review_event", "append", "nothing written", nil)

		assert.Contains(t, err.Error(), "append operation on review_event failed")
		assert.NoError(t, err.Unwrap())
	})

	t.Run("unwraps for errors.Is and errors.As", func(t *testing.T) {
		t.Parallel()
		err := NewStoreError("memory_state", "get", "row scan failed", ErrMemoryStateNotFound)

		assert.ErrorIs(t, err, ErrMemoryStateNotFound)
		assert.ErrorIs(t, err, ErrNotFound)

		var storeErr *StoreError
		assert.ErrorAs(t, fmt.Errorf("outer: %w", err), &storeErr)
		assert.Equal(t, "memory_state", storeErr.Entity)
	})
}

func TestEntitySpecificErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	assert.False(t, errors.Is(ErrMemoryStateNotFound, ErrParametersNotFound))
	assert.False(t, errors.Is(ErrParametersNotFound, ErrMemoryStateNotFound))
}
