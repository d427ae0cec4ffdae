package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnName(t *testing.T) {
	want := []string{"inbox", "ready", "go!", "done"}
	for order, name := range want {
		got, err := ColumnName(order)
		require.NoError(t, err)
		assert.Equal(t, name, got)

		back, err := ColumnOrder(got)
		require.NoError(t, err)
		assert.Equal(t, order, back)
	}
}

func TestColumnNameOutOfRange(t *testing.T) {
	for _, order := range []int{-1, 4, 100} {
		name, err := ColumnName(order)
		assert.Empty(t, name)
		assert.True(t, errors.Is(err, ErrColumnOrder), "order %d", order)
	}
	assert.Equal(t, "column order must be between 0 and 3", ErrColumnOrder.Error())
}

func TestColumnOrderUnknown(t *testing.T) {
	_, err := ColumnOrder("backlog")
	assert.ErrorIs(t, err, ErrColumnName)
	assert.Contains(t, err.Error(), `"backlog"`)

	_, err = ColumnOrder("Inbox")
	assert.ErrorIs(t, err, ErrColumnName, "names are case sensitive")
}
