package model

import (
	"errors"
	"fmt"
)

// Column names in board order.
const (
	ColumnInbox = "inbox"
	ColumnReady = "ready"
	ColumnGo    = "go!"
	ColumnDone  = "done"
)

// ErrColumnOrder is returned for a column index outside 0..3.
var ErrColumnOrder = errors.New("column order must be between 0 and 3")

// ErrColumnName is returned for a name that is not one of the four columns.
var ErrColumnName = errors.New("unknown column name")

var columnNames = [...]string{ColumnInbox, ColumnReady, ColumnGo, ColumnDone}

// ColumnCount is the number of columns every board has.
const ColumnCount = len(columnNames)

// ColumnName maps a column index to its name.
func ColumnName(order int) (string, error) {
	if order < 0 || order >= ColumnCount {
		return "", fmt.Errorf("%w: got %d", ErrColumnOrder, order)
	}
	return columnNames[order], nil
}

// ColumnOrder maps a column name back to its index.
func ColumnOrder(name string) (int, error) {
	for i, n := range columnNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrColumnName, name)
}
