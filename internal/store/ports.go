// Package store defines the persistence port for the expense collection.
package store

import (
	"context"
	"errors"

	"tally/internal/core"
)

// ErrNotFound is returned by adapters when no collection has been saved yet.
// Callers treat it as an empty collection.
var ErrNotFound = errors.New("collection not found")

// Ports for persistence adapters.
type (
	// Loader returns the persisted collection as untrusted records.
	Loader interface {
		Load(ctx context.Context) ([]core.RawRecord, error)
	}

	// Saver replaces the whole persisted collection. There is no merge:
	// after Save returns, Load yields exactly the saved expenses.
	Saver interface {
		Save(ctx context.Context, expenses []core.Expense) error
	}

	Store interface {
		Loader
		Saver
	}
)
