package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable reports that the durable engine could not be opened.
	ErrStorageUnavailable = errors.New("catalog: storage unavailable")
	// ErrDuplicateKey reports a create on an identity that already exists.
	ErrDuplicateKey = errors.New("catalog: duplicate key")
	// ErrDurableOperationFailed reports a failed durable write or read on an open store.
	ErrDurableOperationFailed = errors.New("catalog: durable operation failed")
	// ErrNotReady is returned by mutations issued before Initialize completed.
	ErrNotReady = errors.New("catalog: store not ready")
	// ErrNotFound is only returned by UpdateExisting and DeleteExisting.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrValidation wraps product validation failures.
	ErrValidation = errors.New("catalog: validation failed")
)

// durableErr tags an engine error as ErrDurableOperationFailed while keeping the cause inspectable.
// Duplicate keys keep their own kind.
func durableErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, ErrDurableOperationFailed) {
		return fmt.Errorf("catalog: %s: %w", op, err)
	}
	return fmt.Errorf("catalog: %s: %w", op, errors.Join(ErrDurableOperationFailed, err))
}

func unavailableErr(op string, err error) error {
	return fmt.Errorf("catalog: %s: %w", op, errors.Join(ErrStorageUnavailable, err))
}
