// SPDX-License-Identifier: MIT

package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrBadPoolSize is returned by New for size < 1.
	ErrBadPoolSize = errors.New("pool: size must be >= 1")

	// ErrPoolClosed is returned by Acquire after Shutdown.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrNoWorkers is returned by Acquire when every worker is dead.
	ErrNoWorkers = errors.New("pool: no live workers")

	// ErrAlreadyReleased rejects a second Release of the same acquisition.
	ErrAlreadyReleased = errors.New("pool: worker already released")

	// ErrForeignWorker rejects a Release of a worker owned by another pool.
	ErrForeignWorker = errors.New("pool: worker does not belong to this pool")

	// ErrWorkerDead is returned by Call when the worker's loop has ended.
	ErrWorkerDead = errors.New("pool: worker is dead")

	// ErrCallTimeout is returned by Call when no reply arrives within the call timeout.
	ErrCallTimeout = errors.New("pool: call timed out")

	// ErrReplyMismatch is returned when a reply carries another request's index.
	ErrReplyMismatch = errors.New("pool: reply index mismatch")
)

// workerErrorf tags err with the worker id.
func workerErrorf(id int, err error) error {
	return fmt.Errorf("worker %d: %w", id, err)
}
