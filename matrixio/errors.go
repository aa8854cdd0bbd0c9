// SPDX-License-Identifier: MIT

package matrixio

import "errors"

var (
	// ErrUnsupported is returned for a file extension with no codec.
	ErrUnsupported = errors.New("matrixio: unsupported file format")

	// ErrMalformed is returned for a header or body that cannot be parsed.
	ErrMalformed = errors.New("matrixio: malformed matrix document")

	// ErrRegistryFull is returned by Registry.Put at capacity.
	ErrRegistryFull = errors.New("matrixio: registry is full")

	// ErrNotFound is returned for an unknown matrix name.
	ErrNotFound = errors.New("matrixio: matrix not found")

	// ErrDuplicate is returned by Registry.Put for a name already in use.
	ErrDuplicate = errors.New("matrixio: duplicate matrix name")
)
