// SPDX-License-Identifier: MIT

package labeled

import "errors"

var (
	// ErrIndexMismatch is returned when two labeled values with different
	// indices are combined.
	ErrIndexMismatch = errors.New("labeled: index mismatch")

	// ErrLengthMismatch indicates that the number of values (or the matrix
	// size) does not match the index length.
	ErrLengthMismatch = errors.New("labeled: length does not match index")

	// ErrDuplicateKey is returned by NewIndex when a (dataset, point) pair repeats.
	ErrDuplicateKey = errors.New("labeled: duplicate key")

	// ErrEmptyIndex is returned when an index would have no keys.
	ErrEmptyIndex = errors.New("labeled: empty index")

	// ErrNilIndex indicates a nil *Index argument.
	ErrNilIndex = errors.New("labeled: nil index")

	// ErrNoSuchDataset is returned when a dataset name is not present in the index.
	ErrNoSuchDataset = errors.New("labeled: dataset not in index")

	// ErrZeroDivisor is returned by element-wise division by a zero entry.
	ErrZeroDivisor = errors.New("labeled: division by zero")
)
