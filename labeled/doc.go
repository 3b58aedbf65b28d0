// SPDX-License-Identifier: MIT

// Package labeled provides vectors and square matrices tagged with an ordered
// (dataset, point) index.
//
// Every value in a Vector, and every row and column of a Matrix, belongs to
// exactly one Key. Operations combining two labeled values check that both
// carry an equal Index and fail with ErrIndexMismatch otherwise, so alignment
// problems surface where they are made instead of as silently misaligned
// arithmetic further down the pipeline.
//
// Vectors and matrices are immutable: constructors copy their input, accessors
// return copies, and every arithmetic operation allocates a fresh result.
package labeled
