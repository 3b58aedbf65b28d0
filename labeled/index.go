// SPDX-License-Identifier: MIT

package labeled

import "fmt"

// Key identifies one experimental data point.
type Key struct {
	Dataset string
	Point   int
}

// String renders the key as "dataset[point]".
func (k Key) String() string { return fmt.Sprintf("%s[%d]", k.Dataset, k.Point) }

// Index is an immutable ordered sequence of unique Keys.
//
// Datasets are recorded in first-appearance order; a dataset's points need
// not be contiguous, although inputs produced by IndexFromLengths always are.
type Index struct {
	keys      []Key
	datasets  []string
	positions map[string][]int
}

// NewIndex builds an Index from keys. The slice is copied.
//
// Errors:
//   - ErrEmptyIndex when keys is empty.
//   - ErrDuplicateKey when a (dataset, point) pair occurs twice.
//
// Complexity: O(n).
func NewIndex(keys []Key) (*Index, error) {
	if len(keys) == 0 {
		return nil, ErrEmptyIndex
	}
	ix := &Index{
		keys:      make([]Key, len(keys)),
		positions: make(map[string][]int),
	}
	copy(ix.keys, keys)

	seen := make(map[Key]struct{}, len(keys))
	for i, k := range ix.keys {
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("NewIndex: %s: %w", k, ErrDuplicateKey)
		}
		seen[k] = struct{}{}
		if _, ok := ix.positions[k.Dataset]; !ok {
			ix.datasets = append(ix.datasets, k.Dataset)
		}
		ix.positions[k.Dataset] = append(ix.positions[k.Dataset], i)
	}

	return ix, nil
}

// IndexFromLengths builds the index datasets[0][0..n0), datasets[1][0..n1), ...
// Both slices must have equal length and every length must be positive.
func IndexFromLengths(datasets []string, lengths []int) (*Index, error) {
	if len(datasets) != len(lengths) {
		return nil, fmt.Errorf("IndexFromLengths: %d names, %d lengths: %w", len(datasets), len(lengths), ErrLengthMismatch)
	}
	var keys []Key
	for d, name := range datasets {
		if lengths[d] <= 0 {
			return nil, fmt.Errorf("IndexFromLengths: %s: %w", name, ErrEmptyIndex)
		}
		for p := 0; p < lengths[d]; p++ {
			keys = append(keys, Key{Dataset: name, Point: p})
		}
	}

	return NewIndex(keys)
}

// Len returns the number of keys.
func (ix *Index) Len() int { return len(ix.keys) }

// Key returns the i-th key. It panics if i is out of range, like a slice access.
func (ix *Index) Key(i int) Key { return ix.keys[i] }

// Keys returns a copy of all keys in order.
func (ix *Index) Keys() []Key {
	out := make([]Key, len(ix.keys))
	copy(out, ix.keys)

	return out
}

// Datasets returns the dataset names in first-appearance order.
func (ix *Index) Datasets() []string {
	out := make([]string, len(ix.datasets))
	copy(out, ix.datasets)

	return out
}

// Positions returns the offsets of the points that belong to dataset.
func (ix *Index) Positions(dataset string) ([]int, error) {
	pos, ok := ix.positions[dataset]
	if !ok {
		return nil, fmt.Errorf("Positions(%q): %w", dataset, ErrNoSuchDataset)
	}
	out := make([]int, len(pos))
	copy(out, pos)

	return out, nil
}

// Has reports whether dataset contributes at least one point.
func (ix *Index) Has(dataset string) bool {
	_, ok := ix.positions[dataset]
	return ok
}

// Equal reports whether both indices hold the same keys in the same order.
func (ix *Index) Equal(other *Index) bool {
	if ix == other {
		return true
	}
	if ix == nil || other == nil || len(ix.keys) != len(other.keys) {
		return false
	}
	for i := range ix.keys {
		if ix.keys[i] != other.keys[i] {
			return false
		}
	}

	return true
}

// checkSame returns ErrIndexMismatch (tagged with op) unless a and b are equal.
func checkSame(op string, a, b *Index) error {
	if !a.Equal(b) {
		return fmt.Errorf("%s: %w", op, ErrIndexMismatch)
	}

	return nil
}
