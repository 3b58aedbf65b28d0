// SPDX-License-Identifier: MIT

package labeled

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Vector is an immutable sequence of float64 values, one per index key.
type Vector struct {
	ix     *Index
	values []float64
}

// NewVector copies values into a Vector labeled by ix.
//
// Errors: ErrNilIndex; ErrLengthMismatch when len(values) != ix.Len().
func NewVector(ix *Index, values []float64) (*Vector, error) {
	if ix == nil {
		return nil, ErrNilIndex
	}
	if len(values) != ix.Len() {
		return nil, fmt.Errorf("NewVector: %d values for %d keys: %w", len(values), ix.Len(), ErrLengthMismatch)
	}
	v := &Vector{ix: ix, values: make([]float64, len(values))}
	copy(v.values, values)

	return v, nil
}

// Zeros returns the all-zero vector over ix.
func Zeros(ix *Index) *Vector {
	return &Vector{ix: ix, values: make([]float64, ix.Len())}
}

// Index returns the shared index.
func (v *Vector) Index() *Index { return v.ix }

// Len returns the number of values.
func (v *Vector) Len() int { return len(v.values) }

// At returns the i-th value. It panics if i is out of range.
func (v *Vector) At(i int) float64 { return v.values[i] }

// Values returns a copy of the raw values.
func (v *Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)

	return out
}

// RawValues exposes the backing slice read-only for hot loops in sibling
// packages. Callers must not modify it.
func (v *Vector) RawValues() []float64 { return v.values }

// IsZero reports whether every value is exactly zero.
func (v *Vector) IsZero() bool {
	for _, x := range v.values {
		if x != 0 {
			return false
		}
	}

	return true
}

// KeepDatasets returns a copy of v with every value outside the named
// datasets set to zero. Unknown names are ignored.
func (v *Vector) KeepDatasets(datasets []string) *Vector {
	keep := make(map[string]struct{}, len(datasets))
	for _, d := range datasets {
		keep[d] = struct{}{}
	}

	return v.Mask(func(k Key) bool {
		_, ok := keep[k.Dataset]
		return ok
	})
}

// Mask returns a copy of v keeping the values whose key satisfies keep and
// zeroing the rest.
func (v *Vector) Mask(keep func(Key) bool) *Vector {
	out := Zeros(v.ix)
	for i, x := range v.values {
		if keep(v.ix.keys[i]) {
			out.values[i] = x
		}
	}

	return out
}

// Add returns v + o.
func (v *Vector) Add(o *Vector) (*Vector, error) {
	if err := checkSame("Add", v.ix, o.ix); err != nil {
		return nil, err
	}
	out := Zeros(v.ix)
	floats.AddTo(out.values, v.values, o.values)

	return out, nil
}

// Sub returns v - o.
func (v *Vector) Sub(o *Vector) (*Vector, error) {
	if err := checkSame("Sub", v.ix, o.ix); err != nil {
		return nil, err
	}
	out := Zeros(v.ix)
	floats.SubTo(out.values, v.values, o.values)

	return out, nil
}

// AddScaled returns v + alpha*o.
func (v *Vector) AddScaled(alpha float64, o *Vector) (*Vector, error) {
	if err := checkSame("AddScaled", v.ix, o.ix); err != nil {
		return nil, err
	}
	out := Zeros(v.ix)
	floats.AddScaledTo(out.values, v.values, alpha, o.values)

	return out, nil
}

// Scale returns alpha*v.
func (v *Vector) Scale(alpha float64) *Vector {
	out := Zeros(v.ix)
	floats.ScaleTo(out.values, alpha, v.values)

	return out
}

// DivElem returns v[i]/o[i]. A zero divisor yields ErrZeroDivisor.
func (v *Vector) DivElem(o *Vector) (*Vector, error) {
	if err := checkSame("DivElem", v.ix, o.ix); err != nil {
		return nil, err
	}
	for i, d := range o.values {
		if d == 0 {
			return nil, fmt.Errorf("DivElem: %s: %w", v.ix.keys[i], ErrZeroDivisor)
		}
	}
	out := Zeros(v.ix)
	floats.DivTo(out.values, v.values, o.values)

	return out, nil
}

// Sum returns the element-wise sum of vs, which must share one index.
// An empty list is an error since no index is available.
func Sum(vs []*Vector) (*Vector, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("Sum: %w", ErrEmptyIndex)
	}
	out := Zeros(vs[0].ix)
	for _, x := range vs {
		if err := checkSame("Sum", out.ix, x.ix); err != nil {
			return nil, err
		}
		floats.Add(out.values, x.values)
	}

	return out, nil
}
