// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/thcov/matrix"
)

func TestNewDense_InvalidDimensions(t *testing.T) {
	for _, tc := range []struct{ r, c int }{{0, 1}, {1, 0}, {-1, 3}} {
		_, err := matrix.NewDense(tc.r, tc.c)
		require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	}
}

func TestNewDenseDefaultZero(t *testing.T) {
	m := MustDense(t, 3, 4)
	m.Do(func(i, j int, v float64) bool {
		require.Zero(t, v, "[%d,%d]", i, j)
		return true
	})
	r, c := m.Shape()
	require.Equal(t, 3, r)
	require.Equal(t, 4, c)
}

func TestNewDenseFrom_CopiesAndValidates(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	m := NewFilledDense(t, 2, 2, vals)
	vals[0] = 99
	require.Equal(t, 1.0, MustAt(t, m, 0, 0))

	_, err := matrix.NewDenseFrom(2, 2, []float64{1, 2, 3})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.NewDenseFrom(1, 2, []float64{1, math.NaN()})
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

func TestNewDenseRows(t *testing.T) {
	m, err := matrix.NewDenseRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	CompareExact(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, m)

	_, err = matrix.NewDenseRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.NewDenseRows(nil)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestDense_AtSetBounds(t *testing.T) {
	m := MustDense(t, 2, 2)
	_, err := m.At(2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)
	MustSet(t, m, 1, 1, 7)
	require.Equal(t, 7.0, MustAt(t, m, 1, 1))
}

func TestDense_CloneIsDeep(t *testing.T) {
	m := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4})
	cp := m.Clone()
	MustSet(t, cp, 0, 0, 42)
	require.Equal(t, 1.0, MustAt(t, m, 0, 0))
}

func TestDense_RowColRowMajor(t *testing.T) {
	m := NewFilledDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	row, err := m.Row(1)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 5, 6}, row)
	col, err := m.Col(2)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 6}, col)
	_, err = m.Col(3)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	flat := m.RowMajor()
	flat[0] = -1
	require.Equal(t, 1.0, MustAt(t, m, 0, 0))
}

func TestDense_Induced(t *testing.T) {
	m := NewFilledDense(t, 3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	sub, err := m.Induced([]int{0, 2}, []int{0, 2})
	require.NoError(t, err)
	CompareExact(t, [][]float64{{1, 3}, {7, 9}}, sub)

	_, err = m.Induced(nil, []int{0})
	require.ErrorIs(t, err, matrix.ErrBadShape)
	_, err = m.Induced([]int{3}, []int{0})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestDense_ApplyAndString(t *testing.T) {
	m := NewFilledDense(t, 1, 2, []float64{1, 2})
	require.NoError(t, m.Apply(func(_, _ int, v float64) float64 { return 2 * v }))
	require.Equal(t, "[2, 4]\n", m.String())
	require.ErrorIs(t, m.Apply(func(_, _ int, _ float64) float64 { return math.NaN() }), matrix.ErrNaNInf)
}
