// Package matrix_test contains unit tests for universal Matrix (linear algebra) operations.
package matrix_test

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/thcov/matrix"
)

// TestHelpers_InterfaceHiding_Fallback ensures the interface fallback path
// produces the same results as the *Dense fast-path.
func TestHelpers_InterfaceHiding_Fallback(t *testing.T) {
	t.Parallel()

	a := RandFilledDense(t, 4, 3, 1)
	b := RandFilledDense(t, 4, 3, 2)
	c := RandFilledDense(t, 3, 5, 3)

	sum1, err := matrix.Add(a, b)
	require.NoError(t, err)
	sum2, err := matrix.Add(hide{a}, b)
	require.NoError(t, err)
	CompareExact(t, rowsOf(t, sum1), sum2)

	p1, err := matrix.Mul(a, c)
	require.NoError(t, err)
	p2, err := matrix.Mul(hide{a}, hide{c})
	require.NoError(t, err)
	CompareClose(t, p1, p2, 0, 1e-14)

	t1, err := matrix.Transpose(a)
	require.NoError(t, err)
	t2, err := matrix.Transpose(hide{a})
	require.NoError(t, err)
	CompareExact(t, rowsOf(t, t1), t2)
}

func rowsOf(t *testing.T, m matrix.Matrix) [][]float64 {
	t.Helper()
	out := make([][]float64, m.Rows())
	for i := range out {
		out[i] = make([]float64, m.Cols())
		for j := range out[i] {
			out[i][j] = MustAt(t, m, i, j)
		}
	}

	return out
}

func TestAddSub_Correctness(t *testing.T) {
	a := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4})
	b := NewFilledDense(t, 2, 2, []float64{4, 3, 2, 1})
	s, err := matrix.Add(a, b)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{5, 5}, {5, 5}}, s)
	d, err := matrix.Sub(a, b)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{-3, -1}, {1, 3}}, d)

	_, err = matrix.Add(a, MustDense(t, 3, 2))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Sub(nil, a)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestMul_Correctness(t *testing.T) {
	a := NewFilledDense(t, 2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := NewFilledDense(t, 3, 2, []float64{7, 8, 9, 10, 11, 12})
	p, err := matrix.Mul(a, b)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{58, 64}, {139, 154}}, p)

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestScaleHadamardMatVecOuter(t *testing.T) {
	a := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4})
	s, err := matrix.Scale(a, -2)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{-2, -4}, {-6, -8}}, s)
	_, err = matrix.Scale(a, math.NaN())
	require.ErrorIs(t, err, matrix.ErrNaNInf)

	h, err := matrix.Hadamard(a, hide{a})
	require.NoError(t, err)
	CompareExact(t, [][]float64{{1, 4}, {9, 16}}, h)

	y, err := matrix.MatVec(a, []float64{1, 1})
	require.NoError(t, err)
	require.Equal(t, []float64{3, 7}, y)
	_, err = matrix.MatVec(a, []float64{1})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	o, err := matrix.Outer([]float64{1, 2}, []float64{3, 4, 5})
	require.NoError(t, err)
	CompareExact(t, [][]float64{{3, 4, 5}, {6, 8, 10}}, o)
	_, err = matrix.Outer(nil, []float64{1})
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// ---------- Eigen ----------

// TestEigen_Errors verifies error paths: non-square, non-symmetric, and forced non-convergence.
func TestEigen_Errors(t *testing.T) {
	_, _, err := matrix.Eigen(MustDense(t, 2, 3), 1e-10, 50)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	asym := NewFilledDense(t, 2, 2, []float64{1, 2, 3, 4})
	_, _, err = matrix.Eigen(asym, 1e-12, 50)
	require.ErrorIs(t, err, matrix.ErrAsymmetry)

	// zero iterations with nonzero off-diagonals → ErrMatrixEigenFailed
	sym := NewFilledDense(t, 2, 2, []float64{2, 1, 1, 2})
	_, _, err = matrix.Eigen(sym, 1e-12, 0)
	require.ErrorIs(t, err, matrix.ErrMatrixEigenFailed)
}

func TestEigen_Known2x2(t *testing.T) {
	sym := NewFilledDense(t, 2, 2, []float64{2, 1, 1, 2})
	vals, q, err := matrix.Eigen(sym, 1e-12, 100)
	require.NoError(t, err)
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	sliceClose(t, sorted, []float64{1, 3}, 0, 1e-12)

	// Q columns are unit eigenvectors: A q = λ q.
	for k := 0; k < 2; k++ {
		col, err := q.Col(k)
		require.NoError(t, err)
		aq, err := matrix.MatVec(sym, col)
		require.NoError(t, err)
		for i := range col {
			require.InDelta(t, vals[k]*col[i], aq[i], 1e-12)
		}
	}
}

func TestEigen_Diagonal_NoRotation(t *testing.T) {
	d := NewFilledDense(t, 3, 3, []float64{3, 0, 0, 0, -1, 0, 0, 0, 0})
	vals, q, err := matrix.Eigen(d, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []float64{3, -1, 0}, vals)
	I, err := matrix.NewIdentity(3)
	require.NoError(t, err)
	CompareExact(t, rowsOf(t, I), q)
}

// TestEigen_Reconstruction checks Q diag(λ) Qᵀ ≈ A and QᵀQ ≈ I for a random symmetric matrix.
func TestEigen_Reconstruction(t *testing.T) {
	const n = 6
	A := RandSymmetric(t, n, 42)
	vals, q, err := matrix.Eigen(A, 1e-13, 10_000)
	require.NoError(t, err)

	L := MustDense(t, n, n)
	for i := 0; i < n; i++ {
		MustSet(t, L, i, i, vals[i])
	}
	qt, err := matrix.Transpose(q)
	require.NoError(t, err)
	ql, err := matrix.Mul(q, L)
	require.NoError(t, err)
	rec, err := matrix.Mul(ql, qt)
	require.NoError(t, err)
	CompareClose(t, rec, A, 1e-9, 1e-9)

	qtq, err := matrix.Mul(qt, q)
	require.NoError(t, err)
	I, err := matrix.NewIdentity(n)
	require.NoError(t, err)
	CompareClose(t, qtq, I, 0, 1e-10)
}

func TestSymmetrizeAndAllClose(t *testing.T) {
	a := NewFilledDense(t, 2, 2, []float64{1, 2, 4, 3})
	s, err := matrix.Symmetrize(a)
	require.NoError(t, err)
	CompareExact(t, [][]float64{{1, 3}, {3, 3}}, s)
	require.NoError(t, matrix.ValidateSymmetric(s, 0))

	ok, err := matrix.AllClose(a, s, 0, 0.5)
	require.NoError(t, err)
	require.False(t, ok)
	_, err = matrix.AllClose(a, s, math.NaN(), 0)
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}
