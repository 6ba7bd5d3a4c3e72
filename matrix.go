package dynamics

import (
	"fmt"
	"math/cmplx"
)

// Matrix is a dense row-major complex matrix.
type Matrix struct {
	Rows int
	Cols int
	Data []complex128
}

// NewMatrix copies data into a rows x cols matrix; nil data gives zeros.
func NewMatrix(rows, cols int, data []complex128) *Matrix {
	m := &Matrix{Rows: rows, Cols: cols, Data: make([]complex128, rows*cols)}
	copy(m.Data, data)
	return m
}

// RealMatrix builds a matrix from real rows.
func RealMatrix(rows [][]float64) *Matrix {
	m := NewMatrix(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		for j, v := range row {
			m.Set(i, j, complex(v, 0))
		}
	}
	return m
}

func Identity(n int) *Matrix {
	m := NewMatrix(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Diag builds a square matrix with values on the diagonal.
func Diag(values ...complex128) *Matrix {
	m := NewMatrix(len(values), len(values), nil)
	for i, v := range values {
		m.Set(i, i, v)
	}
	return m
}

func (m *Matrix) At(i, j int) complex128 {
	return m.Data[i*m.Cols+j]
}

func (m *Matrix) Set(i, j int, v complex128) {
	m.Data[i*m.Cols+j] = v
}

func (m *Matrix) Clone() *Matrix {
	return NewMatrix(m.Rows, m.Cols, m.Data)
}

func (m *Matrix) IsSquare() bool {
	return m.Rows == m.Cols
}

func (m *Matrix) Mul(b *Matrix) *Matrix {
	if m.Cols != b.Rows {
		panic(fmt.Sprintf("dynamics: matrix shape mismatch %dx%d * %dx%d", m.Rows, m.Cols, b.Rows, b.Cols))
	}
	out := NewMatrix(m.Rows, b.Cols, nil)
	for i := 0; i < m.Rows; i++ {
		for k := 0; k < m.Cols; k++ {
			a := m.At(i, k)
			if a == 0 {
				continue
			}
			for j := 0; j < b.Cols; j++ {
				out.Data[i*out.Cols+j] += a * b.At(k, j)
			}
		}
	}
	return out
}

func (m *Matrix) Add(b *Matrix) *Matrix {
	out := m.Clone()
	for i := range out.Data {
		out.Data[i] += b.Data[i]
	}
	return out
}

func (m *Matrix) Scale(c complex128) *Matrix {
	out := m.Clone()
	for i := range out.Data {
		out.Data[i] *= c
	}
	return out
}

// Dagger is the conjugate transpose.
func (m *Matrix) Dagger() *Matrix {
	out := NewMatrix(m.Cols, m.Rows, nil)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			out.Set(j, i, cmplx.Conj(m.At(i, j)))
		}
	}
	return out
}

func (m *Matrix) Conj() *Matrix {
	out := m.Clone()
	for i := range out.Data {
		out.Data[i] = cmplx.Conj(out.Data[i])
	}
	return out
}

// Kron is the Kronecker product m ⊗ b.
func (m *Matrix) Kron(b *Matrix) *Matrix {
	out := NewMatrix(m.Rows*b.Rows, m.Cols*b.Cols, nil)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			a := m.At(i, j)
			for k := 0; k < b.Rows; k++ {
				for l := 0; l < b.Cols; l++ {
					out.Set(i*b.Rows+k, j*b.Cols+l, a*b.At(k, l))
				}
			}
		}
	}
	return out
}

// IsDiagonal reports whether every off-diagonal entry is exactly zero.
func (m *Matrix) IsDiagonal() bool {
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			if i != j && m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}

// ApproxEqual compares entrywise within tol.
func (m *Matrix) ApproxEqual(b *Matrix, tol float64) bool {
	if m.Rows != b.Rows || m.Cols != b.Cols {
		return false
	}
	for i := range m.Data {
		if cmplx.Abs(m.Data[i]-b.Data[i]) > tol {
			return false
		}
	}
	return true
}
