package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly format of the global system, entries are summed by
// AddBlock and the finished matrix is converted to CSR
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return mat.Transpose{Matrix: m.M} }
func (m DOK) NNZ() int            { return m.M.NNZ() }

func (m *DOK) SetReadOnly(name ...string) {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
}

// AddBlock sums the dense block ke into the rows and columns given by the
// location vectors. Negative locations are skipped.
func (m DOK) AddBlock(rows, cols []int, ke mat.Matrix) (err error) {
	m.checkWritable()
	var (
		nr, nc = ke.Dims()
		mr, mc = m.Dims()
	)
	if nr != len(rows) || nc != len(cols) {
		return fmt.Errorf("block of size %dx%d does not match %d rows and %d columns", nr, nc, len(rows), len(cols))
	}
	for _, gi := range rows {
		if gi >= mr {
			return fmt.Errorf("row %d out of range %d", gi, mr)
		}
	}
	for _, gj := range cols {
		if gj >= mc {
			return fmt.Errorf("column %d out of range %d", gj, mc)
		}
	}
	for i, gi := range rows {
		if gi < 0 {
			continue
		}
		for j, gj := range cols {
			if gj < 0 {
				continue
			}
			if v := ke.At(i, j); v != 0 {
				m.M.Set(gi, gj, m.M.At(gi, gj)+v)
			}
		}
	}
	return
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return mat.Transpose{Matrix: m.M} }
func (m CSR) NNZ() int                      { return m.M.NNZ() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}

// MulVec returns m x
func (m CSR) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: %d columns, vector of length %d", nc, len(x)))
	}
	y = make([]float64, nr)
	m.M.MulVecTo(y, false, x)
	return
}
