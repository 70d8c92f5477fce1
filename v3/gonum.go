/*
 * gonum.go, part of qetraj.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//gonum.go contains most of what is needed for handling the gonum/mat types and facilities.

//All the *Vec functions will operate/produce row vectors, as the underlying Dense is row major.

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//The main container, must be able to implement any
//gonum interface.
//Matrix is a set of vectors in 3D space.
//Within the package it is understood that a "vector" is a row vector, i.e. the
//cartesian coordinates of a point in 3D space. The name of some funcitions in
//the library reflect this.
type Matrix struct {
	*mat.Dense
}

//Returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//Generate and returns a Matrix with 3 columns from data.
//The slice is not copied, so the Matrix and data share storage.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice lenght %d not divisible by %d or empty", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//FromRows builds a new Matrix from a slice of 3-element rows. The data is copied.
func FromRows(rows [][]float64) (*Matrix, error) {
	data := make([]float64, 0, 3*len(rows))
	for i, r := range rows {
		if len(r) != 3 {
			return nil, Error{fmt.Sprintf("Row %d has %d elements, 3 expected", i, len(r)), []string{"FromRows"}, true}
		}
		data = append(data, r...)
	}
	M, err := NewMatrix(data)
	if err != nil {
		return nil, errDecorate(err, "FromRows")
	}
	return M, nil
}

//Rows returns the contents of the matrix as a newly allocated slice of rows.
//The inverse of FromRows.
func (F *Matrix) Rows() [][]float64 {
	if F == nil {
		return nil
	}
	r := F.NVecs()
	ret := make([][]float64, r)
	for i := range ret {
		ret[i] = mat.Row(nil, i, F.Dense)
	}
	return ret
}

//return the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r

}

//Returns view of the given vector of the matrix in the receiver
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3)
	return &Matrix{r.(*mat.Dense)}
}

//Clone returns a deep copy of F, sharing no storage with it.
//A nil receiver gives a nil Matrix.
func (F *Matrix) Clone() *Matrix {
	if F == nil {
		return nil
	}
	return &Matrix{mat.DenseCopyOf(F.Dense)}
}

//Equal returns true if A and B have the same dimensions and are element-wise
//identical. No tolerance is used. Two nil matrices are equal.
func Equal(A, B *Matrix) bool {
	if A == nil || B == nil {
		return A == nil && B == nil
	}
	return mat.Equal(A.Dense, B.Dense)
}

//FromFractional puts in the receiver the cartesian coordinates corresponding
//to the fractional coordinates in A, for the lattice given by the rows of cell.
func (F *Matrix) FromFractional(A, cell *Matrix) {
	if cell.NVecs() != 3 {
		panic(ErrShape)
	}
	F.Dense.Mul(A.Dense, cell.Dense)
}

//ToFractional puts in the receiver the fractional coordinates of the cartesian
//coordinates in A, for the lattice given by the rows of cell. Returns error
//if the cell is singular.
func (F *Matrix) ToFractional(A, cell *Matrix) error {
	if cell.NVecs() != 3 {
		return Error{string(ErrShape), []string{"ToFractional"}, true}
	}
	var inv mat.Dense
	if err := inv.Inverse(cell.Dense); err != nil {
		return Error{fmt.Sprintf("Singular cell: %s", err.Error()), []string{"Inverse", "ToFractional"}, true}
	}
	F.Dense.Mul(A.Dense, &inv)
	return nil
}

//Wrap puts in the receiver the coordinates in A, translated by lattice vectors
//so all of them fall inside the cell. Fractional coordinates are taken modulo 1.
func (F *Matrix) Wrap(A, cell *Matrix) error {
	frac := Zeros(A.NVecs())
	if err := frac.ToFractional(A, cell); err != nil {
		return errDecorate(err, "Wrap")
	}
	r, c := frac.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := frac.At(i, j)
			v -= math.Floor(v)
			if v >= 1 { //tiny negative values round up to exactly 1
				v = 0
			}
			frac.Set(i, j, v)
		}
	}
	F.FromFractional(frac, cell)
	return nil
}

//MaxNorm returns the largest Euclidean norm among the vectors of F.
func (F *Matrix) MaxNorm() float64 {
	max := 0.0
	for i := 0; i < F.NVecs(); i++ {
		n := mat.Norm(F.VecView(i).Dense, 2) //Frobenius, so Euclidean for a vector
		if n > max {
			max = n
		}
	}
	return max
}

//Returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r, c := F.Dims()
	v := make([]string, r+2, r+2)
	v[0] = "\n["
	v[len(v)-1] = " ]"
	row := make([]float64, c, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, F.Dense) //now row has a slice witht he row i
		if i == 0 {
			v[i+1] = fmt.Sprintf("%6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
			continue
		} else if i == r-1 {
			v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f", row[0], row[1], row[2])
			continue
		} else {
			v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
		}
	}
	v[len(v)-2] = strings.Replace(v[len(v)-2], "\n", "", 1)
	return strings.Join(v, "")
}

//Errors

//the same as chem.Error but avoid circular import.
type errorInt interface {
	Error() string
	Critical() bool
	Decorate(string) []string
}

type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical return whether the error is critical or it can be ifnored
func (err Error) Critical() bool { return err.critical }

//errDecorate is a helper function that asserts that the error is
//implements errorInt and decorates the error with the caller's name before returning it.
//Errors of other types are returned unchanged.
func errDecorate(err error, caller string) error {
	err2, ok := err.(errorInt)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix = PanicMsg("qetraj/v3: A Matrix should have 3 columns")
	ErrShape        = PanicMsg("qetraj/v3: Dimension mismatch")
)
