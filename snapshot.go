/*
 * snapshot.go, part of qetraj.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"fmt"
	"reflect"

	v3 "github.com/rmera/qetraj/v3"
)

// Constraint is an opaque constraint descriptor: the kind of constraint and its
// keyword arguments, e.g. {Name: "FixAtoms", Kwargs: {"indices": Vector{0, 1}}}.
type Constraint struct {
	Name   string
	Kwargs map[string]Value
}

// Copy returns a deep copy of the constraint.
func (C Constraint) Copy() Constraint {
	ret := Constraint{Name: C.Name}
	if C.Kwargs != nil {
		ret.Kwargs = copyValues(C.Kwargs)
	}
	return ret
}

// Snapshot is one point along a relaxation trajectory: the structure plus, if a calculation
// result was attached to it, the energy, forces and stress.
// Species and PBC are the same for every snapshot in a trajectory. Constraints and
// Parameters hold for the whole trajectory, but only its first snapshot carries them.
// Units are Angstrom and eV.
type Snapshot struct {
	Species   []string
	Positions *v3.Matrix //Natoms x 3
	Cell      *v3.Matrix //lattice vectors as rows, nil if unknown
	PBC       [3]bool

	Energy *float64
	Forces *v3.Matrix //Natoms x 3, nil if absent
	Stress *v3.Matrix //3x3, nil if absent

	Constraints []Constraint
	Parameters  map[string]Value
}

// NewSnapshot returns a fully periodic snapshot with the given species, positions
// and cell. The matrices are not copied.
func NewSnapshot(species []string, positions, cell *v3.Matrix) *Snapshot {
	S := new(Snapshot)
	S.Species = species
	S.Positions = positions
	S.Cell = cell
	S.PBC = [3]bool{true, true, true}
	return S
}

// Len returns the number of atoms.
func (S *Snapshot) Len() int {
	return len(S.Species)
}

// HasResults returns true if energy, forces or stress are present.
func (S *Snapshot) HasResults() bool {
	return S.Energy != nil || S.Forces != nil || S.Stress != nil
}

// SetEnergy sets the energy of the snapshot, in eV.
func (S *Snapshot) SetEnergy(e float64) {
	S.Energy = &e
}

// ClearResults removes energy, forces and stress.
func (S *Snapshot) ClearResults() {
	S.Energy = nil
	S.Forces = nil
	S.Stress = nil
}

// Copy returns a deep copy of the snapshot. The copy shares no
// mutable storage with the original.
func (S *Snapshot) Copy() *Snapshot {
	if S == nil {
		panic("Attempted to copy a nil snapshot")
	}
	N := new(Snapshot)
	N.Species = append([]string(nil), S.Species...)
	N.Positions = S.Positions.Clone()
	N.Cell = S.Cell.Clone()
	N.PBC = S.PBC
	if S.Energy != nil {
		N.SetEnergy(*S.Energy)
	}
	N.Forces = S.Forces.Clone()
	N.Stress = S.Stress.Clone()
	if S.Constraints != nil {
		N.Constraints = make([]Constraint, len(S.Constraints))
		for i, c := range S.Constraints {
			N.Constraints[i] = c.Copy()
		}
	}
	if S.Parameters != nil {
		N.Parameters = copyValues(S.Parameters)
	}
	return N
}

// Next returns the starting point for the step that follows S in a trajectory:
// a deep copy of the structure, without results, constraints or parameters.
func (S *Snapshot) Next() *Snapshot {
	N := S.Copy()
	N.ClearResults()
	N.Constraints = nil
	N.Parameters = nil
	return N
}

// Check returns an error if the snapshot is inconsistent: no atoms, positions or
// forces with a number of vectors different from the number of species, or
// a cell or stress that is not 3x3.
func (S *Snapshot) Check() error {
	n := S.Len()
	switch {
	case n == 0:
		return CError{"Snapshot with no atoms", []string{"Check"}}
	case S.Positions == nil:
		return CError{"Snapshot without positions", []string{"Check"}}
	case S.Positions.NVecs() != n:
		return CError{fmt.Sprintf("%d positions for %d atoms", S.Positions.NVecs(), n), []string{"Check"}}
	case S.Cell != nil && S.Cell.NVecs() != 3:
		return CError{fmt.Sprintf("Cell with %d vectors", S.Cell.NVecs()), []string{"Check"}}
	case S.Forces != nil && S.Forces.NVecs() != n:
		return CError{fmt.Sprintf("%d forces for %d atoms", S.Forces.NVecs(), n), []string{"Check"}}
	case S.Stress != nil && S.Stress.NVecs() != 3:
		return CError{fmt.Sprintf("Stress tensor with %d rows", S.Stress.NVecs()), []string{"Check"}}
	}
	return nil
}

// Equal returns true if S and O hold exactly the same data.
// Floating point values are compared without tolerance.
func (S *Snapshot) Equal(O *Snapshot) bool {
	if S == nil || O == nil {
		return S == nil && O == nil
	}
	if !reflect.DeepEqual(S.Species, O.Species) || S.PBC != O.PBC {
		return false
	}
	if (S.Energy == nil) != (O.Energy == nil) || (S.Energy != nil && *S.Energy != *O.Energy) {
		return false
	}
	for _, p := range [][2]*v3.Matrix{{S.Positions, O.Positions}, {S.Cell, O.Cell}, {S.Forces, O.Forces}, {S.Stress, O.Stress}} {
		if !v3.Equal(p[0], p[1]) {
			return false
		}
	}
	if len(S.Constraints) != len(O.Constraints) {
		return false
	}
	for i, c := range S.Constraints {
		o := O.Constraints[i]
		if c.Name != o.Name || !MapsEqual(c.Kwargs, o.Kwargs) {
			return false
		}
	}
	return MapsEqual(S.Parameters, O.Parameters)
}

// CheckTrajectory verifies the snapshots in traj share the invariant data:
// species, periodicity and number of atoms.
func CheckTrajectory(traj []*Snapshot) error {
	if len(traj) == 0 {
		return CError{"Empty trajectory", []string{"CheckTrajectory"}}
	}
	first := traj[0]
	for i, S := range traj {
		if S == nil {
			return CError{fmt.Sprintf("Nil snapshot %d", i), []string{"CheckTrajectory"}}
		}
		if err := S.Check(); err != nil {
			return errDecorate(err, fmt.Sprintf("CheckTrajectory: snapshot %d", i))
		}
		if !reflect.DeepEqual(S.Species, first.Species) || S.PBC != first.PBC {
			return CError{fmt.Sprintf("Snapshot %d has different species or periodicity than snapshot 0", i), []string{"CheckTrajectory"}}
		}
	}
	return nil
}

func copyValues(m map[string]Value) map[string]Value {
	ret := make(map[string]Value, len(m))
	for k, v := range m {
		ret[k] = Canonical(v) //always a fresh copy
	}
	return ret
}
