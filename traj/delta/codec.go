/*
 * codec.go, part of qetraj.
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

package delta

import (
	"fmt"
	"strconv"

	chem "github.com/rmera/qetraj"
	v3 "github.com/rmera/qetraj/v3"
)

// Encode returns the document for traj. Species, periodicity, constraints and
// parameters are taken from the first snapshot. Step 0 always has positions and cell;
// later steps have them only if they differ, element-wise, from the last ones written.
// Energy, forces and stress are included wherever present. Encode doesn't modify traj,
// and the document shares no storage with it.
func Encode(traj []*chem.Snapshot) (*Document, error) {
	if err := chem.CheckTrajectory(traj); err != nil {
		return nil, errDecorate(err, "Encode")
	}
	first := traj[0]
	numbers, err := chem.Numbers(first.Species)
	if err != nil {
		return nil, errDecorate(err, "Encode")
	}
	doc := &Document{
		Numbers:     numbers,
		PBC:         append([]bool(nil), first.PBC[:]...),
		Constraints: make([]Constraint, 0, len(first.Constraints)),
		Parameters:  chem.FlattenMap(first.Parameters),
		Trajectory:  make(map[string]Step, len(traj)),
	}
	if doc.Parameters == nil {
		doc.Parameters = make(map[string]any)
	}
	for _, c := range first.Constraints {
		kwargs := chem.FlattenMap(c.Kwargs)
		if kwargs == nil {
			kwargs = make(map[string]any)
		}
		doc.Constraints = append(doc.Constraints, Constraint{Name: c.Name, Kwargs: kwargs})
	}
	var pos, cell *v3.Matrix
	for i, S := range traj {
		if S.Cell == nil {
			return nil, Error{message: fmt.Sprintf("snapshot %d has no cell", i), deco: []string{"Encode"}}
		}
		var step Step
		if i == 0 || !v3.Equal(S.Positions, pos) {
			pos = S.Positions
			step.Positions = pos.Rows()
		}
		if i == 0 || !v3.Equal(S.Cell, cell) {
			cell = S.Cell
			step.Cell = cell.Rows()
		}
		if S.Energy != nil {
			e := *S.Energy
			step.Energy = &e
		}
		step.Forces = S.Forces.Rows()
		step.Stress = S.Stress.Rows()
		doc.Trajectory[strconv.Itoa(i)] = step
	}
	return doc, nil
}

// Decode rebuilds the full trajectory encoded in doc. Steps without positions or
// cell take them from the closest previous step that has them. An empty list
// is taken as a missing field. The constraints and parameters go to the first snapshot only.
func Decode(doc *Document) ([]*chem.Snapshot, error) {
	if doc == nil {
		return nil, SchemaError{Field: "document", Index: -1, Message: "nil document", deco: []string{"Decode"}}
	}
	if len(doc.Numbers) == 0 {
		return nil, SchemaError{Field: "numbers", Index: -1, Message: "missing", deco: []string{"Decode"}}
	}
	if len(doc.PBC) != 3 {
		return nil, SchemaError{Field: "pbc", Index: -1, Message: fmt.Sprintf("%d values, 3 needed", len(doc.PBC)), deco: []string{"Decode"}}
	}
	species, err := chem.Species(doc.Numbers)
	if err != nil {
		return nil, SchemaError{Field: "numbers", Index: -1, Message: err.Error(), deco: []string{"Decode"}}
	}
	n := doc.Len()
	if n == 0 {
		return nil, SchemaError{Field: "trajectory", Index: -1, Message: "no steps", deco: []string{"Decode"}}
	}
	template, err := invariants(doc)
	if err != nil {
		return nil, errDecorate(err, "Decode")
	}
	template.Species = species
	copy(template.PBC[:], doc.PBC)
	traj := make([]*chem.Snapshot, 0, n)
	var pos, cell *v3.Matrix
	for i := 0; i < n; i++ {
		step, ok := doc.Step(i)
		if !ok {
			return nil, SchemaError{Field: "trajectory", Index: i, Message: fmt.Sprintf("%d steps, but step %d is missing", n, i), deco: []string{"Decode"}}
		}
		if len(step.Positions) > 0 {
			if pos, err = matrix(step.Positions, "positions", i, len(species)); err != nil {
				return nil, errDecorate(err, "Decode")
			}
		} else if i == 0 {
			return nil, SchemaError{Field: "positions", Index: 0, Message: "missing", deco: []string{"Decode"}}
		}
		if len(step.Cell) > 0 {
			if cell, err = matrix(step.Cell, "cell", i, 3); err != nil {
				return nil, errDecorate(err, "Decode")
			}
		} else if i == 0 {
			return nil, SchemaError{Field: "cell", Index: 0, Message: "missing", deco: []string{"Decode"}}
		}
		S := template.Next()
		if i == 0 {
			S = template.Copy()
		}
		S.Positions = pos.Clone()
		S.Cell = cell.Clone()
		if step.Energy != nil {
			S.SetEnergy(*step.Energy)
		}
		if len(step.Forces) > 0 {
			if S.Forces, err = matrix(step.Forces, "forces", i, len(species)); err != nil {
				return nil, errDecorate(err, "Decode")
			}
		}
		if len(step.Stress) > 0 {
			if S.Stress, err = matrix(step.Stress, "stress", i, 3); err != nil {
				return nil, errDecorate(err, "Decode")
			}
		}
		traj = append(traj, S)
	}
	return traj, nil
}

//invariants returns a snapshot with the constraints and parameters of the document.
func invariants(doc *Document) (*chem.Snapshot, error) {
	S := new(chem.Snapshot)
	params, err := chem.MapOf(doc.Parameters)
	if err != nil {
		return nil, SchemaError{Field: "calculator_parameters", Index: -1, Message: err.Error(), deco: []string{"invariants"}}
	}
	S.Parameters = params
	if doc.Constraints != nil {
		S.Constraints = make([]chem.Constraint, 0, len(doc.Constraints))
	}
	for j, c := range doc.Constraints {
		if c.Name == "" {
			return nil, SchemaError{Field: "constraints", Index: -1, Message: fmt.Sprintf("constraint %d has no name", j), deco: []string{"invariants"}}
		}
		kwargs, err := chem.MapOf(c.Kwargs)
		if err != nil {
			return nil, SchemaError{Field: "constraints", Index: -1, Message: fmt.Sprintf("constraint %d: %s", j, err.Error()), deco: []string{"invariants"}}
		}
		S.Constraints = append(S.Constraints, chem.Constraint{Name: c.Name, Kwargs: kwargs})
	}
	return S, nil
}

//matrix builds a matrix with the given number of rows from a field of step i.
func matrix(rows [][]float64, field string, i, nrows int) (*v3.Matrix, error) {
	if len(rows) != nrows {
		return nil, SchemaError{Field: field, Index: i, Message: fmt.Sprintf("%d rows, %d expected", len(rows), nrows), deco: []string{"matrix"}}
	}
	M, err := v3.FromRows(rows)
	if err != nil {
		return nil, SchemaError{Field: field, Index: i, Message: err.Error(), deco: []string{"matrix"}}
	}
	return M, nil
}
