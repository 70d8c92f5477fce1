/*
 * document.go, part of qetraj.
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

package delta

import (
	"fmt"
	"strconv"
)

// Document is the encoded form of a trajectory. Field names follow the
// keys of the serialized document.
type Document struct {
	Numbers     []int           `json:"numbers" yaml:"numbers,flow" msgpack:"numbers"`
	PBC         []bool          `json:"pbc" yaml:"pbc,flow" msgpack:"pbc"`
	Constraints []Constraint    `json:"constraints" yaml:"constraints" msgpack:"constraints"`
	Parameters  map[string]any  `json:"calculator_parameters" yaml:"calculator_parameters" msgpack:"calculator_parameters"`
	Trajectory  map[string]Step `json:"trajectory" yaml:"trajectory" msgpack:"trajectory"`
}

// Constraint is a constraint descriptor: the kind of constraint and its keyword arguments.
type Constraint struct {
	Name   string         `json:"name" yaml:"name" msgpack:"name"`
	Kwargs map[string]any `json:"kwargs" yaml:"kwargs" msgpack:"kwargs"`
}

// Step is the entry for one snapshot. Positions and Cell are only present
// when they changed with respect to the last step that carried them.
type Step struct {
	Positions [][]float64 `json:"positions,omitempty" yaml:"positions,flow,omitempty" msgpack:"positions,omitempty"`
	Cell      [][]float64 `json:"cell,omitempty" yaml:"cell,flow,omitempty" msgpack:"cell,omitempty"`
	Energy    *float64    `json:"energy,omitempty" yaml:"energy,omitempty" msgpack:"energy,omitempty"`
	Forces    [][]float64 `json:"forces,omitempty" yaml:"forces,flow,omitempty" msgpack:"forces,omitempty"`
	Stress    [][]float64 `json:"stress,omitempty" yaml:"stress,flow,omitempty" msgpack:"stress,omitempty"`
}

// Len returns the number of steps in the document.
func (D *Document) Len() int {
	return len(D.Trajectory)
}

// Step returns the entry for step i, and whether it exists.
func (D *Document) Step(i int) (Step, bool) {
	s, ok := D.Trajectory[strconv.Itoa(i)]
	return s, ok
}

// SchemaError is returned when a document lacks a mandatory field or
// a field has the wrong shape. Index is the step, or -1 for top-level fields.
type SchemaError struct {
	Field   string
	Index   int
	Message string
	deco    []string
}

func (err SchemaError) Error() string {
	if err.Index < 0 {
		return fmt.Sprintf("invalid document, field %s: %s", err.Field, err.Message)
	}
	return fmt.Sprintf("invalid document, step %d, field %s: %s", err.Index, err.Field, err.Message)
}

// Decorate adds dec to the decoration trail of the error, and returns the trail.
func (err SchemaError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err SchemaError) Critical() bool { return true }

// Error is the error type for problems other than the document's schema.
type Error struct {
	message  string
	filename string
	deco     []string
}

func (err Error) Error() string {
	if err.filename == "" {
		return err.message
	}
	return fmt.Sprintf("%s: %s", err.filename, err.message)
}

// Decorate adds dec to the decoration trail of the error, and returns the trail.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err Error) FileName() string { return err.filename }

func (err Error) Critical() bool { return true }

type decorator interface {
	error
	Decorate(string) []string
}

func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if d, ok := err.(decorator); ok {
		d.Decorate(caller)
		return d
	}
	return Error{message: fmt.Sprintf("%s: %s", caller, err.Error()), deco: []string{caller}}
}
