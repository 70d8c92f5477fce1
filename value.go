/*
 * value.go, part of qetraj.
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

package chem

import (
	"fmt"
	"reflect"
	"sort"
)

//Calculation parameters and constraint arguments are heterogeneous: numbers, strings,
//flags, k-point grids, masks... Value is a closed set of variants that covers them.
//Only the types in this file implement it.

// Value is one of Number, Text, Flag, Vector, Matrix, Mapping or Sequence.
type Value interface {
	Accept(Visitor)
}

// Visitor has one method per Value variant.
type Visitor interface {
	VisitNumber(Number)
	VisitText(Text)
	VisitFlag(Flag)
	VisitVector(Vector)
	VisitMatrix(Matrix)
	VisitMapping(Mapping)
	VisitSequence(Sequence)
}

type (
	Number   float64
	Text     string
	Flag     bool
	Vector   []float64
	Matrix   [][]float64 //rectangular, at least one row.
	Mapping  map[string]Value
	Sequence []Value
)

func (n Number) Accept(v Visitor)   { v.VisitNumber(n) }
func (t Text) Accept(v Visitor)     { v.VisitText(t) }
func (f Flag) Accept(v Visitor)     { v.VisitFlag(f) }
func (x Vector) Accept(v Visitor)   { v.VisitVector(x) }
func (m Matrix) Accept(v Visitor)   { v.VisitMatrix(m) }
func (m Mapping) Accept(v Visitor)  { v.VisitMapping(m) }
func (s Sequence) Accept(v Visitor) { v.VisitSequence(s) }

//flattener turns a Value into plain Go values that any
//structured encoder handles.
type flattener struct {
	out any
}

func (f *flattener) VisitNumber(n Number) { f.out = float64(n) }
func (f *flattener) VisitText(t Text)     { f.out = string(t) }
func (f *flattener) VisitFlag(b Flag)     { f.out = bool(b) }

func (f *flattener) VisitVector(x Vector) {
	f.out = append(make([]float64, 0, len(x)), x...)
}

func (f *flattener) VisitMatrix(m Matrix) {
	ret := make([][]float64, len(m))
	for i, r := range m {
		ret[i] = append(make([]float64, 0, len(r)), r...)
	}
	f.out = ret
}

func (f *flattener) VisitMapping(m Mapping) {
	ret := make(map[string]any, len(m))
	for k, v := range m {
		ret[k] = Flatten(v)
	}
	f.out = ret
}

func (f *flattener) VisitSequence(s Sequence) {
	ret := make([]any, len(s))
	for i, v := range s {
		ret[i] = Flatten(v)
	}
	f.out = ret
}

// Flatten returns v as nested float64, string, bool, []float64, [][]float64,
// []any and map[string]any values. The result shares no storage with v.
// A nil Value gives nil.
func Flatten(v Value) any {
	if v == nil {
		return nil
	}
	f := new(flattener)
	v.Accept(f)
	return f.out
}

// FlattenMap flattens every value in m.
func FlattenMap(m map[string]Value) map[string]any {
	if m == nil {
		return nil
	}
	ret := make(map[string]any, len(m))
	for k, v := range m {
		ret[k] = Flatten(v)
	}
	return ret
}

// ValueOf is the inverse of Flatten. It accepts what encoding/json, yaml.v3 and msgpack
// produce when decoding into an interface value. A sequence of numbers becomes a Vector, a rectangular
// sequence of such sequences becomes a Matrix, any other sequence becomes a Sequence.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(t), nil
	case int:
		return Number(t), nil
	case int8:
		return Number(t), nil
	case int16:
		return Number(t), nil
	case int32:
		return Number(t), nil
	case int64:
		return Number(t), nil
	case uint:
		return Number(t), nil
	case uint8:
		return Number(t), nil
	case uint16:
		return Number(t), nil
	case uint32:
		return Number(t), nil
	case uint64:
		return Number(t), nil
	case string:
		return Text(t), nil
	case bool:
		return Flag(t), nil
	case []float64:
		return Vector(append([]float64{}, t...)), nil
	case [][]float64:
		if len(t) == 0 {
			return Vector{}, nil //what an empty JSON array decodes to
		}
		m := make(Matrix, len(t))
		for i, r := range t {
			m[i] = append([]float64{}, r...)
		}
		return m, nil
	case []any:
		return sequenceOf(t)
	case map[string]any:
		ret := make(Mapping, len(t))
		for k, v := range t {
			val, err := ValueOf(v)
			if err != nil {
				return nil, errDecorate(err, "ValueOf: key "+k)
			}
			ret[k] = val
		}
		return ret, nil
	case map[any]any:
		ret := make(Mapping, len(t))
		for k, v := range t {
			val, err := ValueOf(v)
			if err != nil {
				return nil, errDecorate(err, fmt.Sprintf("ValueOf: key %v", k))
			}
			ret[fmt.Sprint(k)] = val
		}
		return ret, nil
	case nil:
		return nil, CError{"Null values can't be represented", []string{"ValueOf"}}
	}
	return nil, CError{fmt.Sprintf("Values of type %T can't be represented", x), []string{"ValueOf"}}
}

// MapOf applies ValueOf to every element of m.
func MapOf(m map[string]any) (map[string]Value, error) {
	if m == nil {
		return nil, nil
	}
	ret := make(map[string]Value, len(m))
	for k, v := range m {
		val, err := ValueOf(v)
		if err != nil {
			return nil, errDecorate(err, "MapOf: key "+k)
		}
		ret[k] = val
	}
	return ret, nil
}

func sequenceOf(t []any) (Value, error) {
	vals := make([]Value, len(t))
	allnumbers, allvectors := true, len(t) > 0
	for i, e := range t {
		v, err := ValueOf(e)
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("ValueOf: element %d", i))
		}
		vals[i] = v
		if _, ok := v.(Number); !ok {
			allnumbers = false
		}
		if vec, ok := v.(Vector); !ok || len(vec) != len(vectorOf(vals[0])) {
			allvectors = false
		}
	}
	switch {
	case allnumbers:
		ret := make(Vector, len(vals))
		for i, v := range vals {
			ret[i] = float64(v.(Number))
		}
		return ret, nil
	case allvectors:
		ret := make(Matrix, len(vals))
		for i, v := range vals {
			ret[i] = v.(Vector)
		}
		return ret, nil
	}
	return Sequence(vals), nil
}

func vectorOf(v Value) Vector {
	vec, _ := v.(Vector)
	return vec
}

// Canonical returns the form ValueOf gives to v after flattening. Values that
// only differ in representation, like a Sequence of equal-length Vectors and the
// corresponding Matrix, have the same canonical form.
func Canonical(v Value) Value {
	c, err := ValueOf(Flatten(v))
	if err != nil {
		return v
	}
	return c
}

// ValuesEqual compares the canonical forms of a and b.
func ValuesEqual(a, b Value) bool {
	return reflect.DeepEqual(Flatten(Canonical(a)), Flatten(Canonical(b)))
}

// MapsEqual returns true if a and b have the same keys and ValuesEqual values.
// A nil map equals an empty one.
func MapsEqual(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !ValuesEqual(va, vb) {
			return false
		}
	}
	return true
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
