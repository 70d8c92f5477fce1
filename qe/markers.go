/*
 * markers.go, part of qetraj.
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

package qe

import (
	"strconv"
	"strings"

	chem "github.com/rmera/qetraj"
)

// Literal substrings of the pw.x output that the parser reacts to.
const (
	RunStart         = "Giannozzi"
	TrajectoryHook   = "(npk)"
	AtomCount        = "number of atoms/cell"
	LatticeScale     = "celldm(1)"
	CellAxes         = "crystal axes:"
	AtomListing      = "site n."
	ResultsBegin     = "number of k points="
	TotalEnergy      = "!    total energy"
	Smearing         = "smearing contrib."
	ForcesHeader     = "Forces acting on atoms"
	StressHeader     = "total   stress"
	PositionsUpdate  = "ATOMIC_POSITIONS"
	CellUpdate       = "CELL_PARAMETERS"
	JobDone          = "JOB DONE."
	FinalCoordinates = "Begin final coordinates"
)

// lookahead windows after the energy line and after the forces block.
const (
	forcesWindow      = 20
	stressWindow      = 10
	forcesHeaderLines = 4
)

// Frame is the coordinate frame of an ATOMIC_POSITIONS or CELL_PARAMETERS block.
type Frame string

const (
	Alat     Frame = "alat"
	BohrUnit Frame = "bohr"
	Angstrom Frame = "angstrom"
	Crystal  Frame = "crystal"
)

//frameOf extracts the frame tag that follows marker in line, as in
//"ATOMIC_POSITIONS (angstrom)", "ATOMIC_POSITIONS {crystal}" or
//"CELL_PARAMETERS (alat= 10.20000000)". A missing tag means alat.
//the value after "alat=", if any, is returned in bohr.
func frameOf(line, marker string) (Frame, string) {
	tag := line[strings.Index(line, marker)+len(marker):]
	tag = strings.NewReplacer("(", " ", ")", " ", "{", " ", "}", " ", "=", " ").Replace(tag)
	fields := strings.Fields(strings.ToLower(tag))
	if len(fields) == 0 {
		return Alat, ""
	}
	if len(fields) > 1 {
		return Frame(fields[0]), fields[1]
	}
	return Frame(fields[0]), ""
}

//parenthesized returns the fields between the last "(" and the last ")" in line,
//i.e. the coordinates in "a(1) = ( 1.0 0.0 0.0 )" and in "Cu  tau(   1) = ( 0.0 0.5 0.5 )".
func parenthesized(line string) []string {
	open := strings.LastIndex(line, "(")
	end := strings.LastIndex(line, ")")
	if open < 0 || end < open {
		return nil
	}
	return strings.Fields(line[open+1 : end])
}

//speciesLabel strips the numeric tag QE allows after element symbols, so
//"Fe1" and "Fe2" are both "Fe".
func speciesLabel(label string) string {
	return strings.TrimRight(label, "0123456789")
}

//vector parses 3 fields as a row scaled by factor.
func (m *machine) vector(fields []string, what string, factor float64) ([]float64, error) {
	if len(fields) != 3 {
		return nil, m.malformed(what, "3 numbers expected")
	}
	ret := make([]float64, 3)
	for i, f := range fields {
		v, err := m.float(f, what)
		if err != nil {
			return nil, err
		}
		ret[i] = v * factor
	}
	return ret, nil
}

func (m *machine) float(field, what string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, UnitConversionError{Field: what, Line: m.lines.num(), Err: err, filename: m.filename, deco: []string{what}}
	}
	return v, nil
}

//fieldFromEnd returns the n-th field counting from the end of line, the last one being 1.
func (m *machine) fieldFromEnd(line string, n int, what string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) < n {
		return 0, m.malformed(what, "too few fields")
	}
	return m.float(fields[len(fields)-n], what)
}

func (m *machine) malformed(marker, message string) error {
	return MalformedLogError{Marker: marker, Line: m.lines.num(), Message: message, filename: m.filename, deco: []string{marker}}
}

//frameFactor returns the factor that brings coordinates in frame f to Angstrom.
//the crystal frame is handled separately.
func (m *machine) frameFactor(f Frame, alat string) (float64, error) {
	switch f {
	case Alat:
		if alat != "" {
			a, err := m.float(alat, "alat")
			if err != nil {
				return 0, err
			}
			return a / chem.AUL, nil
		}
		if m.alat == 0 {
			return 0, m.malformed(LatticeScale, "coordinates in units of alat, but celldm(1) was not given")
		}
		return m.alat, nil
	case BohrUnit:
		return chem.Bohr, nil
	case Angstrom:
		return 1, nil
	}
	return 0, m.malformed(string(f), "unknown coordinate frame")
}
