/*
 * files.go, part of qetraj.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/qetraj/v3"
)

//Extended XYZ is the structure-file format used to hand structures to, and receive them from,
//other programs. The comment line of each frame holds key=value pairs: Lattice, Properties,
//pbc, energy and stress. The first frame also holds the calculation parameters and a "fix" key
//with the indexes of fixed atoms, which is the only constraint the format can carry.

const fixAtoms = "FixAtoms"

var reservedXYZKeys = map[string]bool{"Lattice": true, "Properties": true, "pbc": true, "energy": true, "stress": true, "fix": true}

// XYZ reads and writes extended XYZ files. It implements StructureReader and StructureWriter.
type XYZ struct{}

// ReadStructure returns the first frame of the extended XYZ file name.
func (XYZ) ReadStructure(name string) (*Snapshot, error) { return ReadStructure(name) }

// WriteStructure writes traj to the extended XYZ file name.
func (XYZ) WriteStructure(name string, traj []*Snapshot) error { return WriteStructure(name, traj) }

// ReadStructure returns the first frame of the extended XYZ file name, i.e. the initial
// state of a calculation.
func ReadStructure(name string) (*Snapshot, error) {
	traj, err := ReadTrajectory(name)
	if err != nil {
		return nil, errDecorate(err, "ReadStructure")
	}
	return traj[0], nil
}

// ReadTrajectory reads all the frames of the extended XYZ file name.
func ReadTrajectory(name string) ([]*Snapshot, error) {
	xyzfile, err := os.Open(name)
	if err != nil {
		return nil, CError{err.Error(), []string{"os.Open", "ReadTrajectory"}}
	}
	defer xyzfile.Close()
	traj, err := XYZRead(xyzfile)
	if err != nil {
		return nil, errDecorate(err, "ReadTrajectory: "+name)
	}
	return traj, nil
}

// WriteStructure writes traj to the extended XYZ file name, which will be created or overwritten.
func WriteStructure(name string, traj []*Snapshot) error {
	out, err := os.Create(name)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "WriteStructure"}}
	}
	defer out.Close()
	if err := XYZWrite(out, traj); err != nil {
		return errDecorate(err, "WriteStructure: "+name)
	}
	return out.Close()
}

// XYZRead reads an extended XYZ trajectory from r. Constraints and parameters
// are those declared in the comment line of each frame, which XYZWrite only
// writes for the first one.
func XYZRead(r io.Reader) ([]*Snapshot, error) {
	xyz := bufio.NewScanner(r)
	xyz.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var traj []*Snapshot
	lineno := 0
	next := func() (string, bool) {
		ok := xyz.Scan()
		lineno++
		return xyz.Text(), ok
	}
	for {
		line, ok := next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		natoms, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || natoms <= 0 {
			return nil, CError{fmt.Sprintf("Ill formatted XYZ file: line %d should contain the number of atoms", lineno), []string{"XYZRead"}}
		}
		comment, ok := next()
		if !ok {
			return nil, CError{fmt.Sprintf("Ill formatted XYZ file: missing comment line %d", lineno), []string{"XYZRead"}}
		}
		info, quoted := xyzComment(comment)
		withforces := strings.Contains(info["Properties"], ":forces:R:3")
		species := make([]string, natoms)
		coords := make([]float64, 0, 3*natoms)
		var forces []float64
		for i := 0; i < natoms; i++ {
			line, ok = next()
			if !ok {
				return nil, CError{fmt.Sprintf("Ill formatted XYZ file: frame %d has less than %d atoms", len(traj), natoms), []string{"XYZRead"}}
			}
			fields := strings.Fields(line)
			if len(fields) < 4 || (withforces && len(fields) < 7) {
				return nil, CError{fmt.Sprintf("Line number %d ill formed", lineno), []string{"XYZRead"}}
			}
			species[i] = fields[0]
			c, err := parseFloats(fields[1:4])
			if err != nil {
				return nil, CError{fmt.Sprintf("Line number %d: %s", lineno, err.Error()), []string{"XYZRead"}}
			}
			coords = append(coords, c...)
			if withforces {
				f, err := parseFloats(fields[4:7])
				if err != nil {
					return nil, CError{fmt.Sprintf("Line number %d: %s", lineno, err.Error()), []string{"XYZRead"}}
				}
				forces = append(forces, f...)
			}
		}
		S, err := xyzSnapshot(species, coords, forces, info, quoted)
		if err != nil {
			return nil, errDecorate(err, fmt.Sprintf("XYZRead: frame %d", len(traj)))
		}
		traj = append(traj, S)
	}
	if err := xyz.Err(); err != nil {
		return nil, CError{err.Error(), []string{"bufio.Scanner", "XYZRead"}}
	}
	if len(traj) == 0 {
		return nil, CError{"Empty XYZ file", []string{"XYZRead"}}
	}
	return traj, nil
}

func xyzSnapshot(species []string, coords, forces []float64, info map[string]string, quoted map[string]bool) (*Snapshot, error) {
	pos, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, errDecorate(err, "xyzSnapshot")
	}
	S := NewSnapshot(species, pos, nil)
	if forces != nil {
		S.Forces, _ = v3.NewMatrix(forces) //same length as coords
	}
	if l, ok := info["Lattice"]; ok {
		if S.Cell, err = nineFloats(l); err != nil {
			return nil, CError{"Lattice: " + err.Error(), []string{"xyzSnapshot"}}
		}
	}
	if s, ok := info["stress"]; ok {
		if S.Stress, err = nineFloats(s); err != nil {
			return nil, CError{"stress: " + err.Error(), []string{"xyzSnapshot"}}
		}
	}
	if e, ok := info["energy"]; ok {
		en, err := strconv.ParseFloat(e, 64)
		if err != nil {
			return nil, CError{"energy: " + err.Error(), []string{"xyzSnapshot"}}
		}
		S.SetEnergy(en)
	}
	if p, ok := info["pbc"]; ok {
		for i, f := range strings.Fields(p) {
			if i < 3 {
				S.PBC[i] = f == "T" || f == "True" || f == "1"
			}
		}
	}
	if fix, ok := info["fix"]; ok {
		idx, err := parseFloats(strings.Fields(fix))
		if err != nil {
			return nil, CError{"fix: " + err.Error(), []string{"xyzSnapshot"}}
		}
		S.Constraints = []Constraint{{Name: fixAtoms, Kwargs: map[string]Value{"indices": Vector(idx)}}}
	}
	for k, v := range info {
		if reservedXYZKeys[k] {
			continue
		}
		if S.Parameters == nil {
			S.Parameters = make(map[string]Value)
		}
		S.Parameters[k] = xyzValue(v, quoted[k])
	}
	return S, nil
}

// XYZWrite writes traj to w as extended XYZ. Values are written with as many
// digits as needed to read them back unchanged.
func XYZWrite(w io.Writer, traj []*Snapshot) error {
	if err := CheckTrajectory(traj); err != nil {
		return errDecorate(err, "XYZWrite")
	}
	out := bufio.NewWriter(w)
	for i, S := range traj {
		comment, err := xyzCommentLine(S, i == 0)
		if err != nil {
			return errDecorate(err, fmt.Sprintf("XYZWrite: frame %d", i))
		}
		fmt.Fprintf(out, "%d\n%s\n", S.Len(), comment)
		for j, sym := range S.Species {
			fmt.Fprintf(out, "%-2s %s %s %s", sym, ftoa(S.Positions.At(j, 0)), ftoa(S.Positions.At(j, 1)), ftoa(S.Positions.At(j, 2)))
			if S.Forces != nil {
				fmt.Fprintf(out, " %s %s %s", ftoa(S.Forces.At(j, 0)), ftoa(S.Forces.At(j, 1)), ftoa(S.Forces.At(j, 2)))
			}
			fmt.Fprint(out, "\n")
		}
	}
	if err := out.Flush(); err != nil {
		return CError{err.Error(), []string{"bufio.Flush", "XYZWrite"}}
	}
	return nil
}

func xyzCommentLine(S *Snapshot, first bool) (string, error) {
	items := make([]string, 0, 8)
	if S.Cell != nil {
		items = append(items, fmt.Sprintf("Lattice=%q", joinMatrix(S.Cell)))
	}
	props := "species:S:1:pos:R:3"
	if S.Forces != nil {
		props += ":forces:R:3"
	}
	items = append(items, "Properties="+props)
	if S.Energy != nil {
		items = append(items, "energy="+ftoa(*S.Energy))
	}
	if S.Stress != nil {
		items = append(items, fmt.Sprintf("stress=%q", joinMatrix(S.Stress)))
	}
	pbc := make([]string, 3)
	for i, p := range S.PBC {
		pbc[i] = "F"
		if p {
			pbc[i] = "T"
		}
	}
	items = append(items, fmt.Sprintf("pbc=%q", strings.Join(pbc, " ")))
	if !first {
		return strings.Join(items, " "), nil
	}
	for _, c := range S.Constraints {
		idx, ok := c.Kwargs["indices"].(Vector)
		if c.Name != fixAtoms || !ok {
			return "", CError{fmt.Sprintf("Constraint %s can't be written to XYZ", c.Name), []string{"xyzCommentLine"}}
		}
		items = append(items, fmt.Sprintf("fix=%q", joinFloats(idx)))
	}
	for _, k := range SortedKeys(S.Parameters) {
		if reservedXYZKeys[k] || strings.ContainsAny(k, " =\"") {
			return "", CError{fmt.Sprintf("Parameter name %q can't be written to XYZ", k), []string{"xyzCommentLine"}}
		}
		switch v := S.Parameters[k].(type) {
		case Number:
			items = append(items, k+"="+ftoa(float64(v)))
		case Flag:
			if v {
				items = append(items, k+"=T")
			} else {
				items = append(items, k+"=F")
			}
		case Text:
			if strings.Contains(string(v), "\"") {
				return "", CError{fmt.Sprintf("Parameter %s contains quotes", k), []string{"xyzCommentLine"}}
			}
			if _, ok := xyzValue(string(v), true).(Text); !ok {
				return "", CError{fmt.Sprintf("Parameter %s would be read back as numbers", k), []string{"xyzCommentLine"}}
			}
			items = append(items, k+"=\""+string(v)+"\"")
		case Vector:
			if len(v) < 2 {
				return "", CError{fmt.Sprintf("Parameter %s: vectors with less than 2 elements can't be written to XYZ", k), []string{"xyzCommentLine"}}
			}
			items = append(items, fmt.Sprintf("%s=%q", k, joinFloats(v)))
		default:
			return "", CError{fmt.Sprintf("Parameter %s of type %T can't be written to XYZ", k, v), []string{"xyzCommentLine"}}
		}
	}
	return strings.Join(items, " "), nil
}

// xyzComment splits an extended XYZ comment line into its key=value pairs,
// and tells which values were quoted. A key without value is a true flag.
func xyzComment(line string) (map[string]string, map[string]bool) {
	ret := make(map[string]string)
	quoted := make(map[string]bool)
	i := 0
	for i < len(line) {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		start := i
		for i < len(line) && line[i] != '=' && line[i] != ' ' {
			i++
		}
		key := line[start:i]
		if key == "" {
			i++
			continue
		}
		if i >= len(line) || line[i] == ' ' {
			ret[key] = "T"
			continue
		}
		i++ //the '='
		if i < len(line) && line[i] == '"' {
			quoted[key] = true
			end := strings.IndexByte(line[i+1:], '"')
			if end < 0 {
				ret[key] = line[i+1:]
				break
			}
			ret[key] = line[i+1 : i+1+end]
			i += end + 2
			continue
		}
		start = i
		for i < len(line) && line[i] != ' ' {
			i++
		}
		ret[key] = line[start:i]
	}
	return ret, quoted
}

//xyzValue gives the Value for a parameter. Quoted values are text, unless
//they hold 2 or more numbers. Unquoted ones are flags, numbers or text.
func xyzValue(s string, quoted bool) Value {
	if quoted {
		fields := strings.Fields(s)
		if f, err := parseFloats(fields); err == nil && len(f) > 1 {
			return Vector(f)
		}
		return Text(s)
	}
	switch s {
	case "T", "True":
		return Flag(true)
	case "F", "False":
		return Flag(false)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return Text(s)
}

func parseFloats(fields []string) ([]float64, error) {
	ret := make([]float64, len(fields))
	var err error
	for i, f := range fields {
		if ret[i], err = strconv.ParseFloat(f, 64); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func nineFloats(s string) (*v3.Matrix, error) {
	f, err := parseFloats(strings.Fields(s))
	if err != nil {
		return nil, err
	}
	if len(f) != 9 {
		return nil, fmt.Errorf("%d values given, 9 expected", len(f))
	}
	return v3.NewMatrix(f)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func joinFloats(f []float64) string {
	s := make([]string, len(f))
	for i, v := range f {
		s[i] = ftoa(v)
	}
	return strings.Join(s, " ")
}

func joinMatrix(M *v3.Matrix) string {
	s := make([]string, 0, 9)
	for _, r := range M.Rows() {
		s = append(s, joinFloats(r))
	}
	return strings.Join(s, " ")
}
