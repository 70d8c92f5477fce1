/*
 * parser.go, part of qetraj.
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

package qe

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chem "github.com/rmera/qetraj"
	v3 "github.com/rmera/qetraj/v3"
	"go.uber.org/zap"
)

// State is a state of the log scanner.
type State int

const (
	AwaitRunStart State = iota
	AwaitCell
	AwaitAtomListing
	AwaitResults
	InTrajectory
	Done
)

func (s State) String() string {
	switch s {
	case AwaitRunStart:
		return "AwaitRunStart"
	case AwaitCell:
		return "AwaitCell"
	case AwaitAtomListing:
		return "AwaitAtomListing"
	case AwaitResults:
		return "AwaitResults"
	case InTrajectory:
		return "InTrajectory"
	case Done:
		return "Done"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// InitialStructureFile is the extended XYZ file that, when found in the same
// directory as a log, holds the initial structure of the calculation.
const InitialStructureFile = "input.xyz"

type config struct {
	run      int
	initial  *chem.Snapshot
	strict   bool
	logger   *zap.Logger
	filename string
}

// Option configures Parse and ParseFile.
type Option func(*config)

// WithRun selects the run to parse, when several runs were written to the same log.
// Negative values count from the end, so -1, the default, is the last run.
func WithRun(run int) Option {
	return func(c *config) { c.run = run }
}

// WithInitial makes the parser take species, cell, constraints and parameters from
// S, instead of from the log. The initial positions are those of S, wrapped into the cell.
// S is not modified.
func WithInitial(S *chem.Snapshot) Option {
	return func(c *config) { c.initial = S }
}

// WithStrictHeaders makes a header declared twice with different values in the
// same run an error. By default the last value is used.
func WithStrictHeaders() Option {
	return func(c *config) { c.strict = true }
}

// WithLogger sets the logger for the parser. By default nothing is logged.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func withFileName(name string) Option {
	return func(c *config) { c.filename = name }
}

func newConfig(opts []Option) *config {
	c := &config{run: -1, logger: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ParseFile parses the pw.x log in the file name. See Parse.
func ParseFile(name string, opts ...Option) ([]*chem.Snapshot, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{message: err.Error(), filename: name, deco: []string{"os.Open", "ParseFile"}}
	}
	defer f.Close()
	opts = append(opts[:len(opts):len(opts)], withFileName(name))
	traj, err := Parse(f, opts...)
	if err != nil {
		return nil, errDecorate(err, "ParseFile")
	}
	return traj, nil
}

// Parse reads a pw.x log from r and returns the relaxation trajectory of the selected run:
// one snapshot per step for which a total energy was printed, in order. Energies are in eV,
// forces in eV/A and stress in eV/A^3.
// A run where no results were printed gives an empty trajectory and no error.
// If the log ends in the middle of a step, the steps completed before are returned.
// In any other case, an error means that no trajectory is returned.
func Parse(r io.Reader, opts ...Option) ([]*chem.Snapshot, error) {
	c := newConfig(opts)
	text, err := readLines(r)
	if err != nil {
		return nil, errDecorate(err, "Parse")
	}
	starts := runStarts(text)
	run := c.run
	if run < 0 {
		run += len(starts)
	}
	if run < 0 || run >= len(starts) {
		return nil, RunNotFoundError{Requested: c.run, Available: len(starts), filename: c.filename, deco: []string{"Parse"}}
	}
	l := newLines(text)
	l.pos = starts[run]
	if run+1 < len(starts) {
		l.end = starts[run+1]
	}
	c.logger.Debug("run selected", zap.String("log", c.filename), zap.Int("run", run), zap.Int("runs", len(starts)), zap.Int("first line", l.pos+1), zap.Int("last line", l.end))
	m := newMachine(l, c)
	if err := m.run(); err != nil {
		return nil, errDecorate(err, "Parse")
	}
	c.logger.Debug("trajectory read", zap.String("log", c.filename), zap.Int("steps", len(m.traj)), zap.Stringer("state", m.state))
	return m.traj, nil
}

// ReadInitial reads the initial structure file found in the same directory
// as the log logname. It returns nil and no error if there is no such file.
func ReadInitial(logname string) (*chem.Snapshot, error) {
	name := filepath.Join(filepath.Dir(logname), InitialStructureFile)
	if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	S, err := chem.ReadStructure(name)
	if err != nil {
		return nil, errDecorate(err, "ReadInitial")
	}
	return S, nil
}

//machine holds the state of the log scanner. Each state has a transition function
//that takes the current line and pulls, from the cursor, the lines of the block
//that starts there, if any.
type machine struct {
	lines    *lines
	state    State
	natoms   int
	alat     float64 //Angstrom
	cell     *v3.Matrix
	newcell  *v3.Matrix //from CELL_PARAMETERS, for the next step
	pending  *chem.Snapshot
	traj     []*chem.Snapshot
	initial  *chem.Snapshot
	strict   bool
	filename string
	log      *zap.Logger
}

func newMachine(l *lines, c *config) *machine {
	return &machine{
		lines:    l,
		state:    AwaitRunStart,
		traj:     make([]*chem.Snapshot, 0),
		initial:  c.initial,
		strict:   c.strict,
		filename: c.filename,
		log:      c.logger,
	}
}

var transitions = [...]func(*machine, string) (State, error){
	AwaitRunStart:    (*machine).awaitRunStart,
	AwaitCell:        (*machine).awaitCell,
	AwaitAtomListing: (*machine).awaitAtomListing,
	AwaitResults:     (*machine).awaitResults,
	InTrajectory:     (*machine).inTrajectory,
}

//run feeds lines to the machine until it reaches Done or the lines are over.
func (m *machine) run() error {
	for m.state != Done {
		line, ok := m.lines.next()
		if !ok {
			break
		}
		next, err := transitions[m.state](m, line)
		if err != nil {
			return err
		}
		if next != m.state {
			m.log.Debug("transition", zap.Stringer("from", m.state), zap.Stringer("to", next), zap.Int("line", m.lines.num()))
		}
		m.state = next
	}
	if m.pending != nil {
		m.log.Warn("log ended before the results of the last step", zap.String("log", m.filename), zap.Int("step", len(m.traj)))
	}
	return nil
}

func (m *machine) awaitRunStart(line string) (State, error) {
	if strings.Contains(line, RunStart) {
		return AwaitCell, nil
	}
	return AwaitRunStart, nil
}

func (m *machine) awaitCell(line string) (State, error) {
	if ok, err := m.header(line); ok || err != nil {
		return AwaitCell, err
	}
	switch {
	case strings.Contains(line, TrajectoryHook) && m.initial != nil:
		//the cell will come from the initial structure.
		return AwaitAtomListing, nil
	case strings.Contains(line, CellAxes):
		if err := m.cellAxes(); err != nil {
			return AwaitCell, err
		}
		return AwaitAtomListing, nil
	case strings.Contains(line, AtomListing):
		return m.awaitAtomListing(line)
	}
	return AwaitCell, nil
}

func (m *machine) awaitAtomListing(line string) (State, error) {
	if ok, err := m.header(line); ok || err != nil {
		return AwaitAtomListing, err
	}
	if !strings.Contains(line, AtomListing) {
		return AwaitAtomListing, nil
	}
	if err := m.listing(); err != nil {
		return AwaitAtomListing, err
	}
	return AwaitResults, nil
}

func (m *machine) awaitResults(line string) (State, error) {
	if !strings.Contains(line, ResultsBegin) {
		return AwaitResults, nil
	}
	return m.step()
}

func (m *machine) inTrajectory(line string) (State, error) {
	switch {
	case strings.Contains(line, JobDone), strings.Contains(line, FinalCoordinates):
		return Done, nil
	case strings.Contains(line, CellUpdate):
		complete, err := m.cellParameters(line)
		if err != nil || !complete {
			return Done, err
		}
	case strings.Contains(line, PositionsUpdate):
		complete, err := m.atomicPositions(line)
		if err != nil || !complete {
			return Done, err
		}
		return m.step()
	}
	return InTrajectory, nil
}

//step reads the results for the pending snapshot and appends it to the trajectory.
//A step without results ends the scan.
func (m *machine) step() (State, error) {
	complete, err := m.results(m.pending)
	if err != nil || !complete {
		return Done, err
	}
	m.traj = append(m.traj, m.pending)
	m.pending = nil
	return InTrajectory, nil
}

//header reads the atom count and the lattice parameter, and returns true
//if the line contained one of them.
func (m *machine) header(line string) (bool, error) {
	switch {
	case strings.Contains(line, AtomCount):
		fields := strings.Fields(line)
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return true, UnitConversionError{Field: AtomCount, Line: m.lines.num(), Err: err, filename: m.filename, deco: []string{"header"}}
		}
		if n <= 0 {
			return true, m.malformed(AtomCount, fmt.Sprintf("invalid number of atoms %d", n))
		}
		return true, m.redeclared(AtomCount, float64(m.natoms), float64(n), func() { m.natoms = n })
	case strings.Contains(line, LatticeScale):
		rest := line[strings.Index(line, LatticeScale)+len(LatticeScale):]
		fields := strings.Fields(strings.TrimLeft(rest, "= "))
		if len(fields) == 0 {
			return true, m.malformed(LatticeScale, "no value")
		}
		celldm, err := m.float(fields[0], LatticeScale)
		if err != nil {
			return true, err
		}
		alat := celldm / chem.AUL
		return true, m.redeclared(LatticeScale, m.alat, alat, func() { m.alat = alat })
	}
	return false, nil
}

//redeclared calls set, unless the header already had a different value and headers are strict.
func (m *machine) redeclared(header string, old, value float64, set func()) error {
	if old != 0 && old != value {
		if m.strict {
			return m.malformed(header, fmt.Sprintf("declared again with a different value: %g, was %g", value, old))
		}
		m.log.Warn("header declared again, the last value is used", zap.String("header", header), zap.Float64("previous", old), zap.Float64("value", value), zap.Int("line", m.lines.num()))
	}
	set()
	return nil
}

func (m *machine) cellAxes() error {
	if m.alat == 0 {
		return m.malformed(CellAxes, "the cell is given in units of alat, but celldm(1) was not declared before")
	}
	rows := make([][]float64, 3)
	for i := range rows {
		line, ok := m.lines.next()
		if !ok {
			return m.malformed(CellAxes, fmt.Sprintf("the log ended after %d of the 3 cell vectors", i))
		}
		var err error
		if rows[i], err = m.vector(parenthesized(line), CellAxes, m.alat); err != nil {
			return err
		}
	}
	m.cell, _ = v3.FromRows(rows) //always 3 rows of 3
	return nil
}

//listing reads the atom listing, which gives the first snapshot of the trajectory.
func (m *machine) listing() error {
	if m.natoms == 0 {
		return m.malformed(AtomListing, "the number of atoms was not declared before the atom listing")
	}
	if m.initial == nil && m.cell == nil {
		return m.malformed(AtomListing, "atom listing found before the cell")
	}
	if left := m.lines.end - m.lines.pos; m.natoms > left {
		return m.malformed(AtomListing, fmt.Sprintf("%d atoms declared, but only %d lines left in the run", m.natoms, left))
	}
	species := make([]string, 0, m.natoms)
	rows := make([][]float64, 0, m.natoms)
	for i := 0; i < m.natoms; i++ {
		line, _ := m.lines.next() //the lines are there, checked above
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return m.malformed(AtomListing, fmt.Sprintf("only %d of %d atoms listed", i, m.natoms))
		}
		//the positions are checked even when the initial structure replaces them,
		//so a short listing can't swallow the lines after it.
		r, err := m.vector(parenthesized(line), AtomListing, m.alat)
		if err != nil {
			return err
		}
		species = append(species, speciesLabel(fields[1]))
		rows = append(rows, r)
	}
	if m.initial != nil {
		S, err := m.fromInitial()
		if err != nil {
			return err
		}
		m.pending = S
		return nil
	}
	pos, _ := v3.FromRows(rows)
	m.pending = chem.NewSnapshot(species, pos, m.cell.Clone())
	return nil
}

//fromInitial builds the first snapshot from the initial structure.
func (m *machine) fromInitial() (*chem.Snapshot, error) {
	if m.initial.Len() != m.natoms {
		return nil, m.malformed(AtomListing, fmt.Sprintf("%d atoms in the log, but %d in the initial structure", m.natoms, m.initial.Len()))
	}
	S := m.initial.Copy()
	S.ClearResults()
	S.PBC = [3]bool{true, true, true}
	if S.Cell == nil {
		S.Cell = m.cell.Clone()
	}
	if S.Cell == nil {
		return nil, m.malformed(CellAxes, "no cell in the log or in the initial structure")
	}
	wrapped := v3.Zeros(S.Len())
	if err := wrapped.Wrap(S.Positions, S.Cell); err != nil {
		return nil, errDecorate(err, "fromInitial")
	}
	S.Positions = wrapped
	return S, nil
}

//structural returns true if line starts a block that a lookahead window must not swallow.
func structural(line string) bool {
	for _, marker := range []string{TotalEnergy, PositionsUpdate, CellUpdate, JobDone, FinalCoordinates} {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

//atomicPositions builds the pending snapshot from an ATOMIC_POSITIONS block.
//It returns false if the log ended in the middle of the block.
func (m *machine) atomicPositions(line string) (bool, error) {
	prev := m.traj[len(m.traj)-1]
	cell := prev.Cell
	if m.newcell != nil {
		cell = m.newcell
	}
	frame, alat := frameOf(line, PositionsUpdate)
	factor := 1.0
	if frame != Crystal {
		var err error
		if factor, err = m.frameFactor(frame, alat); err != nil {
			return false, err
		}
	} else if cell == nil {
		return false, m.malformed(PositionsUpdate, "crystal coordinates without a cell")
	}
	rows := make([][]float64, prev.Len())
	for i := range rows {
		l, ok := m.lines.next()
		if !ok {
			m.log.Warn("log ended inside a block", zap.String("block", PositionsUpdate), zap.Int("atoms read", i))
			return false, nil
		}
		fields := strings.Fields(l)
		if len(fields) < 4 {
			return false, m.malformed(PositionsUpdate, fmt.Sprintf("only %d of %d atoms listed", i, len(rows)))
		}
		var err error
		if rows[i], err = m.vector(fields[1:4], PositionsUpdate, factor); err != nil {
			return false, err
		}
	}
	pos, _ := v3.FromRows(rows)
	if frame == Crystal {
		cart := v3.Zeros(len(rows))
		cart.FromFractional(pos, cell)
		pos = cart
	}
	S := prev.Next()
	S.Positions = pos
	S.Cell = cell.Clone()
	m.newcell = nil
	m.pending = S
	return true, nil
}

//cellParameters reads a CELL_PARAMETERS block, printed by variable-cell
//relaxations before the positions of each step.
func (m *machine) cellParameters(line string) (bool, error) {
	frame, alat := frameOf(line, CellUpdate)
	if frame == Crystal {
		return false, m.malformed(CellUpdate, "a cell can't be given in crystal coordinates")
	}
	factor, err := m.frameFactor(frame, alat)
	if err != nil {
		return false, err
	}
	rows := make([][]float64, 3)
	for i := range rows {
		l, ok := m.lines.next()
		if !ok {
			m.log.Warn("log ended inside a block", zap.String("block", CellUpdate), zap.Int("vectors read", i))
			return false, nil
		}
		fields := strings.Fields(l)
		if len(fields) < 3 {
			return false, m.malformed(CellUpdate, fmt.Sprintf("only %d of 3 cell vectors", i))
		}
		if rows[i], err = m.vector(fields[:3], CellUpdate, factor); err != nil {
			return false, err
		}
	}
	m.newcell, _ = v3.FromRows(rows)
	return true, nil
}
