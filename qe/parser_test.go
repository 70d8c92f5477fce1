package qe

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	chem "github.com/rmera/qetraj"
	v3 "github.com/rmera/qetraj/v3"
	"go.uber.org/zap/zaptest"
)

func near(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func matrixNear(Te *testing.T, name string, got *v3.Matrix, want [][]float64) {
	Te.Helper()
	if got == nil {
		Te.Errorf("%s: nil matrix", name)
		return
	}
	rows := got.Rows()
	if len(rows) != len(want) {
		Te.Errorf("%s: %d rows, want %d", name, len(rows), len(want))
		return
	}
	for i := range want {
		for j := range want[i] {
			if !near(rows[i][j], want[i][j]) {
				Te.Errorf("%s[%d][%d] = %v, want %v", name, i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestParseRelax(Te *testing.T) {
	traj, err := ParseFile("../test/relax.log", WithLogger(zaptest.NewLogger(Te)))
	if err != nil {
		Te.Fatal(err)
	}
	if len(traj) != 3 {
		Te.Fatalf("%d snapshots, want 3", len(traj))
	}
	if err := chem.CheckTrajectory(traj); err != nil {
		Te.Error(err)
	}
	alat := 18.897260 / chem.AUL
	tenth := 0.1
	for i, S := range traj {
		if diff := cmp.Diff([]string{"Cu", "Cu"}, S.Species); diff != "" {
			Te.Errorf("species of step %d (-want +got):\n%s", i, diff)
		}
		if S.PBC != [3]bool{true, true, true} {
			Te.Errorf("step %d not periodic", i)
		}
		matrixNear(Te, "cell", S.Cell, [][]float64{{alat, 0, 0}, {0, alat, 0}, {0, 0, alat}})
	}
	matrixNear(Te, "positions 0", traj[0].Positions, [][]float64{{0, 0, 0}, {tenth * alat, 0, 0}})
	matrixNear(Te, "positions 1", traj[1].Positions, [][]float64{{0, 0, 0}, {1.05, 0, 0}})
	two := 2.0
	matrixNear(Te, "positions 2", traj[2].Positions, [][]float64{{0, 0, 0}, {two * chem.Bohr, 0, 0}})

	E, ts := -100.01, 0.01
	want := (E - float64(0.5*ts)) * chem.Rydberg
	if traj[1].Energy == nil || *traj[1].Energy != want {
		Te.Errorf("energy of step 1: %v, want %v", traj[1].Energy, want)
	}
	f, s := 0.001, -0.000005
	matrixNear(Te, "forces 1", traj[1].Forces, [][]float64{{f * chem.RyBohr2eVA, 0, 0}, {-f * chem.RyBohr2eVA, 0, 0}})
	matrixNear(Te, "stress 1", traj[1].Stress, [][]float64{{s * chem.RyBohr32eVA, 0, 0}, {0, s * chem.RyBohr32eVA, 0}, {0, 0, s * chem.RyBohr32eVA}})

	E = -100.015
	if traj[2].Energy == nil || *traj[2].Energy != E*chem.Rydberg {
		Te.Errorf("energy of step 2: %v, want %v", traj[2].Energy, E*chem.Rydberg)
	}
	if traj[2].Forces != nil || traj[2].Stress != nil {
		Te.Errorf("step 2 should only have an energy")
	}
}

// The energy is extrapolated to zero smearing, and converted only once.
func TestSmearingCorrection(Te *testing.T) {
	traj, err := ParseFile("../test/relax.log")
	if err != nil {
		Te.Fatal(err)
	}
	E, ts := -100.0, 0.02
	want := (E - float64(0.5*ts)) * chem.Rydberg
	if traj[0].Energy == nil {
		Te.Fatal("no energy in the first step")
	}
	if *traj[0].Energy != want {
		Te.Errorf("energy %v, want exactly %v", *traj[0].Energy, want)
	}
}

func TestDeterminism(Te *testing.T) {
	a, err := ParseFile("../test/relax.log")
	if err != nil {
		Te.Fatal(err)
	}
	b, err := ParseFile("../test/relax.log")
	if err != nil {
		Te.Fatal(err)
	}
	if len(a) != len(b) {
		Te.Fatalf("%d and %d snapshots", len(a), len(b))
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			Te.Errorf("step %d differs between two parses", i)
		}
	}
}

func TestNoResults(Te *testing.T) {
	traj, err := ParseFile("../test/noresults.log")
	if err != nil {
		Te.Fatal(err)
	}
	if traj == nil || len(traj) != 0 {
		Te.Errorf("want an empty trajectory, got %v", traj)
	}
}

func TestTruncatedListing(Te *testing.T) {
	traj, err := ParseFile("../test/truncated.log")
	var malformed MalformedLogError
	if !errors.As(err, &malformed) {
		Te.Fatalf("want a MalformedLogError, got %v", err)
	}
	if malformed.Marker != AtomListing {
		Te.Errorf("error names the block %q, want %q", malformed.Marker, AtomListing)
	}
	if malformed.FileName() != "../test/truncated.log" {
		Te.Errorf("error names the file %q", malformed.FileName())
	}
	if traj != nil {
		Te.Errorf("no trajectory should come with an error")
	}

	cu, err := ReadInitial("../test/relax.log")
	if err != nil || cu == nil {
		Te.Fatalf("can't read the initial structure: %v", err)
	}
	pos, _ := v3.FromRows([][]float64{{0, 0, 0}, {0.96, 0, 0}, {-0.24, 0.93, 0}})
	cell, _ := v3.FromRows([][]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}})
	water := chem.NewSnapshot([]string{"O", "H", "H"}, pos, cell)
	header := []string{
		"   P. Giannozzi et al.",
		"     number of atoms/cell      =            2",
		"     celldm(1)=  18.897260  celldm(2)=   0.000000",
		"     crystal axes: (cart. coord. in units of alat)",
		"               a(1) = (   1.000000   0.000000   0.000000 )",
		"               a(2) = (   0.000000   1.000000   0.000000 )",
		"               a(3) = (   0.000000   0.000000   1.000000 )",
		"     site n.     atom                  positions (alat units)",
		"         1           Cu  tau(   1) = (   0.0000000   0.0000000   0.0000000  )",
		"     number of k points=     1",
		"!    total energy              =     -100.00000000 Ry",
	}
	huge := append([]string(nil), header...)
	huge[1] = "     number of atoms/cell      =  9000000000000000000"
	for _, c := range []struct {
		name string
		log  string
		opts []Option
	}{
		{"file, initial structure", "../test/truncated.log", []Option{WithInitial(water)}},
		{"short listing", strings.Join(header, "\n"), nil},
		{"short listing, initial structure", strings.Join(header, "\n"), []Option{WithInitial(cu)}},
		{"atom count beyond the log", strings.Join(huge, "\n"), nil},
		{"atom count beyond the log, initial structure", strings.Join(huge, "\n"), []Option{WithInitial(cu)}},
	} {
		var traj []*chem.Snapshot
		var err error
		if strings.HasSuffix(c.log, ".log") {
			traj, err = ParseFile(c.log, c.opts...)
		} else {
			traj, err = Parse(strings.NewReader(c.log), c.opts...)
		}
		var malformed MalformedLogError
		if !errors.As(err, &malformed) || malformed.Marker != AtomListing {
			Te.Errorf("%s: want a MalformedLogError for the atom listing, got %v", c.name, err)
		}
		if traj != nil {
			Te.Errorf("%s: %d snapshots returned with the error", c.name, len(traj))
		}
	}
}

func TestRunSelection(Te *testing.T) {
	last, err := ParseFile("../test/multirun.log", WithRun(-1))
	if err != nil {
		Te.Fatal(err)
	}
	if len(last) != 3 {
		Te.Errorf("%d snapshots in the last run, want 3", len(last))
	}
	for i, S := range last {
		if diff := cmp.Diff([]string{"Cu", "Cu"}, S.Species); diff != "" {
			Te.Errorf("step %d leaked from the first run (-want +got):\n%s", i, diff)
		}
	}
	first, err := ParseFile("../test/multirun.log", WithRun(0))
	if err != nil {
		Te.Fatal(err)
	}
	if len(first) != 1 || first[0].Len() != 1 || first[0].Species[0] != "H" {
		Te.Fatalf("first run: want a single H snapshot, got %d snapshots", len(first))
	}
	half := 0.5 * 9.448630 / chem.AUL
	matrixNear(Te, "H position", first[0].Positions, [][]float64{{half, half, half}})
	second, err := ParseFile("../test/multirun.log", WithRun(1))
	if err != nil {
		Te.Fatal(err)
	}
	for i := range second {
		if !second[i].Equal(last[i]) {
			Te.Errorf("run -1 and run 1 differ at step %d", i)
		}
	}
	for _, run := range []int{2, -3} {
		_, err = ParseFile("../test/multirun.log", WithRun(run))
		var notfound RunNotFoundError
		if !errors.As(err, &notfound) {
			Te.Errorf("run %d: want RunNotFoundError, got %v", run, err)
			continue
		}
		if notfound.Available != 2 || notfound.Requested != run {
			Te.Errorf("run %d: error reports %d of %d", run, notfound.Requested, notfound.Available)
		}
	}
}

func TestVariableCell(Te *testing.T) {
	traj, err := ParseFile("../test/vcrelax.log")
	if err != nil {
		Te.Fatal(err)
	}
	if len(traj) != 2 {
		Te.Fatalf("%d snapshots, want 2, the truncated last step is dropped", len(traj))
	}
	a := 18.89726 / chem.AUL
	s := 0.99
	b := s * a
	matrixNear(Te, "cell 0", traj[0].Cell, [][]float64{{a, 0, 0}, {0, a, 0}, {0, 0, a}})
	matrixNear(Te, "cell 1", traj[1].Cell, [][]float64{{b, 0, 0}, {0, b, 0}, {0, 0, b}})
	matrixNear(Te, "positions 1", traj[1].Positions, [][]float64{{0, 0, 0}, {b / 2, b / 2, b / 2}})
	if v3.Equal(traj[0].Cell, traj[1].Cell) {
		Te.Error("the cell update was ignored")
	}
	traj[1].Cell.Set(0, 0, 0)
	if traj[0].Cell.At(0, 0) == 0 {
		Te.Error("snapshots share storage")
	}
}

func TestInitialStructure(Te *testing.T) {
	initial, err := ReadInitial("../test/relax.log")
	if err != nil {
		Te.Fatal(err)
	}
	if initial == nil {
		Te.Fatal("input.xyz not found next to the log")
	}
	traj, err := ParseFile("../test/relax.log", WithInitial(initial))
	if err != nil {
		Te.Fatal(err)
	}
	if len(traj) != 3 {
		Te.Fatalf("%d snapshots, want 3", len(traj))
	}
	matrixNear(Te, "wrapped positions", traj[0].Positions, [][]float64{{0, 0, 0}, {1.05, 0, 9.5}})
	matrixNear(Te, "cell", traj[2].Cell, [][]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}})
	if len(traj[0].Constraints) != 1 || traj[0].Constraints[0].Name != "FixAtoms" {
		Te.Errorf("the constraints were lost: %v", traj[0].Constraints)
	}
	if !chem.MapsEqual(traj[0].Parameters, initial.Parameters) {
		Te.Errorf("the parameters were lost: %v", traj[0].Parameters)
	}
	for i, S := range traj[1:] {
		if S.Constraints != nil || S.Parameters != nil {
			Te.Errorf("step %d carries constraints or parameters, only the first one should", i+1)
		}
	}
	if initial.Positions.At(1, 0) != 11.05 {
		Te.Error("the initial structure was modified")
	}

	wrong := initial.Copy()
	wrong.Species = wrong.Species[:1]
	wrong.Positions = wrong.Positions.VecView(0).Clone()
	_, err = ParseFile("../test/relax.log", WithInitial(wrong))
	var malformed MalformedLogError
	if !errors.As(err, &malformed) {
		Te.Errorf("want a MalformedLogError for a wrong number of atoms, got %v", err)
	}
}

func TestStrictHeaders(Te *testing.T) {
	log := []string{
		"   P. Giannozzi et al.",
		"     number of atoms/cell      =            2",
		"     number of atoms/cell      =            3",
	}
	if _, err := Parse(strings.NewReader(strings.Join(log, "\n"))); err != nil {
		Te.Errorf("repeated headers should be accepted by default: %v", err)
	}
	_, err := Parse(strings.NewReader(strings.Join(log, "\n")), WithStrictHeaders())
	var malformed MalformedLogError
	if !errors.As(err, &malformed) || malformed.Marker != AtomCount || malformed.Line != 3 {
		Te.Errorf("want a MalformedLogError at line 3, got %v", err)
	}
	log[2] = log[1]
	if _, err := Parse(strings.NewReader(strings.Join(log, "\n")), WithStrictHeaders()); err != nil {
		Te.Errorf("a header repeated with the same value is fine: %v", err)
	}
}

func TestUnitConversionError(Te *testing.T) {
	log := []string{
		"   P. Giannozzi et al.",
		"     number of atoms/cell      =            1",
		"     celldm(1)=  18.897260  celldm(2)=   0.000000",
		"     crystal axes: (cart. coord. in units of alat)",
		"               a(1) = (   1.000000   0.000000   0.000000 )",
		"               a(2) = (   0.000000   1.0x0000   0.000000 )",
		"               a(3) = (   0.000000   0.000000   1.000000 )",
	}
	traj, err := Parse(strings.NewReader(strings.Join(log, "\n")))
	var conv UnitConversionError
	if !errors.As(err, &conv) {
		Te.Fatalf("want a UnitConversionError, got %v", err)
	}
	if conv.Line != 6 || conv.Field != CellAxes {
		Te.Errorf("error at line %d in %q", conv.Line, conv.Field)
	}
	if conv.Unwrap() == nil || traj != nil {
		Te.Errorf("the error should wrap the strconv error, and no trajectory should be returned")
	}
}

func TestNoRunStart(Te *testing.T) {
	_, err := Parse(strings.NewReader("nothing to see here\n"))
	var notfound RunNotFoundError
	if !errors.As(err, &notfound) || notfound.Available != 0 {
		Te.Errorf("want RunNotFoundError, got %v", err)
	}
}
