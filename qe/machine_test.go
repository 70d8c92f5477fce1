package qe

import (
	"testing"

	chem "github.com/rmera/qetraj"
	"go.uber.org/zap"
)

func testMachine(text []string) *machine {
	return newMachine(newLines(text), newConfig(nil))
}

func TestTransitions(Te *testing.T) {
	m := testMachine([]string{
		"     crystal axes: (cart. coord. in units of alat)",
		"               a(1) = (   1.000000   0.000000   0.000000 )",
		"               a(2) = (   0.000000   1.000000   0.000000 )",
		"               a(3) = (   0.000000   0.000000   1.000000 )",
	})
	m.alat = 2
	line, _ := m.lines.next()
	next, err := m.awaitCell(line)
	if err != nil || next != AwaitAtomListing {
		Te.Fatalf("crystal axes: went to %s, error %v", next, err)
	}
	if m.cell.At(2, 2) != 2 || m.lines.num() != 4 {
		Te.Errorf("cell not read: %v, at line %d", m.cell, m.lines.num())
	}

	m = testMachine([]string{"   JOB DONE."})
	line, _ = m.lines.next()
	if next, _ := m.inTrajectory(line); next != Done {
		Te.Errorf("JOB DONE leads to %s", next)
	}
	m = testMachine([]string{"Begin final coordinates"})
	line, _ = m.lines.next()
	if next, _ := m.inTrajectory(line); next != Done {
		Te.Errorf("final coordinates lead to %s", next)
	}
	if next, _ := m.awaitRunStart("   Giannozzi"); next != AwaitCell {
		Te.Errorf("the run start leads to %s", next)
	}
}

func TestTrajectoryHook(Te *testing.T) {
	initial := chem.NewSnapshot([]string{"Cu"}, nil, nil)
	m := newMachine(newLines(nil), newConfig([]Option{WithInitial(initial), WithLogger(zap.NewNop())}))
	if next, _ := m.awaitCell("     Max number of k points (npk) "); next != AwaitAtomListing {
		Te.Errorf("with an initial structure the hook should skip the cell, went to %s", next)
	}
	m = testMachine(nil)
	if next, _ := m.awaitCell("     Max number of k points (npk) "); next != AwaitCell {
		Te.Errorf("without an initial structure the hook does nothing, went to %s", next)
	}
}

func TestResultsWindow(Te *testing.T) {
	S := chem.NewSnapshot([]string{"H"}, nil, nil)
	m := testMachine([]string{
		"!    total energy              =      -1.00000000 Ry",
		"ATOMIC_POSITIONS (angstrom)",
		"H 0 0 0",
		"     smearing contrib. (-TS)   =       0.50000000 Ry",
	})
	complete, err := m.results(S)
	if err != nil || !complete {
		Te.Fatalf("results: %t, %v", complete, err)
	}
	E := -1.0
	if *S.Energy != E*chem.Rydberg {
		Te.Errorf("the smearing of the next step was used: %v", *S.Energy)
	}
	if line, _ := m.lines.next(); line != "ATOMIC_POSITIONS (angstrom)" {
		Te.Errorf("the next block was swallowed, next line is %q", line)
	}

	m = testMachine([]string{"     number of k points=     1", "   JOB DONE."})
	if complete, err := m.results(S); complete || err != nil {
		Te.Errorf("no energy before JOB DONE: %t, %v", complete, err)
	}
}

func TestFrameOf(Te *testing.T) {
	for _, c := range []struct {
		line, marker string
		frame        Frame
		alat         string
	}{
		{"ATOMIC_POSITIONS (angstrom)", PositionsUpdate, Angstrom, ""},
		{"ATOMIC_POSITIONS {crystal}", PositionsUpdate, Crystal, ""},
		{"ATOMIC_POSITIONS", PositionsUpdate, Alat, ""},
		{"ATOMIC_POSITIONS (Bohr)", PositionsUpdate, BohrUnit, ""},
		{"CELL_PARAMETERS (alat= 10.20000000)", CellUpdate, Alat, "10.20000000"},
	} {
		frame, alat := frameOf(c.line, c.marker)
		if frame != c.frame || alat != c.alat {
			Te.Errorf("%q: got %s %q", c.line, frame, alat)
		}
	}
	if got := speciesLabel("Fe12"); got != "Fe" {
		Te.Errorf("speciesLabel(Fe12) = %s", got)
	}
}
