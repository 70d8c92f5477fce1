package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/rmera/qetraj"
	"github.com/rmera/qetraj/qe"
)

func execute(Te *testing.T, args ...string) string {
	Te.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		Te.Fatalf("qetraj %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

// TestPipeline parses the test log, decodes, plots and archives the document.
func TestPipeline(Te *testing.T) {
	dir := Te.TempDir()
	doc := filepath.Join(dir, "relax.yaml.gz")
	archive := filepath.Join(dir, "archive.db")
	execute(Te, "parse", "--initial=false", "../../test/relax.log", doc)
	execute(Te, "decode", doc)
	traj, err := chem.ReadTrajectory(filepath.Join(dir, "relax.xyz"))
	if err != nil {
		Te.Fatal(err)
	}
	parsed, err := qe.ParseFile("../../test/relax.log")
	if err != nil {
		Te.Fatal(err)
	}
	if len(traj) != len(parsed) {
		Te.Fatalf("%d steps decoded, want %d", len(traj), len(parsed))
	}
	for i := range parsed {
		if *traj[i].Energy != *parsed[i].Energy {
			Te.Errorf("step %d: energy %v, want %v", i, *traj[i].Energy, *parsed[i].Energy)
		}
	}
	execute(Te, "plot", doc)
	for _, name := range []string{"relax.png", "relax_forces.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			Te.Error(err)
		}
	}
	execute(Te, "store", "put", "--archive", archive, doc)
	list := execute(Te, "store", "list", "--archive", archive)
	if !strings.HasPrefix(list, "relax ") || !strings.Contains(list, "3 steps") {
		Te.Errorf("unexpected listing %q", list)
	}
}
