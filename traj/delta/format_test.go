package delta

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	chem "github.com/rmera/qetraj"
	"github.com/vmihailenco/msgpack/v5"
)

func TestFormats(Te *testing.T) {
	traj := relaxation(Te)
	dir := Te.TempDir()
	for _, name := range []string{"traj.json", "traj.yaml", "traj.yml", "traj.json.zst", "traj.yaml.gz", "TRAJ.JSON.GZ", "traj.msgpack", "traj.msgpack.zst"} {
		doc, err := Encode(traj)
		if err != nil {
			Te.Fatal(err)
		}
		name = filepath.Join(dir, name)
		if err := WriteFile(name, doc); err != nil {
			Te.Fatalf("%s: %v", name, err)
		}
		read, err := ReadFile(name)
		if err != nil {
			Te.Fatalf("%s: %v", name, err)
		}
		decoded, err := Decode(read)
		if err != nil {
			Te.Fatalf("%s: %v", name, err)
		}
		for i := range traj {
			if !decoded[i].Equal(traj[i]) {
				Te.Errorf("%s: snapshot %d changed in the round trip", name, i)
			}
		}
	}
	if err := WriteFile(filepath.Join(dir, "traj.xml"), nil); err == nil {
		Te.Error("unknown format accepted")
	}
}

func TestDeterministic(Te *testing.T) {
	for _, f := range []Format{JSON, YAML, MsgPack} {
		var first []byte
		for i := 0; i < 5; i++ {
			doc, err := Encode(relaxation(Te))
			if err != nil {
				Te.Fatal(err)
			}
			out, err := Marshal(doc, f)
			if err != nil {
				Te.Fatal(err)
			}
			if first == nil {
				first = out
				continue
			}
			if !bytes.Equal(first, out) {
				Te.Errorf("%s encoding is not deterministic:\n%s", f, cmp.Diff(string(first), string(out)))
			}
		}
	}
}

func TestWireKeys(Te *testing.T) {
	doc, err := Encode(relaxation(Te))
	if err != nil {
		Te.Fatal(err)
	}
	out, err := Marshal(doc, JSON)
	if err != nil {
		Te.Fatal(err)
	}
	s := string(out)
	for _, key := range []string{`"numbers":[8,1,1]`, `"pbc":[true,true,true]`, `"constraints":[{"name":"FixAtoms","kwargs":{"indices":[0]}}]`, `"calculator_parameters":{`, `"trajectory":{"0":{`} {
		if !strings.Contains(s, key) {
			Te.Errorf("%s not found in %s", key, s)
		}
	}
	if strings.Contains(s, "null") {
		Te.Errorf("the document has null values: %s", s)
	}
}

// A document written by hand, with integers where floats are expected.
func TestHandWrittenYAML(Te *testing.T) {
	yml := `
numbers: [1, 1]
pbc: [true, true, true]
constraints: []
calculator_parameters:
  kpts: [1, 1, 1]
  xc: PBE
trajectory:
  "0":
    positions: [[0, 0, 0], [0.74, 0, 0]]
    cell: [[5, 0, 0], [0, 5, 0], [0, 0, 5]]
    energy: -31.7
  "1":
    positions: [[0, 0, 0], [0.75, 0, 0]]
    energy: -31.71
`
	doc, err := Unmarshal([]byte(yml), YAML)
	if err != nil {
		Te.Fatal(err)
	}
	traj, err := Decode(doc)
	if err != nil {
		Te.Fatal(err)
	}
	if len(traj) != 2 || traj[1].Cell.At(2, 2) != 5 || traj[1].Positions.At(1, 0) != 0.75 {
		Te.Errorf("bad decoding of %s", yml)
	}
	if diff := cmp.Diff([]string{"H", "H"}, traj[1].Species); diff != "" {
		Te.Errorf("species (-want +got):\n%s", diff)
	}
}

// A MessagePack document from another producer, which packs small integers
// in the narrowest type.
func TestForeignMsgPack(Te *testing.T) {
	foreign := map[string]any{
		"numbers":     []int{29, 29},
		"pbc":         []bool{true, true, false},
		"constraints": []map[string]any{{"name": "FixAtoms", "kwargs": map[string]any{"indices": []int{0}}}},
		"calculator_parameters": map[string]any{
			"ecutwfc": 30,
			"nspin":   int16(2),
			"kpts":    []any{4, 4, 1},
			"calc":    "relax",
		},
		"trajectory": map[string]any{
			"0": map[string]any{
				"positions": [][]float64{{0, 0, 0}, {1.8, 1.8, 0}},
				"cell":      [][]float64{{3.6, 0, 0}, {0, 3.6, 0}, {0, 0, 15}},
				"energy":    -427.1,
			},
			"1": map[string]any{"positions": [][]float64{{0, 0, 0.1}, {1.8, 1.8, 0}}},
		},
	}
	data, err := msgpack.Marshal(foreign)
	if err != nil {
		Te.Fatal(err)
	}
	doc, err := Unmarshal(data, MsgPack)
	if err != nil {
		Te.Fatal(err)
	}
	traj, err := Decode(doc)
	if err != nil {
		Te.Fatal(err)
	}
	if len(traj) != 2 || traj[1].Positions.At(0, 2) != 0.1 || traj[1].PBC[2] {
		Te.Fatalf("bad decoding of the foreign document")
	}
	want := map[string]chem.Value{
		"ecutwfc": chem.Number(30),
		"nspin":   chem.Number(2),
		"kpts":    chem.Vector{4, 4, 1},
		"calc":    chem.Text("relax"),
	}
	if !chem.MapsEqual(want, traj[0].Parameters) {
		Te.Errorf("parameters %v, want %v", traj[0].Parameters, want)
	}
	if !chem.MapsEqual(map[string]chem.Value{"indices": chem.Vector{0}}, traj[0].Constraints[0].Kwargs) {
		Te.Errorf("bad constraint %v", traj[0].Constraints[0])
	}
	if _, err := Unmarshal([]byte{0xc1}, MsgPack); err == nil {
		Te.Error("broken MessagePack accepted")
	}
}

func TestReadErrors(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "broken.json.zst")
	if err := os.WriteFile(name, []byte("not zstd"), 0o644); err != nil {
		Te.Fatal(err)
	}
	if _, err := ReadFile(name); err == nil {
		Te.Error("broken zstd data accepted")
	}
	if _, err := ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		Te.Error("missing file accepted")
	}
	if _, err := Unmarshal([]byte("{"), JSON); err == nil {
		Te.Error("broken JSON accepted")
	}
}
