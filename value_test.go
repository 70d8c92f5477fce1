package chem

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestValueOf(Te *testing.T) {
	for _, c := range []struct {
		in   any
		want Value
	}{
		{3, Number(3)},
		{"PBE", Text("PBE")},
		{false, Flag(false)},
		{[]any{4.0, 4.0, 1.0}, Vector{4, 4, 1}},
		{[]any{[]any{1.0, 0.0}, []any{0.0, 1.0}}, Matrix{{1, 0}, {0, 1}}},
		{[]any{1.0, "a"}, Sequence{Number(1), Text("a")}},
		{[]any{[]any{1.0}, []any{1.0, 2.0}}, Sequence{Vector{1}, Vector{1, 2}}},
		{map[string]any{"a": true}, Mapping{"a": Flag(true)}},
		{[]any{}, Vector{}},
	} {
		got, err := ValueOf(c.in)
		if err != nil {
			Te.Errorf("ValueOf(%v): %v", c.in, err)
			continue
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			Te.Errorf("ValueOf(%v) (-want +got):\n%s", c.in, diff)
		}
	}
	if _, err := ValueOf(nil); err == nil {
		Te.Error("null value accepted")
	}
	if _, err := ValueOf(struct{}{}); err == nil {
		Te.Error("struct value accepted")
	}
}

// Parameters must survive both serializations used for documents.
func TestFlattenSerialized(Te *testing.T) {
	params := map[string]Value{
		"ecutwfc": Number(30),
		"xc":      Text("PBE"),
		"spinpol": Flag(true),
		"kpts":    Vector{4, 4, 1},
		"magmoms": Matrix{{0, 0, 1}, {0, 0, -1}},
		"pseudos": Mapping{"Cu": Text("Cu.pbe.UPF")},
		"mixed":   Sequence{Number(1), Text("two")},
	}
	flat := FlattenMap(params)
	js, err := json.Marshal(flat)
	if err != nil {
		Te.Fatal(err)
	}
	ym, err := yaml.Marshal(flat)
	if err != nil {
		Te.Fatal(err)
	}
	var fromJSON, fromYAML map[string]any
	if err := json.Unmarshal(js, &fromJSON); err != nil {
		Te.Fatal(err)
	}
	if err := yaml.Unmarshal(ym, &fromYAML); err != nil {
		Te.Fatal(err)
	}
	for name, m := range map[string]map[string]any{"json": fromJSON, "yaml": fromYAML} {
		back, err := MapOf(m)
		if err != nil {
			Te.Fatalf("%s: %v", name, err)
		}
		if !MapsEqual(params, back) {
			Te.Errorf("%s: parameters changed:\n%s", name, cmp.Diff(params, back))
		}
	}
}

func TestCanonical(Te *testing.T) {
	a := Sequence{Vector{1, 2}, Vector{3, 4}}
	b := Matrix{{1, 2}, {3, 4}}
	if !ValuesEqual(a, b) {
		Te.Error("equivalent values compared as different")
	}
	if ValuesEqual(Vector{1, 2}, Vector{1, 2, 3}) {
		Te.Error("different vectors compared as equal")
	}
	if !MapsEqual(nil, map[string]Value{}) {
		Te.Error("nil map differs from empty map")
	}
	if MapsEqual(map[string]Value{"a": Number(1)}, map[string]Value{"b": Number(1)}) {
		Te.Error("maps with different keys compared as equal")
	}
}

func TestFlattenDoesNotAlias(Te *testing.T) {
	v := Vector{1, 2, 3}
	f := Flatten(v).([]float64)
	f[0] = 100
	if v[0] != 1 {
		Te.Error("Flatten result shares storage with its argument")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3})); diff != "" {
		Te.Errorf("SortedKeys (-want +got):\n%s", diff)
	}
}
