package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rmera/qetraj/qe"
	"github.com/rmera/qetraj/traj/delta"
)

func TestStore(Te *testing.T) {
	ctx := context.Background()
	S, err := Open(filepath.Join(Te.TempDir(), "archive.db"))
	if err != nil {
		Te.Fatal(err)
	}
	defer S.Close()
	traj, err := qe.ParseFile("../test/relax.log")
	if err != nil {
		Te.Fatal(err)
	}
	doc, err := delta.Encode(traj)
	if err != nil {
		Te.Fatal(err)
	}
	for _, name := range []string{"relax", "again", "relax"} {
		if err := S.Put(ctx, name, doc); err != nil {
			Te.Fatal(err)
		}
	}
	entries, err := S.List(ctx)
	if err != nil {
		Te.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		if e.Steps != 3 {
			Te.Errorf("%s: %d steps, want 3", e.Name, e.Steps)
		}
	}
	if diff := cmp.Diff([]string{"again", "relax"}, names); diff != "" {
		Te.Errorf("entries (-want +got):\n%s", diff)
	}
	got, err := S.Get(ctx, "relax")
	if err != nil {
		Te.Fatal(err)
	}
	decoded, err := delta.Decode(got)
	if err != nil {
		Te.Fatal(err)
	}
	for i := range traj {
		if !decoded[i].Equal(traj[i]) {
			Te.Errorf("step %d changed in the archive", i)
		}
	}
	if err := S.Delete(ctx, "again"); err != nil {
		Te.Error(err)
	}
	if _, err := S.Get(ctx, "again"); !errors.Is(err, ErrNotFound) {
		Te.Errorf("want ErrNotFound, got %v", err)
	}
	if err := S.Delete(ctx, "again"); !errors.Is(err, ErrNotFound) {
		Te.Errorf("want ErrNotFound, got %v", err)
	}
}
