package migrate

import (
	"testing"
	"testing/fstest"
)

func TestDiscoverUpMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0003_add_index_up.sql":  {Data: []byte("CREATE INDEX ...;")},
		"0001_init_up.sql":       {Data: []byte("CREATE TABLE ...;")},
		"0001_init_down.sql":     {Data: []byte("DROP TABLE ...;")},
		"0002_snapshots_up.sql":  {Data: []byte("CREATE TABLE ...;")},
		"README.md":              {Data: []byte("notes")},
		"broken_noversion_up.sql": {Data: []byte("-- 无数字前缀，跳过")},
	}

	ups, err := (Runner{Dir: "."}).discoverUpMigrations(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ups) != 3 {
		t.Fatalf("expected 3 up migrations, got %d", len(ups))
	}
	want := []int64{1, 2, 3}
	for i, m := range ups {
		if m.Version != want[i] {
			t.Fatalf("position %d: expected version %d, got %d", i, want[i], m.Version)
		}
	}
}
