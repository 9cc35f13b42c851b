package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashObject_Deterministic(t *testing.T) {
	a := map[string]any{"width": 1920, "height": 1080, "fps": "30000/1001"}
	b := map[string]any{"fps": "30000/1001", "height": 1080, "width": 1920}

	ha, err := HashObject(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashObject(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Errorf("key order must not change the hash: %s vs %s", ha, hb)
	}
	if len(ha) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(ha))
	}
}

func TestHashObject_SensitiveToValues(t *testing.T) {
	h1, _ := HashObject(map[string]any{"shakiness": 5})
	h2, _ := HashObject(map[string]any{"shakiness": 6})
	if h1 == h2 {
		t.Error("different values must hash differently")
	}
}

func TestDir_Paths(t *testing.T) {
	dir, err := Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	key := strings.Repeat("ab", 32)
	trf := dir.TransformsPath(key)
	if filepath.Dir(trf) != dir.Path() {
		t.Errorf("transforms path outside cache dir: %s", trf)
	}
	if !strings.HasSuffix(trf, key+".transforms.trf") {
		t.Errorf("unexpected transforms name: %s", trf)
	}
	if !strings.HasSuffix(dir.GlobalMotionsPath(key), key+".global_motions.trf") {
		t.Errorf("unexpected motions name: %s", dir.GlobalMotionsPath(key))
	}
}

func TestDir_HasAndCommit(t *testing.T) {
	dir, err := Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	final := dir.TransformsPath("deadbeef")
	if dir.Has(final) {
		t.Error("Has should be false before commit")
	}

	tmp := dir.TempPath(final)
	if err := os.WriteFile(tmp, []byte("Frame 0 0 0 0 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if dir.Has(final) {
		t.Error("temp file must not satisfy Has for the final path")
	}
	if err := dir.Commit(tmp, final); err != nil {
		t.Fatal(err)
	}
	if !dir.Has(final) {
		t.Error("Has should be true after commit")
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Error("temp file should be gone after commit")
	}
}

func TestDir_HasRejectsEmptyFiles(t *testing.T) {
	dir, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := dir.TransformsPath("cafe")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if dir.Has(path) {
		t.Error("empty artifact must not count as a cache hit")
	}
}
