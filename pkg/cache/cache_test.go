package cache

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	t.Run("MissBeforeSet", func(t *testing.T) {
		_, hit, err := c.Get(ctx, "absent")
		if err != nil {
			t.Fatal(err)
		}
		if hit {
			t.Error("expected miss for absent key")
		}
	})

	t.Run("SetGet", func(t *testing.T) {
		if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
		data, hit, err := c.Get(ctx, "k")
		if err != nil {
			t.Fatal(err)
		}
		if !hit || string(data) != "v" {
			t.Errorf("got (%q, %v), want (v, true)", data, hit)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
		_, hit, err := c.Get(ctx, "short")
		if err != nil {
			t.Fatal(err)
		}
		if hit {
			t.Error("expired entry should miss")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := c.Set(ctx, "d", []byte("x"), 0); err != nil {
			t.Fatal(err)
		}
		if err := c.Delete(ctx, "d"); err != nil {
			t.Fatal(err)
		}
		if _, hit, _ := c.Get(ctx, "d"); hit {
			t.Error("deleted entry should miss")
		}
		// Deleting a missing key is not an error.
		if err := c.Delete(ctx, "d"); err != nil {
			t.Errorf("double delete: %v", err)
		}
	})
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("null cache should never hit")
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	geom := GraphKeyOpts{OriginX: 400, OriginY: 300, PrimaryRadius: 200, SecondaryRadius: 100, SpreadDegrees: 30}

	g1 := k.GraphKey("hash-a", geom)
	g2 := k.GraphKey("hash-a", geom)
	if g1 != g2 {
		t.Error("identical inputs should produce identical keys")
	}

	if k.GraphKey("hash-b", geom) == g1 {
		t.Error("different hierarchy hashes should produce different keys")
	}

	wide := geom
	wide.PrimaryRadius = 250
	if k.GraphKey("hash-a", wide) == g1 {
		t.Error("different geometry should produce different keys")
	}

	a1 := k.ArtifactKey("hash-a", ArtifactKeyOpts{Format: "svg", Style: "simple"})
	a2 := k.ArtifactKey("hash-a", ArtifactKeyOpts{Format: "json", Style: "simple"})
	if a1 == a2 {
		t.Error("different formats should produce different keys")
	}

	if g1 == a1 {
		t.Error("graph and artifact key namespaces must not overlap")
	}
}

func TestFileCacheNamespaceLayout(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	c, err := NewFileCache(root)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	keyer := NewDefaultKeyer()
	gkey := keyer.GraphKey("h", GraphKeyOpts{OriginX: 1})
	akey := keyer.ArtifactKey("h", ArtifactKeyOpts{Format: "svg", Style: "simple"})

	if err := c.Set(ctx, gkey, []byte("g"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, akey, []byte("a"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "bare", []byte("m"), 0); err != nil {
		t.Fatal(err)
	}

	for _, ns := range []string{NamespaceGraph, NamespaceArtifact, "misc"} {
		if n := countEntryFiles(t, filepath.Join(root, ns)); n != 1 {
			t.Errorf("namespace %q holds %d entries, want 1", ns, n)
		}
	}
}

func TestFileCacheEvictsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	c, err := NewFileCache(root)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	for _, path := range entryFiles(t, root) {
		if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("corrupt entry: got (hit=%v, err=%v), want miss", hit, err)
	}
	if n := countEntryFiles(t, root); n != 0 {
		t.Errorf("corrupt entry left on disk (%d files)", n)
	}
}

func entryFiles(t *testing.T, dir string) []string {
	t.Helper()
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return paths
}

func countEntryFiles(t *testing.T, dir string) int {
	t.Helper()
	return len(entryFiles(t, dir))
}

func TestHashStable(t *testing.T) {
	h1 := Hash([]byte("abc"))
	h2 := Hash([]byte("abc"))
	if h1 != h2 {
		t.Error("hash must be stable")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
	if Hash([]byte("abd")) == h1 {
		t.Error("different data should hash differently")
	}
}
