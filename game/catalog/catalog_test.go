package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/wricardo/tilematch/game/geom"
	"github.com/wricardo/tilematch/game/puzzle"
)

const cornerYAML = `name: Corner
shapes:
  - interactable: false
    tiles: [2, 2]
  - tiles: [2, 1]
  - tiles: [2, 1]
`

func createTestFS() fstest.MapFS {
	return fstest.MapFS{
		"corner.yaml":     {Data: []byte(cornerYAML)},
		"ab.txt":          {Data: []byte("AB\nAB\nA ")},
		"hard/stairs.txt": {Data: []byte("A\nAB\nABC")},
		"README.md":       {Data: []byte("# not a puzzle")},
	}
}

func newTestCatalog(t *testing.T, opts Options) *Catalog {
	t.Helper()
	c, err := New(createTestFS(), opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	c := newTestCatalog(t, Options{})

	want := []string{"ab", "corner", "hard/stairs"}
	got := c.Names()
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGet(t *testing.T) {
	c := newTestCatalog(t, Options{})

	def, err := c.Get("corner")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if def.Name != "Corner" || len(def.Shapes) != 3 {
		t.Errorf("Unexpected definition %+v", def)
	}

	// ASCII art puzzles are named after their file
	def, err = c.Get("hard/stairs.txt")
	if err != nil {
		t.Fatalf("Get with extension failed: %v", err)
	}
	if def.Name != "hard/stairs" {
		t.Errorf("Expected ascii puzzle name hard/stairs, got %s", def.Name)
	}

	if _, err := c.Get("nope"); !errors.Is(err, ErrPuzzleNotFound) {
		t.Errorf("Expected ErrPuzzleNotFound, got %v", err)
	}
}

func TestAtAndIndex(t *testing.T) {
	c := newTestCatalog(t, Options{})

	i, ok := c.Index("corner")
	if !ok || i != 1 {
		t.Errorf("Expected corner at 1, got %d ok=%v", i, ok)
	}
	def, err := c.At(i)
	if err != nil || def.Name != "Corner" {
		t.Errorf("At(%d) = %v, %v", i, def, err)
	}
	if _, err := c.At(3); !errors.Is(err, ErrPuzzleNotFound) {
		t.Errorf("Expected ErrPuzzleNotFound, got %v", err)
	}
	if name, _ := c.NameAt(2); name != "hard/stairs" {
		t.Errorf("NameAt(2) = %s", name)
	}
}

func TestDefaultAndResolve(t *testing.T) {
	t.Run("first entry", func(t *testing.T) {
		c := newTestCatalog(t, Options{})
		name, err := c.DefaultName()
		if err != nil || name != "ab" {
			t.Errorf("Expected ab, got %s (%v)", name, err)
		}
	})

	t.Run("configured", func(t *testing.T) {
		c := newTestCatalog(t, Options{Default: "corner.yaml"})
		def, err := c.Default()
		if err != nil || def.Name != "Corner" {
			t.Errorf("Expected Corner, got %v (%v)", def, err)
		}
	})

	t.Run("configured but missing", func(t *testing.T) {
		c := newTestCatalog(t, Options{Default: "gone"})
		if name, _ := c.DefaultName(); name != "ab" {
			t.Errorf("Expected fallback to ab, got %s", name)
		}
	})

	t.Run("resolve", func(t *testing.T) {
		c := newTestCatalog(t, Options{})

		_, name, fellBack, err := c.Resolve("corner")
		if err != nil || name != "corner" || fellBack {
			t.Errorf("Resolve(corner) = %s %v %v", name, fellBack, err)
		}

		def, name, fellBack, err := c.Resolve("missing")
		if err != nil || name != "ab" || !fellBack || def.Name != "ab" {
			t.Errorf("Resolve(missing) = %s %v %v", name, fellBack, err)
		}

		_, name, fellBack, _ = c.Resolve("")
		if name != "ab" || fellBack {
			t.Errorf("Resolve(\"\") = %s %v", name, fellBack)
		}
	})

	t.Run("set default", func(t *testing.T) {
		c := newTestCatalog(t, Options{})
		if err := c.SetDefault("hard/stairs"); err != nil {
			t.Fatalf("SetDefault failed: %v", err)
		}
		if name, _ := c.DefaultName(); name != "hard/stairs" {
			t.Errorf("Expected hard/stairs, got %s", name)
		}
		if err := c.SetDefault("nope"); !errors.Is(err, ErrPuzzleNotFound) {
			t.Errorf("Expected ErrPuzzleNotFound, got %v", err)
		}
	})
}

func TestNeighbor(t *testing.T) {
	c := newTestCatalog(t, Options{})

	tests := []struct {
		from  string
		delta int
		want  string
	}{
		{"ab", 1, "corner"},
		{"hard/stairs", 1, "ab"},
		{"ab", -1, "hard/stairs"},
		{"corner", 5, "ab"},
		{"unknown", 1, "corner"},
	}
	for _, tt := range tests {
		got, err := c.Neighbor(tt.from, tt.delta)
		if err != nil || got != tt.want {
			t.Errorf("Neighbor(%s, %d) = %s, want %s", tt.from, tt.delta, got, tt.want)
		}
	}
}

func TestList(t *testing.T) {
	c := newTestCatalog(t, Options{})

	infos := c.List()
	if len(infos) != 3 {
		t.Fatalf("Expected 3 infos, got %d", len(infos))
	}
	corner := infos[1]
	if corner.Title != "Corner" || corner.Format != "yaml" || corner.Shapes != 3 ||
		corner.ForegroundTiles != 4 || corner.BackgroundTiles != 4 {
		t.Errorf("Unexpected info %+v", corner)
	}

	info, err := c.Describe("ab")
	if err != nil || info.Format != "txt" || info.Interactable != 2 {
		t.Errorf("Unexpected describe %+v (%v)", info, err)
	}
}

func TestNewErrors(t *testing.T) {
	t.Run("parse error", func(t *testing.T) {
		fsys := fstest.MapFS{"bad.yaml": {Data: []byte("name: x\nshapes:\n  - tiles: [1, 2, 3]\n")}}
		_, err := New(fsys, Options{})
		if !errors.Is(err, puzzle.ErrRectArity) {
			t.Errorf("Expected ErrRectArity, got %v", err)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		fsys := fstest.MapFS{
			"a.yaml": {Data: []byte(cornerYAML)},
			"a.txt":  {Data: []byte("A")},
		}
		_, err := New(fsys, Options{})
		if !errors.Is(err, ErrDuplicatePuzzle) {
			t.Errorf("Expected ErrDuplicatePuzzle, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		c, err := New(fstest.MapFS{}, Options{})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if _, err := c.Default(); !errors.Is(err, ErrEmptyCatalog) {
			t.Errorf("Expected ErrEmptyCatalog, got %v", err)
		}
		if _, _, _, err := c.Resolve("x"); !errors.Is(err, ErrEmptyCatalog) {
			t.Errorf("Expected ErrEmptyCatalog, got %v", err)
		}
	})

	t.Run("missing dir", func(t *testing.T) {
		if _, err := NewFromDir(filepath.Join(t.TempDir(), "nope"), Options{}); err == nil {
			t.Error("Expected error for missing directory")
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "corner.yaml"), []byte(cornerYAML), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := NewFromDir(dir, Options{})
	if err != nil {
		t.Fatalf("NewFromDir failed: %v", err)
	}

	def := puzzle.FromASCIIArt("Line", "AA")
	if err := c.Save("more/line", def); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "more", "line.yaml")); err != nil {
		t.Errorf("Expected file on disk: %v", err)
	}

	got, err := c.Get("more/line")
	if err != nil {
		t.Fatalf("Get after save failed: %v", err)
	}
	if got.Name != "Line" || len(got.Shapes) != 2 {
		t.Errorf("Unexpected saved puzzle %+v", got)
	}

	bad := &puzzle.PuzzleDefinition{Name: "dup", Shapes: []puzzle.ShapeDefinition{
		{Interactable: true, Tiles: puzzle.TileList(
			puzzle.TileDefinition{Pos: geom.Pos(0, 0)},
			puzzle.TileDefinition{Pos: geom.Pos(0, 0)},
		)},
	}}
	if err := c.Save("dup", bad); err == nil {
		t.Error("Expected invalid puzzle to be refused")
	}
	if err := c.Save("../escape", def); err == nil {
		t.Error("Expected path escape to be refused")
	}

	ro := newTestCatalog(t, Options{})
	if err := ro.Save("x", def); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly, got %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := newTestCatalog(t, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				if err := c.Refresh(); err != nil {
					t.Errorf("Refresh failed: %v", err)
				}
				return
			}
			if _, err := c.Get("corner"); err != nil {
				t.Errorf("Get failed: %v", err)
			}
			c.List()
		}(i)
	}
	wg.Wait()
}
