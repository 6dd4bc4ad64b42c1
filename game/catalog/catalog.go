package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/wricardo/tilematch/game/puzzle"
	"github.com/wricardo/tilematch/internal/logging"
)

var (
	ErrPuzzleNotFound  = errors.New("puzzle not found")
	ErrEmptyCatalog    = errors.New("catalog has no puzzles")
	ErrDuplicatePuzzle = errors.New("duplicate puzzle name")
	ErrReadOnly        = errors.New("catalog is read-only")
)

// Info describes one catalog entry
type Info struct {
	Name            string   `json:"name"`
	Index           int      `json:"index"`
	File            string   `json:"file"`
	Format          string   `json:"format"`
	Title           string   `json:"title"`
	Shapes          int      `json:"shapes"`
	Interactable    int      `json:"interactable"`
	ForegroundTiles int      `json:"foreground_tiles"`
	BackgroundTiles int      `json:"background_tiles"`
	Warnings        []string `json:"warnings,omitempty"`
}

type entry struct {
	name   string
	file   string
	format puzzle.Format
	def    *puzzle.PuzzleDefinition
	report puzzle.Report
}

// Options configures a Catalog
type Options struct {
	// Default names the puzzle returned by Default. Empty means the first entry.
	Default string
	Logger  *log.Logger
}

// Catalog is a sorted, indexed set of puzzle definitions read from a file system
type Catalog struct {
	fsys        fs.FS
	dir         string // set when backed by a writable directory
	defaultName string
	logger      *log.Logger

	entries []entry
	index   map[string]int
	mu      sync.RWMutex
}

// New loads every .yaml, .yml, .json and .txt file under fsys. Puzzle names
// are the slash-separated path without its extension, and entries are sorted
// by name. Any parse error aborts loading.
func New(fsys fs.FS, opts Options) (*Catalog, error) {
	c := &Catalog{
		fsys:        fsys,
		defaultName: normalize(opts.Default),
		logger:      logging.Named(opts.Logger, "catalog"),
	}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromDir creates a catalog backed by a directory on disk
func NewFromDir(dir string, opts Options) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("puzzle directory does not exist: %s", dir)
	}

	c, err := New(os.DirFS(dir), opts)
	if err != nil {
		return nil, err
	}
	c.dir = dir
	return c, nil
}

// Refresh rescans the file system and replaces all entries
func (c *Catalog) Refresh() error {
	entries, err := c.scan()
	if err != nil {
		return err
	}

	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.name] = i
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.index = index
	if c.defaultName != "" {
		if _, ok := index[c.defaultName]; !ok {
			c.logger.Warn("default puzzle not found, using first entry", "name", c.defaultName)
		}
	}
	c.logger.Debug("catalog loaded", "puzzles", len(entries))
	return nil
}

func (c *Catalog) scan() ([]entry, error) {
	var entries []entry
	err := fs.WalkDir(c.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		format, ferr := puzzle.FormatFromFilename(p)
		if ferr != nil {
			c.logger.Debug("skipping file", "file", p)
			return nil
		}

		data, err := fs.ReadFile(c.fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read puzzle file: %w", err)
		}

		name := strings.TrimSuffix(p, path.Ext(p))
		def, err := puzzle.Load(name, data, format)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}

		report := puzzle.Check(def)
		for _, w := range report.Warnings {
			c.logger.Warn("puzzle warning", "puzzle", name, "issue", w.String())
		}
		entries = append(entries, entry{name: name, file: p, format: format, def: def, report: report})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	for i := 1; i < len(entries); i++ {
		if entries[i].name == entries[i-1].name {
			return nil, fmt.Errorf("%w: %s (%s, %s)", ErrDuplicatePuzzle,
				entries[i].name, entries[i-1].file, entries[i].file)
		}
	}
	return entries, nil
}

// normalize accepts names with a known puzzle extension.
func normalize(name string) string {
	if _, err := puzzle.FormatFromFilename(name); err == nil {
		return strings.TrimSuffix(name, path.Ext(name))
	}
	return name
}

// Len returns the number of puzzles
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Names returns puzzle names in catalog order
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Index returns the position of name in the catalog
func (c *Catalog) Index(name string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[normalize(name)]
	return i, ok
}

// Get returns the puzzle with the given name
func (c *Catalog) Get(name string) (*puzzle.PuzzleDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPuzzleNotFound, name)
	}
	return c.entries[i].def, nil
}

// At returns the puzzle at catalog position i
func (c *Catalog) At(i int) (*puzzle.PuzzleDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i < 0 || i >= len(c.entries) {
		return nil, fmt.Errorf("%w: index %d", ErrPuzzleNotFound, i)
	}
	return c.entries[i].def, nil
}

// NameAt returns the name of the puzzle at catalog position i
func (c *Catalog) NameAt(i int) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i < 0 || i >= len(c.entries) {
		return "", fmt.Errorf("%w: index %d", ErrPuzzleNotFound, i)
	}
	return c.entries[i].name, nil
}

// DefaultName returns the configured default if present, otherwise the first entry
func (c *Catalog) DefaultName() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return "", ErrEmptyCatalog
	}
	if _, ok := c.index[c.defaultName]; ok {
		return c.defaultName, nil
	}
	return c.entries[0].name, nil
}

// Default returns the default puzzle
func (c *Catalog) Default() (*puzzle.PuzzleDefinition, error) {
	name, err := c.DefaultName()
	if err != nil {
		return nil, err
	}
	return c.Get(name)
}

// SetDefault sets the default puzzle by name
func (c *Catalog) SetDefault(name string) error {
	if _, err := c.Get(name); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultName = normalize(name)
	return nil
}

// Resolve looks up name and falls back to the default puzzle when it is
// missing. The returned name is the one actually used, and fellBack reports
// whether the fallback was taken.
func (c *Catalog) Resolve(name string) (def *puzzle.PuzzleDefinition, resolved string, fellBack bool, err error) {
	if name != "" {
		if def, err := c.Get(name); err == nil {
			return def, normalize(name), false, nil
		}
		c.logger.Warn("puzzle not found, falling back to default", "name", name)
	}

	resolved, err = c.DefaultName()
	if err != nil {
		return nil, "", false, err
	}
	def, err = c.Get(resolved)
	return def, resolved, name != "", err
}

// Neighbor returns the name delta places away from name, wrapping around
func (c *Catalog) Neighbor(name string, delta int) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := len(c.entries)
	if n == 0 {
		return "", ErrEmptyCatalog
	}
	i, ok := c.index[normalize(name)]
	if !ok {
		i = 0
	}
	return c.entries[((i+delta)%n+n)%n].name, nil
}

// List returns information about every puzzle in catalog order
func (c *Catalog) List() []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]Info, len(c.entries))
	for i, e := range c.entries {
		infos[i] = e.info(i)
	}
	return infos
}

// Describe returns information about one puzzle
func (c *Catalog) Describe(name string) (Info, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[normalize(name)]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrPuzzleNotFound, name)
	}
	return c.entries[i].info(i), nil
}

func (e entry) info(i int) Info {
	info := Info{
		Name:            e.name,
		Index:           i,
		File:            e.file,
		Format:          e.format.String(),
		Title:           e.def.Name,
		Shapes:          e.report.Stats.Shapes,
		Interactable:    e.report.Stats.Interactable,
		ForegroundTiles: e.report.Stats.ForegroundTiles,
		BackgroundTiles: e.report.Stats.BackgroundTiles,
	}
	for _, w := range e.report.Warnings {
		info.Warnings = append(info.Warnings, w.String())
	}
	return info
}

// Save writes def as YAML under name and adds it to the catalog. Only
// directory-backed catalogs are writable.
func (c *Catalog) Save(name string, def *puzzle.PuzzleDefinition) error {
	if c.dir == "" {
		return ErrReadOnly
	}
	name = normalize(name)
	if name == "" || strings.Contains(name, "..") {
		return fmt.Errorf("invalid puzzle name %q", name)
	}
	if report := puzzle.Check(def); !report.OK() {
		return fmt.Errorf("refusing to save %s: %s", name, report.Errors[0])
	}
	file := name + ".yaml"
	c.mu.RLock()
	if i, ok := c.index[name]; ok {
		e := c.entries[i]
		if e.format != puzzle.FormatYAML {
			c.mu.RUnlock()
			return fmt.Errorf("%w: %s exists as %s", ErrDuplicatePuzzle, name, e.file)
		}
		file = e.file
	}
	c.mu.RUnlock()

	data, err := puzzle.Encode(def)
	if err != nil {
		return err
	}

	target := filepath.Join(c.dir, filepath.FromSlash(file))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create puzzle directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write puzzle file: %w", err)
	}

	return c.Refresh()
}
