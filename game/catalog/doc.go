// Package catalog provides the sorted set of puzzles available to players.
//
// The catalog package handles:
//   - Loading puzzle documents from any fs.FS (embedded or on disk)
//   - Strict parsing, so a broken document fails the whole load
//   - Stable ordering by short name, with lookup by name or index
//   - Default puzzle selection and fallback for unknown names
//   - Saving new YAML puzzles into a directory-backed catalog
//
// Puzzle Names:
//
// A puzzle's short name is its path inside the file system with the
// extension removed, e.g. "easy/corner" for easy/corner.yaml. Files with
// extensions other than .yaml, .yml, .json and .txt are ignored. Two files
// with the same short name are an error.
//
// Usage:
//
//	cat, err := catalog.New(puzzles.FS, catalog.Options{Default: "intro"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Unknown names fall back to the default puzzle
//	def, name, fellBack, err := cat.Resolve("missing")
//
//	// Step through the catalog
//	next, _ := cat.Neighbor(name, 1)
//
//	// List available puzzles
//	for _, info := range cat.List() {
//		fmt.Println(info.Index, info.Name, info.Shapes)
//	}
package catalog
