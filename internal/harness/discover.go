package harness

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// Discover returns the scenario files under root in lexical order. A
// non-empty filter is a glob matched against each file's base name without
// its extension, so "shop-*" selects shop-playwright.yaml.
//
// A root that is itself a file is returned as is.
func Discover(root, filter string) ([]string, error) {
	var g glob.Glob
	if filter != "" {
		var err error
		g, err = glob.Compile(filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scenario path: %w", err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	paths := []string{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Golden snapshots and spec fixtures live beside scenarios.
			if path != root && (d.Name() == "golden" || d.Name() == "specs") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if g != nil && !g.Match(strings.TrimSuffix(d.Name(), ext)) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}
