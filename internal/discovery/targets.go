package discovery

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gurisko/jbsearch/internal/registry"
)

// Targets are the directories and file names a watcher needs to notice
// changes to any source, including config dirs of versions installed later.
type Targets struct {
	Dirs  []string
	Names []string
}

// WatchTargets resolves the directories holding every source of the registry.
// Directories that do not exist yet are left out.
func (d *Discoverer) WatchTargets() Targets {
	dirs := map[string]struct{}{}
	names := map[string]struct{}{}
	add := func(dir string) {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			dirs[filepath.Clean(dir)] = struct{}{}
		}
	}

	for _, p := range d.reg.List() {
		for _, root := range p.ConfigRoots {
			expanded := d.opts.Dirs.Expand(root)
			switch p.Format {
			case registry.FormatToolbox:
				add(expanded)
			default:
				// the parent sees new version dirs appear
				add(filepath.Dir(expanded))
				matches, _ := filepath.Glob(expanded)
				for _, m := range matches {
					add(filepath.Join(m, "options"))
				}
			}
		}
		name := p.File
		if name == "" {
			name = toolboxStateFile
		}
		names[name] = struct{}{}
	}

	return Targets{Dirs: sortedKeys(dirs), Names: sortedKeys(names)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
