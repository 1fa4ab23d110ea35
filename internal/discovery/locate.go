package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/gurisko/jbsearch/internal/paths"
	"github.com/gurisko/jbsearch/internal/registry"
)

const toolboxStateFile = "state.json"

// versions are embedded in config dir names, e.g. IntelliJIdea2024.2
var versionRE = regexp.MustCompile(`(\d{1,4})\.(\d{1,2})`)

// Version of a classic config dir. Toolbox sources have the zero version.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v Version) less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// Source is one on-disk file that discovery reads for a product.
type Source struct {
	Product *registry.Product `json:"-"`
	Path    string            `json:"path"`
	Version Version           `json:"-"`
}

// parseVersion extracts the version from a config dir name.
func parseVersion(dir string) (Version, bool) {
	m := versionRE.FindStringSubmatch(filepath.Base(dir))
	if m == nil {
		return Version{}, false
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, false
	}
	return Version{Major: major, Minor: minor}, true
}

// Locate finds the source files of a product, oldest first. Classic products
// yield only the newest version dir unless allVersions is set. Missing files
// are not an error; they just produce no source.
func Locate(p *registry.Product, dirs paths.Dirs, allVersions bool) ([]Source, error) {
	switch p.Format {
	case registry.FormatClassic:
		return locateClassic(p, dirs, allVersions)
	case registry.FormatToolbox:
		return locateToolbox(p, dirs), nil
	default:
		return nil, fmt.Errorf("%w: %s uses %q", registry.ErrUnknownFormat, p.ID, p.Format)
	}
}

func locateClassic(p *registry.Product, dirs paths.Dirs, allVersions bool) ([]Source, error) {
	var found []Source
	for _, root := range p.ConfigRoots {
		matches, err := filepath.Glob(dirs.Expand(root))
		if err != nil {
			return nil, fmt.Errorf("bad config root %q for %s: %w", root, p.ID, err)
		}
		for _, dir := range matches {
			v, ok := parseVersion(dir)
			if !ok {
				continue
			}
			file := filepath.Join(dir, "options", p.File)
			if !isFile(file) {
				continue
			}
			found = append(found, Source{Product: p, Path: file, Version: v})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Version.less(found[j].Version)
	})
	if !allVersions && len(found) > 1 {
		found = found[len(found)-1:]
	}
	return found, nil
}

func locateToolbox(p *registry.Product, dirs paths.Dirs) []Source {
	name := p.File
	if name == "" {
		name = toolboxStateFile
	}
	var found []Source
	for _, root := range p.ConfigRoots {
		file := filepath.Join(dirs.Expand(root), name)
		if isFile(file) {
			found = append(found, Source{Product: p, Path: file})
		}
	}
	return found
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
