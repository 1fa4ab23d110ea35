package discovery

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gurisko/jbsearch/internal/catalog"
)

const userHomeMacro = "$USER_HOME$"

// component names that have held the recent projects list over the years
var recentComponents = map[string]bool{
	"RecentProjectsManager":          true,
	"RiderRecentProjectsManager":     true,
	"RecentDirectoryProjectsManager": true,
}

// classicVariant extracts entries from one schema generation. ok is false
// when the component does not use that generation at all.
type classicVariant func(comp *element, home string) (entries []entry, ok bool)

// read in order and merged; a path already listed by an earlier variant
// keeps the earlier, richer entry
var classicVariants = []classicVariant{
	additionalInfoVariant,
	recentPathsVariant,
	openPathsVariant,
}

// entry is a parsed recent project before it is attributed to a product.
type entry struct {
	path       string
	name       string
	lastOpened time.Time
	executable string
}

// parseClassic reads a recentProjects.xml / recentSolutions.xml document.
// Entries that are malformed are skipped; the returned count says how many.
func parseClassic(r io.Reader, home string) ([]entry, int, error) {
	root, err := parseElement(r)
	if err != nil {
		return nil, 0, err
	}

	components := root.all("component")
	if root.name == "component" {
		components = []*element{root}
	}

	var out []entry
	skipped := 0
	for _, comp := range components {
		if !recentComponents[comp.attr("name")] {
			continue
		}
		claimed := make(map[string]bool)
		for _, variant := range classicVariants {
			entries, ok := variant(comp, home)
			if !ok {
				continue
			}
			var paths []string
			for _, e := range entries {
				if e.path == "" || !filepath.IsAbs(e.path) {
					skipped++
					continue
				}
				if claimed[e.path] {
					continue
				}
				out = append(out, e)
				paths = append(paths, e.path)
			}
			for _, p := range paths {
				claimed[p] = true
			}
		}
	}
	return out, skipped, nil
}

func expandHome(p, home string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, userHomeMacro, home))
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// <option name="additionalInfo"><map><entry key="$USER_HOME$/proj"><value><RecentProjectMetaInfo .../>
func additionalInfoVariant(comp *element, home string) ([]entry, bool) {
	m := comp.option("additionalInfo").child("map")
	if m == nil {
		return nil, false
	}

	var out []entry
	for _, e := range m.all("entry") {
		meta := e.child("value").child("RecentProjectMetaInfo")
		out = append(out, entry{
			path:       expandHome(e.attr("key"), home),
			name:       metaDisplayName(meta),
			lastOpened: metaTimestamp(meta),
		})
	}
	return out, true
}

func metaDisplayName(meta *element) string {
	if name := meta.attr("displayName"); name != "" {
		return name
	}
	return meta.option("displayName").attr("value")
}

func metaTimestamp(meta *element) time.Time {
	for _, key := range []string{"projectOpenTimestamp", "activationTimestamp"} {
		raw := meta.option(key).attr("value")
		if raw == "" {
			continue
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			continue
		}
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

// <option name="recentPaths"><list><option value="..."/></list></option>
// with names from <option name="names"><map><entry key="path" value="name"/>
func recentPathsVariant(comp *element, home string) ([]entry, bool) {
	list := comp.option("recentPaths").child("list")
	if list == nil {
		return nil, false
	}

	names := make(map[string]string)
	for _, e := range comp.option("names").child("map").all("entry") {
		names[expandHome(e.attr("key"), home)] = e.attr("value")
	}

	var out []entry
	for _, o := range list.all("option") {
		p := expandHome(o.attr("value"), home)
		out = append(out, entry{path: p, name: names[p]})
	}
	return out, true
}

// <option name="openPaths"><list><option value="..."/></list></option>
func openPathsVariant(comp *element, home string) ([]entry, bool) {
	list := comp.option("openPaths").child("list")
	if list == nil {
		return nil, false
	}

	var out []entry
	for _, o := range list.all("option") {
		out = append(out, entry{path: expandHome(o.attr("value"), home)})
	}
	return out, true
}

func (e entry) record(product string) catalog.Record {
	return catalog.Record{
		Product:    product,
		Path:       e.path,
		Name:       e.name,
		LastOpened: e.lastOpened,
		Executable: e.executable,
	}
}
