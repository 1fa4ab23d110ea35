package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidID indicates a result id that does not name a product and an absolute path
var ErrInvalidID = errors.New("invalid result id")

// ID identifies a project within a product. It is the uniqueness key of a
// snapshot.
type ID struct {
	Product string
	Path    string
}

// String encodes the id as "<product>:<path>". Product ids never contain a
// colon, so the first colon always separates the two parts.
func (id ID) String() string {
	return id.Product + ":" + id.Path
}

// ParseID reverses ID.String.
func ParseID(s string) (ID, error) {
	product, path, ok := strings.Cut(s, ":")
	if !ok || product == "" || path == "" {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if !filepath.IsAbs(path) {
		return ID{}, fmt.Errorf("%w: %q has a relative path", ErrInvalidID, s)
	}
	return ID{Product: product, Path: path}, nil
}

// Less orders ids by product, then path.
func (id ID) Less(other ID) bool {
	if id.Product != other.Product {
		return id.Product < other.Product
	}
	return id.Path < other.Path
}

// Record is a normalized recent-project entry. Records are never modified
// after a parser creates them.
type Record struct {
	Product    string    `json:"product"`
	Path       string    `json:"path"`                  // Absolute project path
	Name       string    `json:"name"`                  // Display name
	LastOpened time.Time `json:"last_opened,omitempty"` // Zero when the source has none
	Branch     string    `json:"branch,omitempty"`      // Checked-out git branch, when recorded
	Executable string    `json:"executable,omitempty"`  // Launcher override from the source (toolbox)
}

// ID returns the record's identifier.
func (r *Record) ID() ID {
	return ID{Product: r.Product, Path: r.Path}
}

// DisplayName picks the explicit override when present, else the path basename.
func DisplayName(override, path string) string {
	if name := strings.TrimSpace(override); name != "" {
		return name
	}
	return filepath.Base(filepath.Clean(path))
}
