package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrProductNotFound indicates the product ID doesn't exist
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateProduct indicates two descriptors share an ID
	ErrDuplicateProduct = errors.New("duplicate product")
	// ErrUnknownFormat indicates a descriptor with a format tag no parser handles
	ErrUnknownFormat = errors.New("unknown format")
	// ErrInvalidProduct indicates a descriptor missing required fields
	ErrInvalidProduct = errors.New("invalid product")
)

//go:embed products.yaml
var builtin []byte

// ids end up in result ids and scope names, so keep them to a safe alphabet
var validID = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Registry is the immutable set of known products, fixed at process start
type Registry struct {
	products map[string]*Product
	ordered  []*Product
}

// Default returns the built-in product registry
func Default() *Registry {
	r, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in product registry is invalid: %v", err))
	}
	return r
}

// Parse decodes and validates a registry document
func Parse(data []byte) (*Registry, error) {
	var doc RegistryData
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry: %w", err)
	}
	return New(doc.Products...)
}

// New builds a registry from descriptors
func New(products ...*Product) (*Registry, error) {
	r := &Registry{products: make(map[string]*Product, len(products))}
	for _, p := range products {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, ok := r.products[p.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProduct, p.ID)
		}
		r.products[p.ID] = p
		r.ordered = append(r.ordered, p)
	}

	sort.Slice(r.ordered, func(i, j int) bool {
		return r.ordered[i].ID < r.ordered[j].ID
	})
	return r, nil
}

func validate(p *Product) error {
	if p == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidProduct)
	}
	if !validID.MatchString(p.ID) {
		return fmt.Errorf("%w: id=%q", ErrInvalidProduct, p.ID)
	}
	if len(p.ConfigRoots) == 0 {
		return fmt.Errorf("%w: %s has no config roots", ErrInvalidProduct, p.ID)
	}
	switch p.Format {
	case FormatClassic:
		if strings.TrimSpace(p.File) == "" {
			return fmt.Errorf("%w: %s has no recent projects file", ErrInvalidProduct, p.ID)
		}
	case FormatToolbox:
		if len(p.Codes) == 0 {
			return fmt.Errorf("%w: %s has no product codes", ErrInvalidProduct, p.ID)
		}
	default:
		return fmt.Errorf("%w: %s uses %q", ErrUnknownFormat, p.ID, p.Format)
	}
	return nil
}

// Get returns the product with the given ID
func (r *Registry) Get(id string) (*Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

// List returns all products sorted by ID
func (r *Registry) List() []*Product {
	out := make([]*Product, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Without returns a registry lacking the given product IDs. Unknown IDs are
// ignored.
func (r *Registry) Without(ids ...string) *Registry {
	if len(ids) == 0 {
		return r
	}
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		skip[id] = true
	}

	out := &Registry{products: make(map[string]*Product, len(r.products))}
	for _, p := range r.ordered {
		if skip[p.ID] {
			continue
		}
		out.products[p.ID] = p
		out.ordered = append(out.ordered, p)
	}
	return out
}

// Len reports the number of products
func (r *Registry) Len() int { return len(r.ordered) }
