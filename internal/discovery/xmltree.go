package discovery

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// element is a minimal DOM. The classic documents are small and their schema
// drifts between releases, so walking a generic tree is simpler than
// maintaining struct tags per variant.
type element struct {
	name     string
	attrs    map[string]string
	children []*element
}

func parseElement(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	var stack []*element
	var root *element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				el.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("failed to parse XML: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, errors.New("failed to parse XML: empty document")
	}
	return root, nil
}

func (e *element) attr(name string) string {
	if e == nil {
		return ""
	}
	return e.attrs[name]
}

// child returns the first direct child called name. Nil-safe so lookups chain.
func (e *element) child(name string) *element {
	if e == nil {
		return nil
	}
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (e *element) all(name string) []*element {
	if e == nil {
		return nil
	}
	var out []*element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// option returns the child <option name="..."/>.
func (e *element) option(name string) *element {
	if e == nil {
		return nil
	}
	for _, c := range e.children {
		if c.name == "option" && c.attrs["name"] == name {
			return c
		}
	}
	return nil
}
