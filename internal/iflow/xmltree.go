package iflow

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const (
	NamespaceBPMN = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	NamespaceIFL  = "http:///com.sap.ifl.model/Ifl.xsd"
)

// readError marks a failure of the underlying reader as opposed to a syntax error.
type readError struct {
	err error
}

func (e *readError) Error() string { return e.err.Error() }

func (e *readError) Unwrap() error { return e.err }

type element struct {
	name     xml.Name
	attrs    map[string]string
	children []*element
	text     strings.Builder
}

func parseTree(r io.Reader) (*element, error) {
	decoder := xml.NewDecoder(r)

	var root *element
	var stack []*element
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return nil, err
			}
			return nil, &readError{err: err}
		}

		switch t := token.(type) {
		case xml.StartElement:
			el := &element{name: t.Name, attrs: make(map[string]string, len(t.Attr))}
			for _, attr := range t.Attr {
				if attr.Name.Space == "" {
					el.attrs[attr.Name.Local] = attr.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root, nil
}

func (e *element) is(space, local string) bool {
	return e.name.Space == space && e.name.Local == local
}

func (e *element) attr(name string) string {
	return e.attrs[name]
}

func (e *element) content() string {
	return strings.TrimSpace(e.text.String())
}

// walk visits every descendant in document order together with its ancestor chain,
// nearest ancestor last.
func (e *element) walk(fn func(el *element, ancestors []*element)) {
	var visit func(el *element, ancestors []*element)
	visit = func(el *element, ancestors []*element) {
		next := append(ancestors, el)
		for _, child := range el.children {
			fn(child, next)
			visit(child, next)
		}
	}
	visit(e, nil)
}

// find returns the first descendant with the given name.
func (e *element) find(space, local string) *element {
	for _, child := range e.children {
		if child.is(space, local) {
			return child
		}
		if found := child.find(space, local); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant with the given name in document order.
func (e *element) findAll(space, local string) []*element {
	var out []*element
	e.walk(func(el *element, _ []*element) {
		if el.is(space, local) {
			out = append(out, el)
		}
	})
	return out
}

// childByLocal returns the first direct child with the given local name in any namespace.
func (e *element) childByLocal(local string) *element {
	for _, child := range e.children {
		if child.name.Local == local {
			return child
		}
	}
	return nil
}
