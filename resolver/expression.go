package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Delimiter joins the parts of a composite subgenre expression.
type Delimiter string

const (
	// Then separates subgenres that follow one another in a track.
	Then Delimiter = ">"
	// With separates subgenres that occur together.
	With Delimiter = "|"
	// Tilde is the third grouping found in the catalog; it is carried through
	// unchanged.
	Tilde Delimiter = "~"
)

// IsDelimiter reports whether s is one of the delimiter tokens.
func IsDelimiter(s string) bool {
	switch Delimiter(s) {
	case Then, With, Tilde:
		return true
	}
	return false
}

// Expression is a parsed subgenre expression: a Leaf or a Group.
type Expression interface {
	expression()
}

// Leaf names one subgenre.
type Leaf struct {
	Name string
}

// Group joins two or more expressions with one delimiter. The root of an
// empty expression is a Group without children.
type Group struct {
	Kind     Delimiter
	Children []Expression
}

func (Leaf) expression()  {}
func (Group) expression() {}

// ParseExpression decodes the stored JSON form: a subgenre name, or an array
// alternating items and delimiter tokens where items are names or nested
// arrays. An array mixing delimiter kinds is split on the first kind it
// contains, and the runs between those delimiters become nested groups, so
// element order is always preserved.
func ParseExpression(data []byte) (Expression, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("subgenre expression: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("subgenre expression: trailing data")
	}

	if list, ok := raw.([]any); ok && len(list) == 0 {
		return Group{Kind: Then}, nil
	}
	return parseNode(raw)
}

func parseNode(raw any) (Expression, error) {
	switch v := raw.(type) {
	case string:
		if IsDelimiter(v) {
			return nil, fmt.Errorf("subgenre expression: delimiter %q where a subgenre was expected", v)
		}
		return Leaf{Name: v}, nil
	case []any:
		return parseArray(v)
	}
	return nil, fmt.Errorf("subgenre expression: unexpected %T", raw)
}

func parseArray(list []any) (Expression, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("subgenre expression: empty group")
	}
	if len(list)%2 == 0 {
		return nil, fmt.Errorf("subgenre expression: group of %d elements does not alternate items and delimiters", len(list))
	}

	items := make([]Expression, 0, len(list)/2+1)
	delims := make([]Delimiter, 0, len(list)/2)
	for i, element := range list {
		if i%2 == 1 {
			s, ok := element.(string)
			if !ok || !IsDelimiter(s) {
				return nil, fmt.Errorf("subgenre expression: expected a delimiter at position %d, got %v", i, element)
			}
			delims = append(delims, Delimiter(s))
			continue
		}
		item, err := parseNode(element)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if len(items) == 1 {
		return items[0], nil
	}
	return group(items, delims), nil
}

// group builds the tree for items joined by delims, len(delims) == len(items)-1.
func group(items []Expression, delims []Delimiter) Expression {
	if len(items) == 1 {
		return items[0]
	}

	kind := delims[0]
	g := Group{Kind: kind}
	start := 0
	for i, d := range delims {
		if d != kind {
			continue
		}
		g.Children = append(g.Children, group(items[start:i+1], delims[start:i]))
		start = i + 1
	}
	g.Children = append(g.Children, group(items[start:], delims[start:]))
	return g
}

// Flatten lists the subgenre names of e in order with the delimiter of each
// enclosing group between neighbours. Names and delimiters alternate. The
// grouping itself is not recoverable from the result.
func Flatten(e Expression) []string {
	out := []string{}
	var walk func(Expression)
	walk = func(e Expression) {
		switch v := e.(type) {
		case Leaf:
			out = append(out, v.Name)
		case Group:
			for i, child := range v.Children {
				if i > 0 {
					out = append(out, string(v.Kind))
				}
				walk(child)
			}
		}
	}
	walk(e)
	return out
}

// Format renders e with parentheses around nested groups.
func Format(e Expression) string {
	switch v := e.(type) {
	case Leaf:
		return v.Name
	case Group:
		parts := make([]string, len(v.Children))
		for i, child := range v.Children {
			parts[i] = Format(child)
			if _, nested := child.(Group); nested {
				parts[i] = "(" + parts[i] + ")"
			}
		}
		return strings.Join(parts, " "+string(v.Kind)+" ")
	}
	return ""
}
