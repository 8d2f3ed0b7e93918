package compiler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/metadata"
	"github.com/roach88/opql/internal/operation"
	"github.com/roach88/opql/internal/parsetree"
)

// maxSuggestions bounds the "did you mean" list on unknown names.
const maxSuggestions = 3

// resolveAttribute walks attr.Path from root: every segment but the last
// must be a relationship, the last must be an attribute of the class in
// scope. Functions are then applied innermost first.
func (c *Compiler) resolveAttribute(root *metadata.Class, attr parsetree.Attribute) (operation.AttributeRef, error) {
	if err := checkQualifier(root, attr.Class); err != nil {
		return operation.AttributeRef{}, err
	}
	if len(attr.Path) == 0 {
		return operation.AttributeRef{}, &UnknownAttributeError{Class: root.Name, Valid: root.AttributeNames()}
	}

	path, scope, err := c.walkRelationships(root, attr.Path[:len(attr.Path)-1])
	if err != nil {
		return operation.AttributeRef{}, err
	}

	name := attr.Path[len(attr.Path)-1]
	resolved, ok := scope.Attribute(name)
	if !ok {
		valid := scope.AttributeNames()
		return operation.AttributeRef{}, &UnknownAttributeError{
			Class:       scope.Name,
			Name:        name,
			Valid:       valid,
			Suggestions: suggest(name, valid),
		}
	}

	ref := operation.AttributeRef{Path: path, Attribute: resolved, Type: resolved.Type}
	for _, fn := range attr.Functions {
		if ref, err = applyFunction(ref, fn); err != nil {
			return operation.AttributeRef{}, err
		}
	}
	return ref, nil
}

// resolveNavigation resolves a path made only of relationships and returns
// it with the class it reaches.
func (c *Compiler) resolveNavigation(root *metadata.Class, nav parsetree.Attribute) (operation.RelationshipRef, *metadata.Class, error) {
	if err := checkQualifier(root, nav.Class); err != nil {
		return operation.RelationshipRef{}, nil, err
	}
	if len(nav.Functions) > 0 {
		return operation.RelationshipRef{}, nil, &FunctionTypeError{
			Function: nav.Functions[0].Name,
			Detail:   "cannot be applied to a relationship navigation",
		}
	}
	if len(nav.Path) == 0 {
		return operation.RelationshipRef{}, nil, &UnknownRelationshipError{Class: root.Name, Valid: root.RelationshipNames()}
	}
	path, target, err := c.walkRelationships(root, nav.Path)
	if err != nil {
		return operation.RelationshipRef{}, nil, err
	}
	return operation.RelationshipRef{Path: path}, target, nil
}

// walkRelationships follows relationship names, switching the metadata
// scope at every hop.
func (c *Compiler) walkRelationships(root *metadata.Class, names []string) ([]*metadata.Relationship, *metadata.Class, error) {
	scope := root
	var path []*metadata.Relationship
	for _, name := range names {
		rel, ok := scope.Relationship(name)
		if !ok {
			valid := scope.RelationshipNames()
			return nil, nil, &UnknownRelationshipError{
				Class:       scope.Name,
				Name:        name,
				Valid:       valid,
				Suggestions: suggest(name, valid),
			}
		}
		next, ok := c.provider.Class(rel.Target)
		if !ok {
			return nil, nil, &UnknownClassError{Class: rel.Target}
		}
		path = append(path, rel)
		scope = next
	}
	return path, scope, nil
}

// checkQualifier accepts an empty qualifier, "this", or the class name.
func checkQualifier(cls *metadata.Class, qualifier string) error {
	if qualifier == "" || qualifier == "this" || qualifier == cls.Name {
		return nil
	}
	return &ClassMismatchError{Expected: cls.Name, Found: qualifier}
}

// applyFunction checks fn against the current value type and returns the
// reference with fn appended and its result type.
func applyFunction(ref operation.AttributeRef, call parsetree.FunctionCall) (operation.AttributeRef, error) {
	fn, ok := operation.ParseFunction(call.Name)
	if !ok {
		return ref, &UnknownFunctionError{Name: call.Name}
	}

	typeErr := func(accepts string) error {
		return &FunctionTypeError{
			Function:  string(fn),
			Attribute: ref.Attribute.Name,
			Type:      ref.Type,
			Accepts:   accepts,
		}
	}

	applied := operation.FunctionCall{Function: fn}
	if fn == operation.Substring {
		if len(call.Args) != 2 {
			return ref, &FunctionTypeError{
				Function: string(fn),
				Detail:   fmt.Sprintf("expects 2 arguments (start, end) but found %d", len(call.Args)),
			}
		}
		bounds := make([]int, 2)
		for i, arg := range call.Args {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return ref, &TypeError{Expected: ir.TypeInteger.String(), Found: arg}
			}
			bounds[i] = n
		}
		if bounds[0] < 0 || bounds[1] < bounds[0] {
			return ref, &FunctionTypeError{
				Function: string(fn),
				Detail:   fmt.Sprintf("bounds must satisfy 0 <= start <= end, got (%d, %d)", bounds[0], bounds[1]),
			}
		}
		applied.Start, applied.End = bounds[0], bounds[1]
	} else if len(call.Args) > 0 {
		return ref, &FunctionTypeError{
			Function: string(fn),
			Detail:   fmt.Sprintf("takes no arguments but found %d", len(call.Args)),
		}
	}

	result := ref.Type
	switch fn {
	case operation.ToLowerCase, operation.Substring:
		if ref.Type != ir.TypeString {
			return ref, typeErr("String")
		}
	case operation.Abs:
		if !ref.Type.Numeric() {
			return ref, typeErr("numeric")
		}
	case operation.Year, operation.Month, operation.DayOfMonth:
		if ref.Type != ir.TypeInstant && ref.Type != ir.TypeLocalDate {
			return ref, typeErr("Instant and LocalDate")
		}
		result = ir.TypeInteger
	}

	functions := make([]operation.FunctionCall, len(ref.Functions), len(ref.Functions)+1)
	copy(functions, ref.Functions)
	ref.Functions = append(functions, applied)
	ref.Type = result
	return ref, nil
}

// suggest returns up to maxSuggestions valid names close to name, closest
// first. A candidate qualifies when it is within edit distance 2 or
// contains name's characters in order, ignoring case.
func suggest(name string, valid []string) []string {
	type candidate struct {
		name     string
		distance int
	}
	lower := strings.ToLower(name)
	var candidates []candidate
	for _, v := range valid {
		d := fuzzy.LevenshteinDistance(lower, strings.ToLower(v))
		if d <= 2 || fuzzy.MatchFold(name, v) {
			candidates = append(candidates, candidate{name: v, distance: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].name < candidates[j].name
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]string, len(candidates))
	for i, cand := range candidates {
		out[i] = cand.name
	}
	return out
}
