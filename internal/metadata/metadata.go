package metadata

import (
	"fmt"
	"sort"

	"github.com/ettle/strcase"

	"github.com/roach88/opql/internal/ir"
)

// Cardinality says whether a relationship navigates to one or many rows.
type Cardinality int

const (
	One Cardinality = iota + 1
	Many
)

func (c Cardinality) String() string {
	switch c {
	case One:
		return "one"
	case Many:
		return "many"
	default:
		return fmt.Sprintf("Cardinality(%d)", int(c))
	}
}

// ParseCardinality accepts "one" or "many".
func ParseCardinality(s string) (Cardinality, error) {
	switch s {
	case "one":
		return One, nil
	case "many":
		return Many, nil
	default:
		return 0, fmt.Errorf("invalid cardinality %q: must be one or many", s)
	}
}

// Attribute is a named, statically-typed field on a persistent class.
type Attribute struct {
	Class      string
	Name       string
	Type       ir.ValueType
	Column     string
	PrimaryKey bool
}

// AsOf reports whether the attribute is a temporal edge marker.
func (a *Attribute) AsOf() bool {
	return a.Type == ir.TypeAsOf
}

// Join names the attribute on the owning class and the attribute on the
// target class whose equality links related rows.
type Join struct {
	From string
	To   string
}

// Relationship is a navigable association from Class to Target.
type Relationship struct {
	Class       string
	Name        string
	Target      string
	Cardinality Cardinality
	Join        Join
}

// Class is a persistent class with its attributes and relationships in
// declaration order.
type Class struct {
	Name  string
	Table string

	attributes    []*Attribute
	relationships []*Relationship
	attrIndex     map[string]*Attribute
	relIndex      map[string]*Relationship
}

// Attribute looks up an attribute by name.
func (c *Class) Attribute(name string) (*Attribute, bool) {
	a, ok := c.attrIndex[name]
	return a, ok
}

// Relationship looks up a relationship by name.
func (c *Class) Relationship(name string) (*Relationship, bool) {
	r, ok := c.relIndex[name]
	return r, ok
}

// Attributes returns the class attributes in declaration order.
func (c *Class) Attributes() []*Attribute {
	out := make([]*Attribute, len(c.attributes))
	copy(out, c.attributes)
	return out
}

// Relationships returns the class relationships in declaration order.
func (c *Class) Relationships() []*Relationship {
	out := make([]*Relationship, len(c.relationships))
	copy(out, c.relationships)
	return out
}

// AttributeNames returns attribute names in declaration order.
func (c *Class) AttributeNames() []string {
	names := make([]string, len(c.attributes))
	for i, a := range c.attributes {
		names[i] = a.Name
	}
	return names
}

// RelationshipNames returns relationship names in declaration order.
func (c *Class) RelationshipNames() []string {
	names := make([]string, len(c.relationships))
	for i, r := range c.relationships {
		names[i] = r.Name
	}
	return names
}

// PrimaryKey returns the primary key attribute. Validated catalogs
// guarantee exactly one per class.
func (c *Class) PrimaryKey() *Attribute {
	for _, a := range c.attributes {
		if a.PrimaryKey {
			return a
		}
	}
	return nil
}

// Provider resolves class names to metadata. Implementations must be safe
// for concurrent reads.
type Provider interface {
	Class(name string) (*Class, bool)
}

// Catalog is an immutable, validated set of classes.
type Catalog struct {
	classes map[string]*Class
	names   []string
}

var _ Provider = (*Catalog)(nil)

// Class looks up a class by name.
func (c *Catalog) Class(name string) (*Class, bool) {
	cls, ok := c.classes[name]
	return cls, ok
}

// Classes returns all classes sorted by name.
func (c *Catalog) Classes() []*Class {
	out := make([]*Class, len(c.names))
	for i, name := range c.names {
		out[i] = c.classes[name]
	}
	return out
}

// ClassSpec is the unvalidated description of a class.
type ClassSpec struct {
	Name          string
	Table         string
	Attributes    []AttributeSpec
	Relationships []RelationshipSpec
}

// AttributeSpec describes one attribute. Column defaults to the snake_case
// form of Name.
type AttributeSpec struct {
	Name       string
	Type       ir.ValueType
	Column     string
	PrimaryKey bool
}

// RelationshipSpec describes one relationship. Cardinality defaults to One.
type RelationshipSpec struct {
	Name        string
	Target      string
	Cardinality Cardinality
	From        string
	To          string
}

// NewCatalog validates specs and builds an immutable Catalog.
// All validation problems are reported together in a *SchemaError.
func NewCatalog(specs ...ClassSpec) (*Catalog, error) {
	if errs := Validate(specs); len(errs) > 0 {
		return nil, &SchemaError{Errors: errs}
	}

	cat := &Catalog{classes: make(map[string]*Class, len(specs))}
	for _, spec := range specs {
		cls := &Class{
			Name:      spec.Name,
			Table:     spec.Table,
			attrIndex: make(map[string]*Attribute, len(spec.Attributes)),
			relIndex:  make(map[string]*Relationship, len(spec.Relationships)),
		}
		if cls.Table == "" {
			cls.Table = strcase.ToSnake(spec.Name)
		}
		for _, as := range spec.Attributes {
			attr := &Attribute{
				Class:      spec.Name,
				Name:       as.Name,
				Type:       as.Type,
				Column:     as.Column,
				PrimaryKey: as.PrimaryKey,
			}
			if attr.Column == "" {
				attr.Column = strcase.ToSnake(as.Name)
			}
			cls.attributes = append(cls.attributes, attr)
			cls.attrIndex[attr.Name] = attr
		}
		for _, rs := range spec.Relationships {
			rel := &Relationship{
				Class:       spec.Name,
				Name:        rs.Name,
				Target:      rs.Target,
				Cardinality: rs.Cardinality,
				Join:        Join{From: rs.From, To: rs.To},
			}
			if rel.Cardinality == 0 {
				rel.Cardinality = One
			}
			cls.relationships = append(cls.relationships, rel)
			cls.relIndex[rel.Name] = rel
		}
		cat.classes[cls.Name] = cls
		cat.names = append(cat.names, cls.Name)
	}
	sort.Strings(cat.names)
	return cat, nil
}
