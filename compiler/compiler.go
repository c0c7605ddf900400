// Package compiler builds compiled dmap.Map trees from a validated
// definitions.Tree (§4.E "Map Compiler"). Compilation happens once per
// definition; the resulting Maps are immutable and safe to reuse
// across many decode/encode calls.
package compiler

import (
	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/dmap"
	"github.com/libyal/dtfabric-go/errors"
	"github.com/libyal/dtfabric-go/expr"
)

// Compiler turns definitions.Definition nodes into dmap.Map instances.
// Maps built through Compile are cached by definition name, and
// storage types whose byte order is propagated down from an enclosing
// structure are cached by name+byte-order. Other member and element
// types are built afresh for each reference.
type Compiler struct {
	tree        *definitions.Tree
	byName      map[string]dmap.Map
	byNameOrder map[string]dmap.Map
	building    map[string]bool
}

// New constructs a Compiler over tree. Compile looks up top-level
// definitions in tree by name; a member's DataType must already be
// resolved, and a member without one is a FormatError.
func New(tree *definitions.Tree) *Compiler {
	return &Compiler{
		tree:        tree,
		byName:      map[string]dmap.Map{},
		byNameOrder: map[string]dmap.Map{},
		building:    map[string]bool{},
	}
}

// Compile builds (or returns the cached) Map for the named top-level
// definition.
func (c *Compiler) Compile(name string) (dmap.Map, error) {
	if cached, ok := c.byName[name]; ok {
		return cached, nil
	}
	def, ok := c.tree.ByName(name)
	if !ok {
		return nil, errors.NewFormatError(name, "no definition with this name")
	}
	return c.compileDefinition(def)
}

// CompileAll compiles every top-level definition in the tree,
// returning the first error encountered (in name-sorted order, for
// deterministic CLI output) alongside however many Maps built
// successfully before it.
func (c *Compiler) CompileAll() (map[string]dmap.Map, error) {
	out := map[string]dmap.Map{}
	for _, name := range c.tree.Names() {
		m, err := c.Compile(name)
		if err != nil {
			return out, err
		}
		out[name] = m
	}
	return out, nil
}

func (c *Compiler) compileDefinition(def definitions.Definition) (dmap.Map, error) {
	if c.building[def.Name()] {
		return nil, errors.NewFormatError(def.Name(), "definition is part of a reference cycle")
	}
	c.building[def.Name()] = true
	defer delete(c.building, def.Name())

	m, err := c.build(def)
	if err != nil {
		return nil, err
	}
	if def.Name() != "" {
		c.byName[def.Name()] = m
	}
	return m, nil
}

func (c *Compiler) build(def definitions.Definition) (dmap.Map, error) {
	switch d := def.(type) {
	case *definitions.BooleanDefinition:
		return dmap.NewBooleanMap(d)
	case *definitions.CharacterDefinition:
		return dmap.NewCharacterMap(d)
	case *definitions.IntegerDefinition:
		return dmap.NewIntegerMap(d)
	case *definitions.FloatingPointDefinition:
		return dmap.NewFloatMap(d)
	case *definitions.UUIDDefinition:
		return dmap.NewUUIDMap(d), nil
	case *definitions.PaddingDefinition:
		return dmap.NewPaddingMap(d), nil
	case *definitions.ConstantDefinition:
		return dmap.NewConstantMap(d), nil
	case *definitions.EnumerationDefinition:
		return c.buildEnumeration(d)
	case *definitions.SequenceDefinition:
		return c.buildSequence(d)
	case *definitions.StreamDefinition:
		return c.buildStream(d)
	case *definitions.StringDefinition:
		return c.buildString(d)
	case *definitions.StructureDefinition:
		return c.buildStructure(d)
	case *definitions.UnionDefinition:
		return c.buildUnion(d)
	case *definitions.StructureGroupDefinition:
		return c.buildGroup(d)
	case *definitions.FormatDefinition:
		return dmap.NewInertMap(d), nil
	case *definitions.StructureFamilyDefinition:
		return dmap.NewInertMap(d), nil
	default:
		return nil, errors.NewFormatError(def.Name(), "unsupported definition type")
	}
}

// compileElementType compiles the shared element type of a sequence/
// stream/string definition, without going through the top-level
// name cache (element types are frequently anonymous inline integers
// or characters, not separately registered definitions).
func (c *Compiler) compileElementType(element definitions.Definition) (dmap.Map, error) {
	return c.build(element)
}

func (c *Compiler) buildEnumeration(def *definitions.EnumerationDefinition) (dmap.Map, error) {
	// An enumeration has no declared storage width of its own; its
	// underlying integer type is looked up in the tree under
	// "<name>_value" (the reader does not add one itself), matching how
	// the Python runtime keeps the numeric storage type separate from
	// the name table. Compilers that see no such companion fall back
	// to a 4-byte unsigned integer, the runtime's documented default.
	valueDef, ok := c.tree.ByName(def.Name() + "_value")
	if !ok {
		valueDef = definitions.NewInteger(
			definitions.NewBase(def.Name()+"_value", nil, "", nil), 4, definitions.IntegerFormatUnsigned)
	}
	valueMap, err := c.build(valueDef)
	if err != nil {
		return nil, err
	}
	return dmap.NewEnumerationMap(def, valueMap), nil
}

func (c *Compiler) buildSequence(def *definitions.SequenceDefinition) (dmap.Map, error) {
	elementMap, sizeExpr, countExpr, err := c.buildElementSequence(def.Name(), def.ElementSequence)
	if err != nil {
		return nil, err
	}
	core := dmap.NewSequenceCore(def.Name(), elementMap, def.ElementSequence, sizeExpr, countExpr)
	return dmap.NewSequenceMap(def, core), nil
}

func (c *Compiler) buildStream(def *definitions.StreamDefinition) (dmap.Map, error) {
	elementMap, sizeExpr, countExpr, err := c.buildElementSequence(def.Name(), def.ElementSequence)
	if err != nil {
		return nil, err
	}
	core := dmap.NewSequenceCore(def.Name(), elementMap, def.ElementSequence, sizeExpr, countExpr)
	return dmap.NewStreamMap(def, core)
}

func (c *Compiler) buildString(def *definitions.StringDefinition) (dmap.Map, error) {
	elementMap, sizeExpr, countExpr, err := c.buildElementSequence(def.Name(), def.ElementSequence)
	if err != nil {
		return nil, err
	}
	core := dmap.NewSequenceCore(def.Name(), elementMap, def.ElementSequence, sizeExpr, countExpr)
	codec, err := dmap.CodecFor(def.Encoding)
	if err != nil {
		return nil, err
	}
	return dmap.NewStringMap(def, core, codec)
}

// buildElementSequence compiles the one element type shared by a
// Sequence/Stream/String and parses its data-size/element-count
// expressions, returning the pieces dmap.NewSequenceCore needs.
func (c *Compiler) buildElementSequence(name string, es definitions.ElementSequence) (dmap.Map, *expr.Expr, *expr.Expr, error) {
	if es.ElementDataType == nil {
		return nil, nil, nil, errors.NewFormatError(name, "element sequence has no element data type")
	}
	elementMap, err := c.compileElementType(es.ElementDataType)
	if err != nil {
		return nil, nil, nil, err
	}
	var sizeExpr, countExpr *expr.Expr
	if es.ElementsDataSizeExpression != "" {
		sizeExpr, err = expr.Parse(es.ElementsDataSizeExpression)
		if err != nil {
			return nil, nil, nil, errors.WrapFormatError(name, "unable to parse elements_data_size expression", err)
		}
	}
	if es.NumberOfElementsExpression != "" {
		countExpr, err = expr.Parse(es.NumberOfElementsExpression)
		if err != nil {
			return nil, nil, nil, errors.WrapFormatError(name, "unable to parse number_of_elements expression", err)
		}
	}
	return elementMap, sizeExpr, countExpr, nil
}

func (c *Compiler) buildStructure(def *definitions.StructureDefinition) (dmap.Map, error) {
	plans, err := c.buildMemberPlans(def.Name(), def.Members(), def.ByteOrder())
	if err != nil {
		return nil, err
	}
	return dmap.NewStructureMap(def, plans), nil
}

func (c *Compiler) buildUnion(def *definitions.UnionDefinition) (dmap.Map, error) {
	plans, err := c.buildMemberPlans(def.Name(), def.Members(), def.ByteOrder())
	if err != nil {
		return nil, err
	}
	return dmap.NewUnionMap(def, plans), nil
}

func (c *Compiler) buildMemberPlans(structName string, members []*definitions.Member, structOrder definitions.ByteOrder) ([]dmap.MemberPlan, error) {
	plans := make([]dmap.MemberPlan, 0, len(members))
	for _, member := range members {
		dataMap, err := c.compileMember(structOrder, member)
		if err != nil {
			return nil, err
		}
		var condition *expr.Expr
		if member.Condition != "" {
			condition, err = expr.Parse(member.Condition)
			if err != nil {
				return nil, errors.WrapFormatError(definitions.FormatName(structName, member.MemberName), "unable to parse condition expression", err)
			}
		}
		plans = append(plans, dmap.NewMemberPlan(member, dataMap, condition))
	}
	return plans, nil
}

func (c *Compiler) buildGroup(def *definitions.StructureGroupDefinition) (dmap.Map, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	baseBuilt, err := c.build(def.BaseStructure)
	if err != nil {
		return nil, err
	}
	baseMap, ok := baseBuilt.(*dmap.StructureMap)
	if !ok {
		return nil, errors.NewFormatError(def.Name(), "structure group's base is not a structure")
	}

	variants := map[any]*dmap.StructureMap{}
	for _, variant := range def.Variants {
		built, err := c.build(variant)
		if err != nil {
			return nil, err
		}
		variantMap, ok := built.(*dmap.StructureMap)
		if !ok {
			return nil, errors.NewFormatError(variant.Name(), "structure-group variant is not a structure")
		}
		member, _ := variant.MemberByName(def.Identifier)
		for _, value := range member.Values {
			variants[value] = variantMap
		}
	}

	return dmap.NewGroupMap(def, baseMap, variants), nil
}

// compileMember builds a member's data-type Map, propagating the
// enclosing structure's byte order onto a "native"-ordered storage
// member per invariant 3. It never mutates the shared definition:
// when propagation applies it compiles a renamed shallow copy instead,
// cached separately by name+order so repeated occurrences of the same
// shared type under the same effective order are only built once.
func (c *Compiler) compileMember(structOrder definitions.ByteOrder, member *definitions.Member) (dmap.Map, error) {
	dt := member.DataType
	if dt == nil {
		return nil, errors.NewFormatError(member.MemberName, "member has no data type")
	}

	orderable, ok := dt.(orderedDefinition)
	if !ok || orderable.ByteOrder() != definitions.ByteOrderNative || structOrder == definitions.ByteOrderNative {
		return c.build(dt)
	}

	key := dt.Name() + "|" + string(structOrder)
	if cached, ok := c.byNameOrder[key]; ok {
		return cached, nil
	}
	clone := cloneWithByteOrder(dt, structOrder)
	built, err := c.build(clone)
	if err != nil {
		return nil, err
	}
	c.byNameOrder[key] = built
	return built, nil
}

// orderedDefinition is implemented by every Storage-embedding
// definition.
type orderedDefinition interface {
	ByteOrder() definitions.ByteOrder
}

// cloneWithByteOrder returns a shallow copy of a storage-type
// definition with its byte order set to order, for the five concrete
// types that can appear as a "native"-ordered scalar member (§4.E).
// Any other type is returned unchanged: byte order propagation only
// ever applies to scalar storage members, never to composite types,
// whose own declared order (or their element's) already governs them.
func cloneWithByteOrder(def definitions.Definition, order definitions.ByteOrder) definitions.Definition {
	switch d := def.(type) {
	case *definitions.BooleanDefinition:
		clone := *d
		clone.SetByteOrder(order)
		return &clone
	case *definitions.CharacterDefinition:
		clone := *d
		clone.SetByteOrder(order)
		return &clone
	case *definitions.IntegerDefinition:
		clone := *d
		clone.SetByteOrder(order)
		return &clone
	case *definitions.FloatingPointDefinition:
		clone := *d
		clone.SetByteOrder(order)
		return &clone
	case *definitions.UUIDDefinition:
		clone := *d
		clone.SetByteOrder(order)
		return &clone
	default:
		return def
	}
}
