// Package reader parses a restricted YAML document — one document per
// definitions file, itself a stream of `---`-separated top-level
// mappings — into a definitions.Tree (§4.J). Each top-level entry
// decodes through a yaml.Node intermediate rather than a fixed Go
// struct, so that an unrecognized per-type attribute can be rejected
// with the offending node's line and column, the same way the teacher
// threads source locations through its own parser.
package reader

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
)

// ReadFile opens path and reads every definition document in it.
func ReadFile(path string) (*definitions.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDefinitionReaderError(path, err.Error(), 0, 0)
	}
	defer f.Close()
	return Read(f)
}

// Read parses every YAML document in r, in stream order, into a
// definitions.Tree. A definition may reference, by name, any
// definition that appears earlier in the stream — forward references
// are not supported, matching the convention that a dtfabric
// definitions file declares primitive types before the structures
// that use them.
func Read(r io.Reader) (*definitions.Tree, error) {
	dec := yaml.NewDecoder(r)
	rd := &reader{tree: definitions.NewTree(), byName: map[string]definitions.Definition{}}

	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewDefinitionReaderError("", "invalid YAML: "+err.Error(), 0, 0)
		}
		if err := rd.readDocument(&doc); err != nil {
			return nil, err
		}
	}
	return rd.tree, nil
}

type reader struct {
	tree   *definitions.Tree
	byName map[string]definitions.Definition
}

func (rd *reader) readDocument(doc *yaml.Node) error {
	node := doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return errors.NewDefinitionReaderError("", "a definition document must be a mapping", node.Line, node.Column)
	}

	name, err := requiredString(node, "name")
	if err != nil {
		return err
	}
	typeIndicator, err := requiredString(node, "type")
	if err != nil {
		return err
	}

	def, err := rd.build(name, node, typeIndicator)
	if err != nil {
		return err
	}
	if err := rd.tree.Add(def); err != nil {
		return wrapBuildError(name, node, err)
	}
	rd.byName[name] = def
	return nil
}

// build constructs one Definition from node, whose "name" and "type"
// fields have already been validated by the caller when node is a
// top-level document entry. Inline (anonymous) member data types reach
// this function too, with name set to the owning member's name.
func (rd *reader) build(name string, node *yaml.Node, typeIndicator string) (definitions.Definition, error) {
	aliases := stringListAttr(node, "aliases")
	description := optionalString(node, "description", "")
	urls := stringListAttr(node, "urls")
	base := definitions.NewBase(name, aliases, description, urls)

	attrs := field(node, "attributes")
	ti := definitions.TypeIndicator(typeIndicator)
	if err := validateAttributeKeys(node, ti, attrs); err != nil {
		return nil, err
	}

	switch ti {
	case definitions.TypeBoolean:
		size := intAttr(attrs, "size", 1)
		def := definitions.NewBoolean(base, size)
		if v, ok := int64Attr(attrs, "true_value"); ok {
			def.TrueValue = &v
		}
		if v, ok := int64Attr(attrs, "false_value"); ok {
			def.FalseValue = &v
		}
		setByteOrder(def, attrs)
		return def, nil

	case definitions.TypeCharacter:
		def := definitions.NewCharacter(base, intAttr(attrs, "size", 1))
		setByteOrder(def, attrs)
		return def, nil

	case definitions.TypeInteger:
		format := definitions.IntegerFormat(optionalString(attrs, "format", ""))
		def := definitions.NewInteger(base, intAttr(attrs, "size", 4), format)
		if v, ok := int64Attr(attrs, "minimum_value"); ok {
			def.MinimumValue = &v
		}
		if v, ok := int64Attr(attrs, "maximum_value"); ok {
			def.MaximumValue = &v
		}
		def.Values = int64ListAttr(attrs, "values")
		if err := def.Validate(); err != nil {
			return nil, err
		}
		setByteOrder(def, attrs)
		return def, nil

	case definitions.TypeFloatingPoint:
		def := definitions.NewFloatingPoint(base, intAttr(attrs, "size", 4))
		if err := def.Validate(); err != nil {
			return nil, err
		}
		setByteOrder(def, attrs)
		return def, nil

	case definitions.TypeUUID:
		def := definitions.NewUUID(base)
		setByteOrder(def, attrs)
		return def, nil

	case definitions.TypePadding:
		return definitions.NewPadding(base, intAttr(attrs, "alignment_size", 8)), nil

	case definitions.TypeConstant:
		value, _ := int64Attr(attrs, "value")
		return definitions.NewConstant(base, value), nil

	case definitions.TypeEnumeration:
		return rd.buildEnumeration(base, node)

	case definitions.TypeSequence, definitions.TypeStream, definitions.TypeString:
		return rd.buildElementSequence(base, name, node, attrs, ti)

	case definitions.TypeStructure:
		return rd.buildStructure(base, name, node, attrs)

	case definitions.TypeUnion:
		return rd.buildUnion(base, name, node, attrs)

	case definitions.TypeFormat:
		return definitions.NewFormat(base), nil

	case definitions.TypeStructureFamily:
		return rd.buildStructureFamily(base, name, node)

	case definitions.TypeStructureGroup:
		return rd.buildStructureGroup(base, name, node)

	default:
		return nil, errors.NewDefinitionReaderError(name, "unknown type indicator: "+typeIndicator, node.Line, node.Column)
	}
}

func (rd *reader) buildEnumeration(base definitions.Base, node *yaml.Node) (definitions.Definition, error) {
	def := definitions.NewEnumeration(base)
	values := field(node, "values")
	if values == nil {
		return def, nil
	}
	for _, entry := range values.Content {
		entryName, err := requiredString(entry, "name")
		if err != nil {
			return nil, err
		}
		number, ok := int64Attr(entry, "number")
		if !ok {
			return nil, errors.NewDefinitionReaderError(entryName, "enumeration value is missing number", entry.Line, entry.Column)
		}
		def.AddValue(definitions.EnumerationValue{
			Name:        entryName,
			Number:      number,
			Description: optionalString(entry, "description", ""),
		})
	}
	return def, nil
}

func (rd *reader) buildElementSequence(base definitions.Base, name string, node, attrs *yaml.Node, ti definitions.TypeIndicator) (definitions.Definition, error) {
	elementNode := field(attrs, "element_data_type")
	if elementNode == nil {
		return nil, errors.NewDefinitionReaderError(name, "missing attributes.element_data_type", node.Line, node.Column)
	}
	element, err := rd.resolveDataType(name, "element_data_type", elementNode)
	if err != nil {
		return nil, err
	}

	var def definitions.Definition
	switch ti {
	case definitions.TypeSequence:
		def = definitions.NewSequence(base, element)
	case definitions.TypeStream:
		def = definitions.NewStream(base, element)
	case definitions.TypeString:
		encoding := definitions.StringEncoding(optionalString(attrs, "encoding", ""))
		def = definitions.NewString(base, element, encoding)
	}

	applyElementSequenceAttrs(def, attrs)
	setByteOrder(def, attrs)
	return def, nil
}

func (rd *reader) buildStructure(base definitions.Base, name string, node, attrs *yaml.Node) (definitions.Definition, error) {
	def := definitions.NewStructure(base)
	setByteOrder(def, attrs)
	if err := rd.addMembers(def, name, node); err != nil {
		return nil, err
	}
	return def, nil
}

func (rd *reader) buildUnion(base definitions.Base, name string, node, attrs *yaml.Node) (definitions.Definition, error) {
	def := definitions.NewUnion(base)
	setByteOrder(def, attrs)
	if err := rd.addMembers(def, name, node); err != nil {
		return nil, err
	}
	return def, nil
}

// membersAdder is implemented by *definitions.StructureDefinition and
// *definitions.UnionDefinition.
type membersAdder interface {
	AddMember(*definitions.Member) error
}

func (rd *reader) addMembers(def membersAdder, structName string, node *yaml.Node) error {
	members := field(node, "members")
	if members == nil {
		return errors.NewDefinitionReaderError(structName, "missing members", node.Line, node.Column)
	}
	for _, m := range members.Content {
		memberName, err := requiredString(m, "name")
		if err != nil {
			return err
		}
		dtNode := field(m, "data_type")
		if dtNode == nil {
			return errors.NewDefinitionReaderError(definitions.FormatName(structName, memberName), "missing data_type", m.Line, m.Column)
		}
		dataType, err := rd.resolveDataType(structName, memberName, dtNode)
		if err != nil {
			return err
		}
		member := &definitions.Member{
			MemberName: memberName,
			DataType:   dataType,
			Condition:  optionalString(m, "condition", ""),
			Values:     anyListAttr(m, "values"),
		}
		if err := def.AddMember(member); err != nil {
			return errors.WrapFormatError(definitions.FormatName(structName, memberName), "duplicate member", err)
		}
	}
	return nil
}

func (rd *reader) buildStructureFamily(base definitions.Base, name string, node *yaml.Node) (definitions.Definition, error) {
	baseName, err := requiredString(node, "base")
	if err != nil {
		return nil, err
	}
	baseStruct, err := rd.lookupStructure(name, baseName, node)
	if err != nil {
		return nil, err
	}
	def := definitions.NewStructureFamily(base, baseStruct)

	members := field(node, "members")
	if members != nil {
		for _, entry := range members.Content {
			var memberName string
			if err := entry.Decode(&memberName); err != nil {
				return nil, errors.NewDefinitionReaderError(name, "structure-family member must be a definition name", entry.Line, entry.Column)
			}
			member, err := rd.lookupStructure(name, memberName, entry)
			if err != nil {
				return nil, err
			}
			def.AddMember(member)
		}
	}
	return def, nil
}

func (rd *reader) buildStructureGroup(base definitions.Base, name string, node *yaml.Node) (definitions.Definition, error) {
	baseName, err := requiredString(node, "base")
	if err != nil {
		return nil, err
	}
	baseStruct, err := rd.lookupStructure(name, baseName, node)
	if err != nil {
		return nil, err
	}
	identifier, err := requiredString(node, "identifier")
	if err != nil {
		return nil, err
	}
	def := definitions.NewStructureGroup(base, baseStruct, identifier)

	variants := field(node, "variants")
	if variants == nil {
		return nil, errors.NewDefinitionReaderError(name, "structure-group is missing variants", node.Line, node.Column)
	}
	for _, entry := range variants.Content {
		var variantName string
		if err := entry.Decode(&variantName); err != nil {
			return nil, errors.NewDefinitionReaderError(name, "structure-group variant must be a definition name", entry.Line, entry.Column)
		}
		variant, err := rd.lookupStructure(name, variantName, entry)
		if err != nil {
			return nil, err
		}
		def.AddVariant(variant)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func (rd *reader) lookupStructure(owner, name string, node *yaml.Node) (*definitions.StructureDefinition, error) {
	resolved, ok := rd.byName[name]
	if !ok {
		return nil, errors.NewDefinitionReaderError(owner, "reference to undefined definition "+name, node.Line, node.Column)
	}
	structDef, ok := resolved.(*definitions.StructureDefinition)
	if !ok {
		return nil, errors.NewDefinitionReaderError(owner, name+" is not a structure definition", node.Line, node.Column)
	}
	return structDef, nil
}

// resolveDataType resolves a data_type node that is either a scalar
// name reference to an already-defined top-level definition, or an
// inline mapping describing an anonymous definition.
func (rd *reader) resolveDataType(owner, memberName string, node *yaml.Node) (definitions.Definition, error) {
	if node.Kind == yaml.ScalarNode {
		var ref string
		if err := node.Decode(&ref); err != nil {
			return nil, errors.NewDefinitionReaderError(owner, "invalid data_type reference", node.Line, node.Column)
		}
		resolved, ok := rd.byName[ref]
		if !ok {
			return nil, errors.NewDefinitionReaderError(definitions.FormatName(owner, memberName), "reference to undefined definition "+ref, node.Line, node.Column)
		}
		return resolved, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.NewDefinitionReaderError(definitions.FormatName(owner, memberName), "data_type must be a name or an inline definition", node.Line, node.Column)
	}
	typeIndicator, err := requiredString(node, "type")
	if err != nil {
		return nil, err
	}
	return rd.build(memberName, node, typeIndicator)
}

func wrapBuildError(name string, node *yaml.Node, err error) error {
	if fe, ok := err.(*errors.FormatError); ok {
		return errors.NewDefinitionReaderError(name, fe.Message, node.Line, node.Column)
	}
	return errors.NewDefinitionReaderError(name, err.Error(), node.Line, node.Column)
}
