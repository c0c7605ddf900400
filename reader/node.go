package reader

import (
	"gopkg.in/yaml.v3"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/errors"
)

// field looks up key in a mapping node, returning nil if node is nil,
// not a mapping, or has no such key.
func field(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func requiredString(node *yaml.Node, key string) (string, error) {
	v := field(node, key)
	if v == nil {
		line, column := 0, 0
		if node != nil {
			line, column = node.Line, node.Column
		}
		return "", errors.NewDefinitionReaderError("", "missing required field "+key, line, column)
	}
	var s string
	if err := v.Decode(&s); err != nil {
		return "", errors.NewDefinitionReaderError(key, "field "+key+" must be a string", v.Line, v.Column)
	}
	return s, nil
}

func optionalString(node *yaml.Node, key, fallback string) string {
	v := field(node, key)
	if v == nil {
		return fallback
	}
	var s string
	if err := v.Decode(&s); err != nil {
		return fallback
	}
	return s
}

func stringListAttr(node *yaml.Node, key string) []string {
	v := field(node, key)
	if v == nil {
		return nil
	}
	var list []string
	if err := v.Decode(&list); err != nil {
		return nil
	}
	return list
}

// intAttr decodes an integer field, returning fallback if the field is
// absent or not an integer.
func intAttr(node *yaml.Node, key string, fallback int) int {
	v := field(node, key)
	if v == nil {
		return fallback
	}
	var i int
	if err := v.Decode(&i); err != nil {
		return fallback
	}
	return i
}

func int64Attr(node *yaml.Node, key string) (int64, bool) {
	v := field(node, key)
	if v == nil {
		return 0, false
	}
	var i int64
	if err := v.Decode(&i); err != nil {
		return 0, false
	}
	return i, true
}

func int64ListAttr(node *yaml.Node, key string) []int64 {
	v := field(node, key)
	if v == nil {
		return nil
	}
	var list []int64
	if err := v.Decode(&list); err != nil {
		return nil
	}
	return list
}

// anyListAttr decodes a list field element-by-element into generic Go
// values (int64, string, bool), matching the decoded dynamic type a
// Member.Values allow-list is compared against at decode time.
func anyListAttr(node *yaml.Node, key string) []any {
	v := field(node, key)
	if v == nil || v.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]any, 0, len(v.Content))
	for _, entry := range v.Content {
		var value any
		if err := entry.Decode(&value); err != nil {
			continue
		}
		if i, ok := value.(int); ok {
			value = int64(i)
		}
		out = append(out, value)
	}
	return out
}

// setByteOrder applies an explicit attributes.byte_order override, if
// present, to any definition embedding definitions.Storage.
func setByteOrder(def definitions.Definition, attrs *yaml.Node) {
	v := field(attrs, "byte_order")
	if v == nil {
		return
	}
	var order string
	if err := v.Decode(&order); err != nil || order == "" {
		return
	}
	if setter, ok := def.(interface {
		SetByteOrder(definitions.ByteOrder)
	}); ok {
		setter.SetByteOrder(definitions.ByteOrder(order))
	}
}

// elementSequencePtr exposes the embedded ElementSequence of a
// Sequence, Stream, or String definition so their shared attributes
// (element_data_type, sizing, terminator) can be set generically.
func elementSequencePtr(def definitions.Definition) *definitions.ElementSequence {
	switch d := def.(type) {
	case *definitions.SequenceDefinition:
		return &d.ElementSequence
	case *definitions.StreamDefinition:
		return &d.ElementSequence
	case *definitions.StringDefinition:
		return &d.ElementSequence
	default:
		return nil
	}
}

func applyElementSequenceAttrs(def definitions.Definition, attrs *yaml.Node) {
	es := elementSequencePtr(def)
	if es == nil {
		return
	}
	es.ElementsDataSize = intAttr(attrs, "elements_data_size", 0)
	es.ElementsDataSizeExpression = optionalString(attrs, "elements_data_size_expression", "")
	es.NumberOfElements = intAttr(attrs, "number_of_elements", 0)
	es.NumberOfElementsExpression = optionalString(attrs, "number_of_elements_expression", "")

	if n := field(attrs, "elements_terminator"); n != nil {
		var v any
		if err := n.Decode(&v); err == nil {
			if i, ok := v.(int); ok {
				v = int64(i)
			}
			es.ElementsTerminator = v
		}
	}
}

// knownAttributes is the closed set of attributes.* keys each type
// indicator accepts. An unrecognized key is a DefinitionReaderError
// naming the offending node's line and column.
var knownAttributes = map[definitions.TypeIndicator]map[string]bool{
	definitions.TypeBoolean:       set("size", "units", "byte_order", "true_value", "false_value"),
	definitions.TypeCharacter:     set("size", "units", "byte_order"),
	definitions.TypeInteger:       set("size", "units", "byte_order", "format", "minimum_value", "maximum_value", "values"),
	definitions.TypeFloatingPoint: set("size", "units", "byte_order"),
	definitions.TypeUUID:          set("byte_order"),
	definitions.TypePadding:       set("alignment_size"),
	definitions.TypeConstant:      set("value"),
	definitions.TypeSequence:      set("element_data_type", "elements_data_size", "elements_data_size_expression", "number_of_elements", "number_of_elements_expression", "elements_terminator", "byte_order"),
	definitions.TypeStream:        set("element_data_type", "elements_data_size", "elements_data_size_expression", "number_of_elements", "number_of_elements_expression", "elements_terminator", "byte_order"),
	definitions.TypeString:        set("element_data_type", "elements_data_size", "elements_data_size_expression", "number_of_elements", "number_of_elements_expression", "elements_terminator", "byte_order", "encoding"),
	definitions.TypeStructure:     set("byte_order"),
	definitions.TypeUnion:         set("byte_order"),
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func validateAttributeKeys(node *yaml.Node, ti definitions.TypeIndicator, attrs *yaml.Node) error {
	allowed, hasRule := knownAttributes[ti]
	if !hasRule || attrs == nil {
		return nil
	}
	for i := 0; i+1 < len(attrs.Content); i += 2 {
		key := attrs.Content[i]
		if !allowed[key.Value] {
			return errors.NewDefinitionReaderError(nodeName(node), "unrecognized attribute "+key.Value+" for type "+string(ti), key.Line, key.Column)
		}
	}
	return nil
}

func nodeName(node *yaml.Node) string {
	v := field(node, "name")
	if v == nil {
		return ""
	}
	var s string
	_ = v.Decode(&s)
	return s
}
