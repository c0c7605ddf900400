package definitions

import "github.com/libyal/dtfabric-go/errors"

// FormatDefinition is a layout type that anchors documentation and
// validation for a whole file format; it has no byte-stream decode of
// its own.
type FormatDefinition struct {
	Base
	Members []Definition
}

func NewFormat(base Base) *FormatDefinition {
	return &FormatDefinition{Base: base}
}

func (d *FormatDefinition) TypeIndicator() TypeIndicator { return TypeFormat }
func (d *FormatDefinition) IsComposite() bool            { return true }
func (d *FormatDefinition) ByteSize() (int, bool)         { return 0, false }

// StructureFamilyDefinition names a base structure plus a set of
// member structures sharing a family, with no tag-driven dispatch
// (see SPEC_FULL.md §3 for the Open Question this resolves: it is
// inert with respect to byte streams, exactly like FormatDefinition).
type StructureFamilyDefinition struct {
	Base
	BaseStructure *StructureDefinition
	Members       []*StructureDefinition
}

func NewStructureFamily(base Base, baseStructure *StructureDefinition) *StructureFamilyDefinition {
	return &StructureFamilyDefinition{Base: base, BaseStructure: baseStructure}
}

func (d *StructureFamilyDefinition) TypeIndicator() TypeIndicator { return TypeStructureFamily }
func (d *StructureFamilyDefinition) IsComposite() bool            { return true }
func (d *StructureFamilyDefinition) ByteSize() (int, bool)         { return 0, false }

func (d *StructureFamilyDefinition) AddMember(member *StructureDefinition) {
	d.Members = append(d.Members, member)
}

// StructureGroupDefinition dispatches to one of several variant
// structures by the value of a named discriminator member of the
// base structure.
type StructureGroupDefinition struct {
	Base
	BaseStructure *StructureDefinition
	Identifier    string
	Variants      []*StructureDefinition
}

func NewStructureGroup(base Base, baseStructure *StructureDefinition, identifier string) *StructureGroupDefinition {
	return &StructureGroupDefinition{Base: base, BaseStructure: baseStructure, Identifier: identifier}
}

func (d *StructureGroupDefinition) TypeIndicator() TypeIndicator { return TypeStructureGroup }
func (d *StructureGroupDefinition) IsComposite() bool            { return true }
func (d *StructureGroupDefinition) ByteSize() (int, bool)         { return 0, false }

func (d *StructureGroupDefinition) AddVariant(variant *StructureDefinition) {
	d.Variants = append(d.Variants, variant)
}

// Validate enforces invariant 5: the discriminator member's Values
// sets across variants are pairwise disjoint and each non-empty.
func (d *StructureGroupDefinition) Validate() error {
	if d.BaseStructure == nil {
		return errors.NewFormatError(d.Name(), "structure group has no base structure")
	}
	if _, ok := d.BaseStructure.MemberByName(d.Identifier); !ok {
		return errors.NewFormatError(d.Name(), "base structure has no member named "+d.Identifier)
	}

	seen := map[any]string{}
	for _, variant := range d.Variants {
		member, ok := variant.MemberByName(d.Identifier)
		if !ok {
			return errors.NewFormatError(variant.Name(),
				"variant does not contain a member named "+d.Identifier)
		}
		if len(member.Values) == 0 {
			return errors.NewFormatError(variant.Name(),
				"variant's discriminator member must declare a non-empty values list")
		}
		for _, value := range member.Values {
			if owner, exists := seen[value]; exists {
				return errors.NewFormatError(d.Name(),
					"discriminator value is claimed by both "+owner+" and "+variant.Name())
			}
			seen[value] = variant.Name()
		}
	}
	return nil
}
