package definitions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/definitions"
)

func structureWithDiscriminator(name, memberName string, values []any) *definitions.StructureDefinition {
	s := definitions.NewStructure(definitions.NewBase(name, nil, "", nil))
	member := &definitions.Member{MemberName: memberName, DataType: u8(memberName), Values: values}
	if err := s.AddMember(member); err != nil {
		panic(err)
	}
	return s
}

func TestStructureGroupValidateRejectsOverlappingDiscriminators(t *testing.T) {
	base := structureWithDiscriminator("header", "tag", nil)
	variantA := structureWithDiscriminator("variant_a", "tag", []any{int64(1), int64(2)})
	variantB := structureWithDiscriminator("variant_b", "tag", []any{int64(2), int64(3)})

	group := definitions.NewStructureGroup(definitions.NewBase("message", nil, "", nil), base, "tag")
	group.AddVariant(variantA)
	group.AddVariant(variantB)

	err := group.Validate()
	require.Error(t, err)
}

func TestStructureGroupValidateAcceptsDisjointDiscriminators(t *testing.T) {
	base := structureWithDiscriminator("header", "tag", nil)
	variantA := structureWithDiscriminator("variant_a", "tag", []any{int64(1)})
	variantB := structureWithDiscriminator("variant_b", "tag", []any{int64(2)})

	group := definitions.NewStructureGroup(definitions.NewBase("message", nil, "", nil), base, "tag")
	group.AddVariant(variantA)
	group.AddVariant(variantB)

	require.NoError(t, group.Validate())
}

func TestStructureGroupValidateRequiresVariantDiscriminatorValues(t *testing.T) {
	base := structureWithDiscriminator("header", "tag", nil)
	variant := structureWithDiscriminator("variant_a", "tag", nil)

	group := definitions.NewStructureGroup(definitions.NewBase("message", nil, "", nil), base, "tag")
	group.AddVariant(variant)

	require.Error(t, group.Validate())
}

func TestStructureGroupValidateRequiresBaseMember(t *testing.T) {
	base := definitions.NewStructure(definitions.NewBase("header", nil, "", nil))
	group := definitions.NewStructureGroup(definitions.NewBase("message", nil, "", nil), base, "tag")

	require.Error(t, group.Validate())
}

func TestFormatAndStructureFamilyAreInert(t *testing.T) {
	format := definitions.NewFormat(definitions.NewBase("my_format", nil, "", nil))
	_, ok := format.ByteSize()
	require.False(t, ok)

	family := definitions.NewStructureFamily(definitions.NewBase("family", nil, "", nil), nil)
	_, ok = family.ByteSize()
	require.False(t, ok)
	require.True(t, family.IsComposite())
}
