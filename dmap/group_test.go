package dmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/definitions"
	"github.com/libyal/dtfabric-go/dmap"
)

func buildGroupFixture(t *testing.T) *dmap.GroupMap {
	t.Helper()

	tagMap := mustIntegerMap(t, "tag", 1, definitions.IntegerFormatUnsigned)
	valueMap := mustIntegerMap(t, "value", 1, definitions.IntegerFormatUnsigned)

	baseDef := definitions.NewStructure(definitions.NewBase("header", nil, "", nil))
	require.NoError(t, baseDef.AddMember(&definitions.Member{MemberName: "tag", DataType: tagMap.Definition()}))
	baseMap := dmap.NewStructureMap(baseDef, []dmap.MemberPlan{
		dmap.NewMemberPlan(&definitions.Member{MemberName: "tag"}, tagMap, nil),
	})

	variantADef := definitions.NewStructure(definitions.NewBase("variant_a", nil, "", nil))
	require.NoError(t, variantADef.AddMember(&definitions.Member{MemberName: "tag", DataType: tagMap.Definition(), Values: []any{int64(1)}}))
	require.NoError(t, variantADef.AddMember(&definitions.Member{MemberName: "value", DataType: valueMap.Definition()}))
	variantAMap := dmap.NewStructureMap(variantADef, []dmap.MemberPlan{
		dmap.NewMemberPlan(&definitions.Member{MemberName: "tag"}, tagMap, nil),
		dmap.NewMemberPlan(&definitions.Member{MemberName: "value"}, valueMap, nil),
	})

	variantBDef := definitions.NewStructure(definitions.NewBase("variant_b", nil, "", nil))
	require.NoError(t, variantBDef.AddMember(&definitions.Member{MemberName: "tag", DataType: tagMap.Definition(), Values: []any{int64(2)}}))
	variantBMap := dmap.NewStructureMap(variantBDef, []dmap.MemberPlan{
		dmap.NewMemberPlan(&definitions.Member{MemberName: "tag"}, tagMap, nil),
	})

	groupDef := definitions.NewStructureGroup(definitions.NewBase("message", nil, "", nil), baseDef, "tag")
	groupDef.AddVariant(variantADef)
	groupDef.AddVariant(variantBDef)

	variants := map[any]*dmap.StructureMap{
		int64(1): variantAMap,
		int64(2): variantBMap,
	}
	return dmap.NewGroupMap(groupDef, baseMap, variants)
}

func TestGroupMapDispatchesOnDiscriminator(t *testing.T) {
	group := buildGroupFixture(t)

	v, err := group.MapByteStream([]byte{1, 42}, 0, nil)
	require.NoError(t, err)

	sv := v.(*dmap.StructureValue)
	require.Equal(t, "variant_a", sv.TypeName)
	value, _ := sv.Get("value")
	require.Equal(t, int64(42), value)
}

func TestGroupMapRejectsUnknownDiscriminator(t *testing.T) {
	group := buildGroupFixture(t)

	_, err := group.MapByteStream([]byte{9, 42}, 0, nil)
	require.Error(t, err)
}

func TestGroupMapFoldDispatchesByTypeName(t *testing.T) {
	group := buildGroupFixture(t)

	sv := dmap.NewStructureValue("variant_b")
	sv.Set("tag", int64(2))

	buf, err := group.FoldByteStream(sv, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{2}, buf)
}
