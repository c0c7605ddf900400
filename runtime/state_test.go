package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/runtime"
)

func TestRecordSizeHintAndClear(t *testing.T) {
	s := &runtime.State{}
	s.RecordSizeHint("header", 12, true)

	hint, ok := s.SizeHints["header"]
	require.True(t, ok)
	require.Equal(t, int64(12), hint.ByteSize)
	require.True(t, hint.IsComplete)

	s.AttributeIndex = 2
	s.Clear()

	require.Equal(t, 0, s.AttributeIndex)
	require.Nil(t, s.SizeHints)
}
