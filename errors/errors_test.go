package errors_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/errors"
)

func TestFormatErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := errors.WrapFormatError("thing", "could not build", cause)

	require.True(t, errors.Is(err, cause))
	require.Contains(t, err.Error(), "thing")
	require.Contains(t, err.Error(), "could not build")
}

func TestByteStreamTooSmallMessage(t *testing.T) {
	err := errors.NewByteStreamTooSmall("header", 2, 8)
	require.Contains(t, err.Error(), "have 2 bytes")
	require.Contains(t, err.Error(), "need 8")
}

func TestDefinitionReaderErrorIncludesPositionWhenKnown(t *testing.T) {
	withPos := errors.NewDefinitionReaderError("thing", "bad attribute", 12, 4)
	require.Contains(t, withPos.Error(), "line 12")
	require.Contains(t, withPos.Error(), "column 4")

	withoutPos := errors.NewDefinitionReaderError("thing", "bad attribute", 0, 0)
	require.NotContains(t, withoutPos.Error(), "line")
}

func TestMappingErrorOmitsOffsetWhenZero(t *testing.T) {
	err := errors.NewMappingError("field", 0, "value not allowed")
	require.NotContains(t, err.Error(), "offset")

	withOffset := errors.NewMappingError("field", 16, "value not allowed")
	require.Contains(t, withOffset.Error(), "offset 16")
}
