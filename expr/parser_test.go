package expr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libyal/dtfabric-go/expr"
)

type attrValue struct{ attrs map[string]any }

func (a attrValue) Attribute(name string) (any, bool) {
	v, ok := a.attrs[name]
	return v, ok
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	e, err := expr.Parse("1 + 2 * 3")
	require.NoError(t, err)
	v, err := e.EvalInt(expr.MapNamespace{})
	require.NoError(t, err)
	require.Equal(t, int64(7), v)
}

func TestEvalComparisonAndBoolean(t *testing.T) {
	e, err := expr.Parse("count > 0 and not done")
	require.NoError(t, err)

	ok, err := e.EvalBool(expr.MapNamespace{"count": int64(3), "done": false})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.EvalBool(expr.MapNamespace{"count": int64(3), "done": true})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalShortCircuitsOr(t *testing.T) {
	e, err := expr.Parse("flag or undefined_name")
	require.NoError(t, err)

	ok, err := e.EvalBool(expr.MapNamespace{"flag": true})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalShortCircuitsAnd(t *testing.T) {
	e, err := expr.Parse("flag and undefined_name")
	require.NoError(t, err)

	ok, err := e.EvalBool(expr.MapNamespace{"flag": false})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalAttributeAccess(t *testing.T) {
	e, err := expr.Parse("header.tag == 1")
	require.NoError(t, err)

	ns := expr.MapNamespace{"header": attrValue{attrs: map[string]any{"tag": int64(1)}}}
	ok, err := e.EvalBool(ns)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalDivisionByZero(t *testing.T) {
	e, err := expr.Parse("1 / 0")
	require.NoError(t, err)
	_, err = e.Eval(expr.MapNamespace{})
	require.Error(t, err)
}

func TestEvalUndefinedNameFails(t *testing.T) {
	e, err := expr.Parse("missing + 1")
	require.NoError(t, err)
	_, err = e.Eval(expr.MapNamespace{})
	require.Error(t, err)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := expr.Parse("1 + 2)")
	require.Error(t, err)
}

func TestEvalUnaryNegation(t *testing.T) {
	e, err := expr.Parse("-x")
	require.NoError(t, err)
	v, err := e.EvalInt(expr.MapNamespace{"x": int64(5)})
	require.NoError(t, err)
	require.Equal(t, int64(-5), v)
}

func TestEvalIsSideEffectFree(t *testing.T) {
	e, err := expr.Parse("x + 1")
	require.NoError(t, err)

	first, err := e.EvalInt(expr.MapNamespace{"x": int64(1)})
	require.NoError(t, err)
	second, err := e.EvalInt(expr.MapNamespace{"x": int64(41)})
	require.NoError(t, err)

	require.Equal(t, int64(2), first)
	require.Equal(t, int64(42), second)
}
