package expr

import "github.com/libyal/dtfabric-go/errors"

// Namespace resolves a bare name to a value during evaluation. The
// caller builds it from the context's values plus, when evaluating a
// member condition or size expression, a single extra entry under the
// partially-built structure's type name (§4.C).
type Namespace interface {
	Lookup(name string) (any, bool)
}

// MapNamespace is the common Namespace implementation: a flat
// name-to-value map.
type MapNamespace map[string]any

func (ns MapNamespace) Lookup(name string) (any, bool) {
	v, ok := ns[name]
	return v, ok
}

// AttributeGetter is implemented by values that support the `a.b`
// attribute-access form -- in practice dmap.StructureValue, which
// dereferences into its not-yet-fully-decoded member values.
type AttributeGetter interface {
	Attribute(name string) (any, bool)
}

// node is the expression AST. Each concrete node implements eval.
type node interface {
	eval(ns Namespace) (any, error)
}

type intLiteral int64

func (n intLiteral) eval(Namespace) (any, error) { return int64(n), nil }

type boolLiteral bool

func (n boolLiteral) eval(Namespace) (any, error) { return bool(n), nil }

type nameRef string

func (n nameRef) eval(ns Namespace) (any, error) {
	v, ok := ns.Lookup(string(n))
	if !ok {
		return nil, errors.NewMappingError(string(n), 0, "name is not defined")
	}
	return v, nil
}

type attrRef struct {
	object node
	attr   string
}

func (n attrRef) eval(ns Namespace) (any, error) {
	v, err := n.object.eval(ns)
	if err != nil {
		return nil, err
	}
	getter, ok := v.(AttributeGetter)
	if !ok {
		return nil, errors.NewMappingError(n.attr, 0, "value does not support attribute access")
	}
	attrValue, ok := getter.Attribute(n.attr)
	if !ok {
		return nil, errors.NewMappingError(n.attr, 0, "attribute is not defined")
	}
	return attrValue, nil
}

type unaryNot struct{ operand node }

func (n unaryNot) eval(ns Namespace) (any, error) {
	v, err := n.operand.eval(ns)
	if err != nil {
		return nil, err
	}
	b, err := asBool(v)
	if err != nil {
		return nil, err
	}
	return !b, nil
}

type unaryNeg struct{ operand node }

func (n unaryNeg) eval(ns Namespace) (any, error) {
	v, err := n.operand.eval(ns)
	if err != nil {
		return nil, err
	}
	i, err := asInt(v)
	if err != nil {
		return nil, err
	}
	return -i, nil
}

type binOp struct {
	op          tokenKind
	left, right node
}

func (n binOp) eval(ns Namespace) (any, error) {
	left, err := n.left.eval(ns)
	if err != nil {
		return nil, err
	}

	// Short-circuit boolean composition.
	if n.op == tokAnd || n.op == tokOr {
		lb, err := asBool(left)
		if err != nil {
			return nil, err
		}
		if n.op == tokAnd && !lb {
			return false, nil
		}
		if n.op == tokOr && lb {
			return true, nil
		}
		right, err := n.right.eval(ns)
		if err != nil {
			return nil, err
		}
		return asBool(right)
	}

	right, err := n.right.eval(ns)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokEq:
		return valuesEqual(left, right), nil
	case tokNe:
		return !valuesEqual(left, right), nil
	}

	li, err := asInt(left)
	if err != nil {
		return nil, err
	}
	ri, err := asInt(right)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokPlus:
		return li + ri, nil
	case tokMinus:
		return li - ri, nil
	case tokStar:
		return li * ri, nil
	case tokSlash:
		if ri == 0 {
			return nil, errors.NewMappingError("", 0, "division by zero")
		}
		return li / ri, nil
	case tokPercent:
		if ri == 0 {
			return nil, errors.NewMappingError("", 0, "division by zero")
		}
		return li % ri, nil
	case tokLt:
		return li < ri, nil
	case tokLe:
		return li <= ri, nil
	case tokGt:
		return li > ri, nil
	case tokGe:
		return li >= ri, nil
	}
	return nil, errors.NewMappingError("", 0, "unsupported operator")
}

func asInt(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case byte:
		return int64(t), nil
	default:
		return 0, errors.NewMappingError("", 0, "expected an integer value")
	}
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, errors.NewMappingError("", 0, "expected a boolean value")
	}
	return b, nil
}

func valuesEqual(a, b any) bool {
	ai, aerr := asInt(a)
	bi, berr := asInt(b)
	if aerr == nil && berr == nil {
		return ai == bi
	}
	return a == b
}
