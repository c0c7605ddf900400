package expr

import "fmt"

// Expr is a parsed, ready-to-evaluate expression. Expressions are
// parsed once at Map construction time (never per call) and are
// immutable and safe to evaluate concurrently against distinct
// Namespaces.
type Expr struct {
	root   node
	source string
}

// Source returns the original expression text, useful for error
// messages at the call site.
func (e *Expr) Source() string { return e.source }

// Eval evaluates the expression against ns, returning a MappingError
// on name resolution failure, type mismatch, or division by zero.
func (e *Expr) Eval(ns Namespace) (any, error) {
	return e.root.eval(ns)
}

// EvalBool is a convenience wrapper for condition expressions, which
// must evaluate to a boolean.
func (e *Expr) EvalBool(ns Namespace) (bool, error) {
	v, err := e.Eval(ns)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// EvalInt is a convenience wrapper for size/count expressions, which
// must evaluate to an integer.
func (e *Expr) EvalInt(ns Namespace) (int64, error) {
	v, err := e.Eval(ns)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

// Parse compiles source into an Expr. Parsing happens once; the
// resulting Expr can be evaluated repeatedly against different
// namespaces with no side effects (property 7).
func Parse(source string) (*Expr, error) {
	p := &parser{lex: newLexer(source), source: source}
	if err := p.advance(); err != nil {
		return nil, err
	}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, fmt.Errorf("unexpected token %q in expression %q", p.cur.describe(), source)
	}
	return &Expr{root: root, source: source}, nil
}

type parser struct {
	lex    *lexer
	cur    token
	source string
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return fmt.Errorf("%w in expression %q", err, p.source)
	}
	p.cur = t
	return nil
}

func (p *parser) expect(kind tokenKind) error {
	if p.cur.kind != kind {
		return fmt.Errorf("unexpected token %q in expression %q", p.cur.describe(), p.source)
	}
	return p.advance()
}

// parseOr: and_expr ("or" and_expr)*
func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binOp{op: tokOr, left: left, right: right}
	}
	return left, nil
}

// parseAnd: not_expr ("and" not_expr)*
func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = binOp{op: tokAnd, left: left, right: right}
	}
	return left, nil
}

// parseNot: "not" not_expr | comparison
func (p *parser) parseNot() (node, error) {
	if p.cur.kind == tokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return unaryNot{operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[tokenKind]bool{
	tokEq: true, tokNe: true, tokLt: true, tokLe: true, tokGt: true, tokGe: true,
}

// parseComparison: arith ((comparison op) arith)?
func (p *parser) parseComparison() (node, error) {
	left, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	if comparisonOps[p.cur.kind] {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		return binOp{op: op, left: left, right: right}, nil
	}
	return left, nil
}

// parseArith: term (("+"|"-") term)*
func (p *parser) parseArith() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binOp{op: op, left: left, right: right}
	}
	return left, nil
}

// parseTerm: unary (("*"|"/"|"%") unary)*
func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash || p.cur.kind == tokPercent {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binOp{op: op, left: left, right: right}
	}
	return left, nil
}

// parseUnary: "-" unary | postfix
func (p *parser) parseUnary() (node, error) {
	if p.cur.kind == tokMinus {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNeg{operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix: primary ("." IDENT)*
func (p *parser) parsePostfix() (node, error) {
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.kind != tokIdent {
			return nil, fmt.Errorf("expected attribute name after '.' in expression %q", p.source)
		}
		primary = attrRef{object: primary, attr: p.cur.text}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return primary, nil
}

// parsePrimary: INT | IDENT | "true" | "false" | "(" expression ")"
func (p *parser) parsePrimary() (node, error) {
	switch p.cur.kind {
	case tokInt:
		v := p.cur.ival
		if err := p.advance(); err != nil {
			return nil, err
		}
		return intLiteral(v), nil
	case tokTrue:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return boolLiteral(true), nil
	case tokFalse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return boolLiteral(false), nil
	case tokIdent:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return nameRef(name), nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, fmt.Errorf("unexpected token %q in expression %q", p.cur.describe(), p.source)
}
