package bf

import (
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The grammar mirrors the operator priorities, one rule per level:
// "=" binds loosest, then "->" (right associative), "|", "&" and the
// unary "^". Parentheses group subformulas.

type eqExpr struct {
	First *implExpr   `parser:"@@"`
	Rest  []*implExpr "parser:\"( \\\"=\\\" @@ )*\""
}

type implExpr struct {
	Left  *orExpr   `parser:"@@"`
	Right *implExpr "parser:\"( \\\"->\\\" @@ )?\""
}

type orExpr struct {
	Disjuncts []*andExpr "parser:\"@@ ( \\\"|\\\" @@ )*\""
}

type andExpr struct {
	Conjuncts []*unaryExpr "parser:\"@@ ( \\\"&\\\" @@ )*\""
}

type unaryExpr struct {
	Not   *unaryExpr "parser:\"  \\\"^\\\" @@\""
	Group *eqExpr    "parser:\"| \\\"(\\\" @@ \\\")\\\"\""
	Var   string     `parser:"| @Ident"`
}

var formulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Punct", Pattern: `[=|&^()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var formulaParser = participle.MustBuild[eqExpr](
	participle.Lexer(formulaLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a formula from the given input Reader.
// Formulas are written using the following operators, from lowest to
// highest priority:
//
// - for an equivalence, the "=" operator,
// - for an implication, the "->" operator,
// - for a disjunction ("or"), the "|" operator,
// - for a conjunction ("and"), the "&" operator,
// - for a negation, the "^" unary operator.
//
// Parentheses can be used to group subformulas.
func Parse(r io.Reader) (Formula, error) {
	ast, err := formulaParser.Parse("", r)
	if err != nil {
		return nil, err
	}
	return ast.formula(), nil
}

// ParseString is Parse on a string input.
func ParseString(s string) (Formula, error) {
	ast, err := formulaParser.ParseString("", s)
	if err != nil {
		return nil, err
	}
	return ast.formula(), nil
}

func (e *eqExpr) formula() Formula {
	f := e.First.formula()
	for _, r := range e.Rest {
		f = Eq(f, r.formula())
	}
	return f
}

func (e *implExpr) formula() Formula {
	f := e.Left.formula()
	if e.Right != nil {
		return Implies(f, e.Right.formula())
	}
	return f
}

func (e *orExpr) formula() Formula {
	if len(e.Disjuncts) == 1 {
		return e.Disjuncts[0].formula()
	}
	subs := make([]Formula, len(e.Disjuncts))
	for i, d := range e.Disjuncts {
		subs[i] = d.formula()
	}
	return Or(subs...)
}

func (e *andExpr) formula() Formula {
	if len(e.Conjuncts) == 1 {
		return e.Conjuncts[0].formula()
	}
	subs := make([]Formula, len(e.Conjuncts))
	for i, c := range e.Conjuncts {
		subs[i] = c.formula()
	}
	return And(subs...)
}

func (e *unaryExpr) formula() Formula {
	switch {
	case e.Not != nil:
		return Not(e.Not.formula())
	case e.Group != nil:
		return e.Group.formula()
	default:
		return Var(e.Var)
	}
}
