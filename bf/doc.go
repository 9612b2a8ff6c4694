// Package bf tests the satisfiability of generic boolean formulas.
//
// The solver itself only accepts CNF, a conjunction of clauses. Translating
// an arbitrary formula to an equivalent CNF by hand is tedious and
// error-prone, so this package provides logical connectors to build a
// formula, translates it to CNF automatically and solves it.
//
// For example, the formula
//
//	^(a & b) -> ((c | ^d) & ^(c & (e = ^c)))
//
// is built with
//
//	f := bf.Implies(bf.Not(bf.And(bf.Var("a"), bf.Var("b"))),
//		bf.And(bf.Or(bf.Var("c"), bf.Not(bf.Var("d"))),
//			bf.Not(bf.And(bf.Var("c"), bf.Eq(bf.Var("e"), bf.Not(bf.Var("c")))))))
//
// or parsed from its textual form with bf.Parse. Solve(f) returns a map
// binding each of the formula's variables, or nil when the formula is
// unsatisfiable. The translation uses the classic naming transform: it is
// polynomial in time and space, at the price of auxiliary variables, whose
// names are prefixed so they can be told apart from the formula's own.
package bf
