package solver

// Basic types and constants shared across the solver.

// Status describes the state of a problem, or of a single clause
// under the current partial assignment.
type Status byte

const (
	// Indet means satisfiability was not decided yet.
	Indet = Status(iota)
	// Sat means the problem or clause is satisfied.
	Sat
	// Unsat means the problem or clause cannot be satisfied.
	Unsat
	// Unit means the clause has exactly one unassigned literal left, all others being false.
	Unit
	// Many means the clause still has at least two unassigned literals.
	Many
)

func (s Status) String() string {
	switch s {
	case Indet:
		return "INDETERMINATE"
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	case Unit:
		return "UNIT"
	case Many:
		return "MANY"
	default:
		panic("invalid status")
	}
}

// A Var is a propositional variable, numbered from 0.
// The external (DIMACS-style) variable 1 is the Var 0.
type Var int32

// A Lit is a literal: a variable together with a polarity.
// Lits are packed as 2*var for the positive literal and 2*var+1
// for the negative one, so that they can index slices directly.
type Lit int32

// IntToLit converts a nonzero external literal (±v, variables
// numbered from 1) to a Lit.
func IntToLit(i int) Lit {
	if i < 0 {
		return Lit(2*(-i-1) + 1)
	}
	return Lit(2 * (i - 1))
}

// IntToVar converts an external variable (numbered from 1) to a Var.
func IntToVar(i int32) Var {
	return Var(i - 1)
}

// Lit returns the positive literal of v.
func (v Var) Lit() Lit {
	return Lit(v * 2)
}

// SignedLit returns the literal of v, negative if 'signed' is true.
func (v Var) SignedLit(signed bool) Lit {
	if signed {
		return Lit(v*2) + 1
	}
	return Lit(v * 2)
}

// Var returns the variable of l.
func (l Lit) Var() Var {
	return Var(l / 2)
}

// Int returns the external representation of l: ±(var+1).
func (l Lit) Int() int32 {
	res := int32(l/2 + 1)
	if l&1 == 1 {
		return -res
	}
	return res
}

// IsPositive is true iff l is a positive literal.
func (l Lit) IsPositive() bool {
	return l%2 == 0
}

// Negation returns the opposite literal of l.
func (l Lit) Negation() Lit {
	return l ^ 1
}
