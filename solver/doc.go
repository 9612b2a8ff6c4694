/*
Package solver implements a CDCL SAT solver over propositional clauses.

Its input is a solver.Problem, holding the set of clauses to be solved.
The solver then indicates whether the problem is satisfiable. When it is,
it can provide a model, i.e a set of bindings for all variables that makes
the formula true.

# Describing a problem

A problem is a list of lists of literals, where a positive value means the
variable must be true and a negative value that it must be false:

	clauses := [][]int{
	    {1, 2, 3},
	    {4, 5, 6},
	    {-1, -4},
	    {-2, -5},
	    {-3, -6},
	    {-1, -3},
	    {-4, -6},
	}
	pb := solver.ParseSlice(clauses)

Parsers for concrete file formats live in companion packages: package cnf
reads both DIMACS streams and a line-oriented named format.

# Solving a problem

To solve a problem, one simply creates a solver with said problem.
The Solve method then solves it and returns the corresponding status,
Sat or Unsat:

	s := solver.New(pb)
	status := s.Solve()

If the status is Sat, the solver can produce a model, i.e an assignment
that makes all the clauses of the problem true:

	m := s.Model()

For the above problem, the status will be Sat and the model can be
{false, true, false, true, false, false}.

A solver can also be bounded: setting MaxConflicts or Timeout makes Solve
return Indet once the budget is exhausted, and Interrupt stops a running
search from another goroutine. Enumerate and CountModels explore every
model of the formula instead of stopping at the first one.
*/
package solver
