// Package cnf reads and writes the textual formats understood by the solver.
//
// Two input formats are supported. The named clause format is line oriented:
//
//	a b
//	!a c
//	!b !c
//
// Each line is a clause, each token a literal, "!" denoting negation. An
// empty line or EOF terminates the input. The DIMACS CNF format is the usual
// numeric one, with a "p cnf" header and zero-terminated clauses.
//
// Parsing yields an Instance: the solver.Problem plus the variable names in
// order of first appearance, which is also the order models are printed in.
package cnf
