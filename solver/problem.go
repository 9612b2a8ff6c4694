package solver

import (
	"fmt"
	"strings"
)

// A Problem is a normalized CNF instance: a clause list and a number of variables.
// It is the only input the solver core accepts; turning text into a Problem is the
// job of collaborator packages.
type Problem struct {
	NbVars  int        // Total number of variables
	Clauses []*Clause  // Clauses of length >= 2 after simplification
	Status  Status     // Indet, or Unsat if an empty clause was given or derived, or Sat if no clause survived simplification
	Units   []Lit      // Unit literals found in the problem (facts)
	Model   []decLevel // For each var: 0 if unbound, 1 if true, -1 if false
}

// ParseSlice builds a Problem from a list of clauses given as slices of
// nonzero external literals (±v, variables numbered from 1).
// Clauses are normalized: duplicate literals are collapsed and tautologies,
// i.e clauses holding both a literal and its negation, are dropped. The
// variables of a dropped clause still count towards NbVars.
// The input must be well formed: a zero literal is a programming fault and
// panics. An empty inner slice is the empty clause and makes the whole
// problem trivially unsatisfiable.
func ParseSlice(cnf [][]int) *Problem {
	return ParseSliceNb(cnf, 0)
}

// ParseSliceNb is ParseSlice for problems known to hold at least nbVars
// variables, whether or not they all appear in clauses.
func ParseSliceNb(cnf [][]int, nbVars int) *Problem {
	pb := Problem{NbVars: nbVars}
	for _, line := range cnf {
		if len(line) == 0 {
			pb.Status = Unsat
			return &pb
		}
		lits := make([]Lit, 0, len(line))
		taut := false
		for _, val := range line {
			if val == 0 {
				panic("null literal in clause")
			}
			lit := IntToLit(val)
			if v := int(lit.Var()); v >= pb.NbVars {
				pb.NbVars = v + 1
			}
			dup := false
			for _, other := range lits {
				if other == lit {
					dup = true
					break
				}
				if other == lit.Negation() {
					taut = true
					break
				}
			}
			if !dup && !taut {
				lits = append(lits, lit)
			}
		}
		if taut {
			continue
		}
		if len(lits) == 1 {
			pb.Units = append(pb.Units, lits[0])
		} else {
			pb.Clauses = append(pb.Clauses, NewClause(lits))
		}
	}
	// Repeated unit clauses must yield a single fact: the trail holds each
	// bound variable exactly once.
	pb.Model = make([]decLevel, pb.NbVars)
	units := pb.Units[:0]
	for _, unit := range pb.Units {
		v := unit.Var()
		switch {
		case pb.Model[v] == 0:
			if unit.IsPositive() {
				pb.Model[v] = 1
			} else {
				pb.Model[v] = -1
			}
			units = append(units, unit)
		case pb.Model[v] > 0 != unit.IsPositive():
			pb.Status = Unsat
			return &pb
		}
	}
	pb.Units = units
	pb.simplify()
	return &pb
}

// CNF returns a DIMACS representation of the problem.
func (pb *Problem) CNF() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "p cnf %d %d\n", pb.NbVars, len(pb.Units)+len(pb.Clauses))
	for _, unit := range pb.Units {
		fmt.Fprintf(&sb, "%d 0\n", unit.Int())
	}
	for _, clause := range pb.Clauses {
		fmt.Fprintf(&sb, "%s\n", clause.CNF())
	}
	return sb.String()
}

func (pb *Problem) updateStatus(nbClauses int) {
	pb.Clauses = pb.Clauses[:nbClauses]
	if pb.Status == Indet && nbClauses == 0 {
		pb.Status = Sat
	}
}

// simplify propagates the problem's unit literals: satisfied clauses are
// removed, falsified literals are stripped, and clauses reduced to a single
// literal become new facts. Runs to fixpoint or until a contradiction is found.
func (pb *Problem) simplify() {
	nbClauses := len(pb.Clauses)
	i := 0
	for i < nbClauses {
		c := pb.Clauses[i]
		nbLits := c.Len()
		clauseSat := false
		j := 0
		for j < nbLits {
			lit := c.Get(j)
			switch {
			case pb.Model[lit.Var()] == 0:
				j++
			case (pb.Model[lit.Var()] == 1) == lit.IsPositive():
				clauseSat = true
				j = nbLits
			default:
				nbLits--
				c.Set(j, c.Get(nbLits))
			}
		}
		switch {
		case clauseSat:
			nbClauses--
			pb.Clauses[i] = pb.Clauses[nbClauses]
		case nbLits == 0:
			pb.Status = Unsat
			return
		case nbLits == 1:
			pb.addUnit(c.First())
			if pb.Status == Unsat {
				return
			}
			nbClauses--
			pb.Clauses[i] = pb.Clauses[nbClauses]
			i = 0 // This new fact may have made earlier clauses unit or satisfied
		default:
			if c.Len() != nbLits {
				c.Shrink(nbLits)
			}
			i++
		}
	}
	pb.updateStatus(nbClauses)
}

func (pb *Problem) addUnit(lit Lit) {
	v := lit.Var()
	if pb.Model[v] != 0 { // Already a fact
		if pb.Model[v] > 0 != lit.IsPositive() {
			pb.Status = Unsat
		}
		return
	}
	if lit.IsPositive() {
		pb.Model[v] = 1
	} else {
		pb.Model[v] = -1
	}
	pb.Units = append(pb.Units, lit)
}
