package solver

import "sort"

// computeLbd computes and sets c's LBD (Literal Block Distance), i.e the
// number of distinct decision levels its literals were assigned at.
func (c *Clause) computeLbd(model Model) {
	c.setLbd(1)
	curLvl := abs(model[c.Get(0).Var()])
	for i := 0; i < c.Len(); i++ {
		lit := c.Get(i)
		if lvl := abs(model[lit.Var()]); lvl != curLvl {
			curLvl = lvl
			c.incLbd()
		}
	}
}

// addConflictLits is a helper function for learnClause.
// It deals with the lits from the conflicting clause itself.
func (s *Solver) addConflictLits(confl *Clause, lvl decLevel, met, metLvl []bool, lits *[]Lit) int {
	nbLvl := 0
	for i := 0; i < confl.Len(); i++ {
		l := confl.Get(i)
		v := l.Var()
		met[v] = true
		s.varBumpActivity(v)
		if abs(s.model[v]) == lvl {
			metLvl[v] = true
			nbLvl++
		} else if abs(s.model[v]) != 1 { // Literals bound at the fact level never make it into learned clauses
			*lits = append(*lits, l)
		}
	}
	return nbLvl
}

// learnClause resolves the conflicting clause back to the first unique
// implication point and returns either:
// the learned clause itself, if its len is at least 2;
// a nil clause and a unit literal, if its len is exactly 1.
// In the first case, the literal at position 0 is the asserting literal and
// the literal at position 1 is one from the backjump level.
func (s *Solver) learnClause(confl *Clause, lvl decLevel) (learned *Clause, unit Lit) {
	s.clauseBumpActivity(confl)
	lits := s.litsBuf[:1]           // Not 0: make room for the asserting literal
	buf := make([]bool, s.nbVars*2) // Buffer for met and metLvl; reduces allocs/deallocs
	met := buf[:s.nbVars]           // All vars already met during resolution
	metLvl := buf[s.nbVars:]        // Vars met at the conflict level
	// nbLvl is the nb of conflict-level vars still to resolve
	nbLvl := s.addConflictLits(confl, lvl, met, metLvl, &lits)
	ptr := len(s.trail) - 1 // Pointer in propagation trail
	for nbLvl > 1 {         // We will stop once a single lit from the conflict level remains
		for !metLvl[s.trail[ptr].Var()] {
			ptr--
		}
		v := s.trail[ptr].Var()
		ptr--
		nbLvl--
		if reason := s.reason[v]; reason != nil {
			s.clauseBumpActivity(reason)
			for i := 0; i < reason.Len(); i++ {
				lit := reason.Get(i)
				if v2 := lit.Var(); !met[v2] {
					met[v2] = true
					s.varBumpActivity(v2)
					if abs(s.model[v2]) == lvl {
						metLvl[v2] = true
						nbLvl++
					} else if abs(s.model[v2]) != 1 {
						lits = append(lits, lit)
					}
				}
			}
		}
	}
	// The single unresolved conflict-level var is the earliest met one on
	// the trail: the first unique implication point.
	for _, l := range s.trail {
		if metLvl[l.Var()] {
			lits[0] = l.Negation()
			break
		}
	}
	s.varDecayActivity()
	s.clauseDecayActivity()
	sortLiterals(lits, s.model)
	sz := s.minimizeLearned(met, lits)
	s.litsBuf = lits[:0] // lits may have grown: keep the larger buffer
	if sz == 1 {
		return nil, lits[0]
	}
	learned = NewLearnedClause(append([]Lit(nil), lits[:sz]...))
	learned.computeLbd(s.model)
	return learned, -1
}

// sortLiterals sorts lits by descending decision level, so that the
// asserting literal comes first and a literal from the backjump level second.
func sortLiterals(lits []Lit, model Model) {
	sort.Slice(lits, func(i, j int) bool {
		return abs(model[lits[i].Var()]) > abs(model[lits[j].Var()])
	})
}

// minimizeLearned removes the literals whose reason is subsumed by the rest
// of the learned clause. It returns the size of the minimized clause, whose
// lits are packed at the beginning of learned.
func (s *Solver) minimizeLearned(met []bool, learned []Lit) int {
	sz := 1
	for i := 1; i < len(learned); i++ {
		if reason := s.reason[learned[i].Var()]; reason == nil {
			learned[sz] = learned[i]
			sz++
		} else {
			for k := 0; k < reason.Len(); k++ {
				lit := reason.Get(k)
				if !met[lit.Var()] && abs(s.model[lit.Var()]) > 1 {
					learned[sz] = learned[i]
					sz++
					break
				}
			}
		}
	}
	return sz
}
