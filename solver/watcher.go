package solver

import "sort"

// binWatch is the watch entry for a binary clause: the partner literal is
// stored inline so propagation never needs to look inside the clause.
type binWatch struct {
	other  Lit
	clause *Clause
}

// A watcherList indexes clauses by the literals whose assignment can shrink
// them. Binary clauses have dedicated lists; longer clauses watch the two
// literals at positions 0 and 1.
type watcherList struct {
	nbMax     int          // Max # of learned clauses at current moment
	idxReduce int          // # of calls to reduce + 1
	bin       [][]binWatch // For each literal, the binary clauses its negation appears in
	occ       [][]*Clause  // For each literal, the longer clauses watching its negation
	origs     []*Clause    // Problem clauses, including blocking clauses appended during enumeration
	learned   []*Clause    // Clauses learned during search
}

// initWatcherList makes a new watcherList for the solver.
func (s *Solver) initWatcherList(clauses []*Clause) {
	s.wl = watcherList{
		nbMax:     initNbMaxClauses,
		idxReduce: 1,
		bin:       make([][]binWatch, s.nbVars*2),
		occ:       make([][]*Clause, s.nbVars*2),
		origs:     clauses,
	}
	for _, c := range clauses {
		s.watchClause(c)
	}
}

// bumpNbMax increases the max nb of learned clauses kept.
// It is typically called after a reduction.
func (s *Solver) bumpNbMax() {
	s.wl.nbMax += incrNbMaxClauses
}

// postponeNbMax increases the max nb of learned clauses kept.
// It is typically called when too many good clauses were learned and a cleaning was expected.
func (s *Solver) postponeNbMax() {
	s.wl.nbMax += incrPostponeNbMax
}

// Watches the provided clause. Clauses of length >= 3 watch the literals
// at positions 0 and 1.
func (s *Solver) watchClause(c *Clause) {
	if c.Len() == 2 {
		first := c.First()
		second := c.Second()
		s.wl.bin[first.Negation()] = append(s.wl.bin[first.Negation()], binWatch{other: second, clause: c})
		s.wl.bin[second.Negation()] = append(s.wl.bin[second.Negation()], binWatch{other: first, clause: c})
	} else {
		neg0 := c.First().Negation()
		neg1 := c.Second().Negation()
		s.wl.occ[neg0] = append(s.wl.occ[neg0], c)
		s.wl.occ[neg1] = append(s.wl.occ[neg1], c)
	}
}

// unwatch the given clause.
// NOTE: since it is only called when c.lbd() > 2, we know for sure
// that c is not a binary clause.
func (s *Solver) unwatchClause(c *Clause) {
	for i := 0; i < 2; i++ {
		neg := c.Get(i).Negation()
		occ := s.wl.occ[neg]
		j := 0
		// This will panic if c is not in occ[neg], but this shouldn't happen.
		for occ[j] != c {
			j++
		}
		occ[j] = occ[len(occ)-1]
		s.wl.occ[neg] = occ[:len(occ)-1]
	}
}

// appendClause adds a problem clause while assignments are active, e.g. a
// blocking clause during model enumeration. The two highest-level literals
// become the watches, so the watch invariant still holds when the solver
// later backtracks below their levels.
func (s *Solver) appendClause(c *Clause) {
	if c.Len() > 2 {
		for i := 1; i < c.Len(); i++ {
			if s.watchRank(c.Get(i)) > s.watchRank(c.First()) {
				c.swap(0, i)
			}
		}
		for i := 2; i < c.Len(); i++ {
			if s.watchRank(c.Get(i)) > s.watchRank(c.Second()) {
				c.swap(1, i)
			}
		}
	}
	s.wl.origs = append(s.wl.origs, c)
	s.watchClause(c)
}

// watchRank makes unbound literals better watch candidates than bound ones,
// and recently bound literals better candidates than older ones.
func (s *Solver) watchRank(l Lit) decLevel {
	if s.model[l.Var()] == 0 {
		return decLevel(1) << 30
	}
	return abs(s.model[l.Var()])
}

// addLearned appends a learned clause to the database and watches it.
func (s *Solver) addLearned(c *Clause) {
	s.wl.learned = append(s.wl.learned, c)
	s.watchClause(c)
	s.clauseBumpActivity(c)
}

// reduceLearned removes about half the learned clauses, keeping those that
// are locked (currently a propagation reason) or of low LBD.
func (s *Solver) reduceLearned() {
	learned := s.wl.learned
	if len(learned) == 0 {
		return
	}
	sort.Slice(learned, func(i, j int) bool {
		lbdI := learned[i].lbd()
		lbdJ := learned[j].lbd()
		// Sort by lbd, break ties by activity, worst clauses first
		return lbdI > lbdJ || (lbdI == lbdJ && learned[i].activity < learned[j].activity)
	})
	length := len(learned) / 2
	if learned[length].lbd() <= 3 { // Lots of good clauses, postpone reduction
		s.postponeNbMax()
	}
	nbRemoved := 0
	for i := 0; i < length; i++ {
		c := learned[i]
		if c.lbd() <= 2 || c.isLocked() {
			continue
		}
		nbRemoved++
		s.Stats.NbDeleted++
		learned[i] = learned[len(learned)-nbRemoved]
		s.unwatchClause(c)
	}
	s.wl.learned = learned[:len(learned)-nbRemoved]
}

// If l is negative, -lvl is returned. Else, lvl is returned.
func lvlToSignedLvl(l Lit, lvl decLevel) decLevel {
	if l.IsPositive() {
		return lvl
	}
	return -lvl
}

// Unifies the given literal at the given level and propagates to fixpoint.
// It returns the conflicting clause, or nil if no conflict arose.
// When lit is implied rather than decided, the caller must have set its
// reason beforehand.
func (s *Solver) unifyLiteral(lit Lit, lvl decLevel) *Clause {
	s.model[lit.Var()] = lvlToSignedLvl(lit, lvl)
	ptr := len(s.trail)
	s.trail = append(s.trail, lit)
	for ptr < len(s.trail) {
		cur := s.trail[ptr]
		for _, w := range s.wl.bin[cur] {
			v2 := w.other.Var()
			if assign := s.model[v2]; assign == 0 { // Other lit was unbounded: propagate
				s.reason[v2] = w.clause
				w.clause.lock()
				s.model[v2] = lvlToSignedLvl(w.other, lvl)
				s.trail = append(s.trail, w.other)
				s.Stats.NbPropagations++
			} else if (assign > 0) != w.other.IsPositive() { // Other lit was false too: conflict
				return w.clause
			}
		}
		if confl := s.propagateLong(cur, lvl); confl != nil {
			return confl
		}
		ptr++
	}
	return nil
}

// propagateLong inspects the clauses of length >= 3 for which a watch was
// just falsified by the assignment of lit. Satisfied clauses stay put,
// clauses with a spare non-false literal move their watch there, unit
// clauses propagate their last literal, and a fully falsified clause is
// returned as a conflict.
func (s *Solver) propagateLong(lit Lit, lvl decLevel) *Clause {
	occ := s.wl.occ[lit]
	kept := 0
	for idx := 0; idx < len(occ); idx++ {
		c := occ[idx]
		if c.First().Negation() == lit { // Keep the falsified watch at position 1
			c.swap(0, 1)
		}
		first := c.First()
		if s.litStatus(first) == Sat { // Satisfied through the other watch
			occ[kept] = c
			kept++
			continue
		}
		moved := false
		for i := 2; i < c.Len(); i++ {
			if other := c.Get(i); s.litStatus(other) != Unsat {
				c.swap(1, i)
				neg := c.Second().Negation()
				s.wl.occ[neg] = append(s.wl.occ[neg], c)
				moved = true
				break
			}
		}
		if moved { // c now watches another literal, drop it from this list
			continue
		}
		occ[kept] = c
		kept++
		if s.litStatus(first) == Unsat { // No true or free literal left: conflict
			for idx++; idx < len(occ); idx++ {
				occ[kept] = occ[idx]
				kept++
			}
			s.wl.occ[lit] = occ[:kept]
			return c
		}
		// first is the last free literal: the clause is unit
		v := first.Var()
		s.reason[v] = c
		c.lock()
		s.model[v] = lvlToSignedLvl(first, lvl)
		s.trail = append(s.trail, first)
		s.Stats.NbPropagations++
	}
	s.wl.occ[lit] = occ[:kept]
	return nil
}
