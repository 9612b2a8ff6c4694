package solver

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	initNbMaxClauses  = 2000  // Maximum # of learned clauses, at first.
	incrNbMaxClauses  = 300   // By how much # of learned clauses is incremented at each reduction.
	incrPostponeNbMax = 1000  // By how much # of learned is increased when lots of good clauses are currently learned.
	clauseDecay       = 0.999 // By how much clauses bumping decays over time.
	defaultVarDecay   = 0.8   // On each var decay, how much the varInc should be decayed at startup.

	progressPeriod = 3 * time.Second // How often search statistics are logged when verbose.
)

// Stats are statistics about the resolution of the problem.
// They are provided for information purpose only.
type Stats struct {
	NbRestarts      int
	NbConflicts     int
	NbDecisions     int
	NbPropagations  int
	NbUnitLearned   int // How many unit clauses were learned
	NbBinaryLearned int // How many binary clauses were learned
	NbLearned       int // How many clauses were learned
	NbDeleted       int // How many clauses were deleted
}

// The level a decision was made.
// A negative value means "negative assignment at that level".
// A positive value means "positive assignment at that level".
type decLevel int

// A Model is a binding for several variables.
// It can be totally bound (i.e all vars have a true or false binding)
// or only partially (i.e some vars have no binding yet or their binding has no impact).
// Each var, in order, is associated with a binding. Bindings are implemented as
// decision levels:
// - a 0 value means the variable is free,
// - a positive value means the variable was set to true at the given decLevel,
// - a negative value means the variable was set to false at the given decLevel.
type Model []decLevel

func (m Model) String() string {
	bound := make(map[int]decLevel)
	for i := range m {
		if m[i] != 0 {
			bound[i+1] = m[i]
		}
	}
	return fmt.Sprintf("%v", bound)
}

// A Solver solves a given problem. It is the main data structure.
type Solver struct {
	Verbose      bool               // Indicates whether the solver should log progress information during solving. False by default
	Logger       logrus.FieldLogger // Where progress information is written when Verbose is true. Ignored if nil
	MaxConflicts int64              // Maximum # of conflicts before giving up. Unlimited if <= 0
	Timeout      time.Duration      // Time budget for a Solve, Enumerate or CountModels call. Unlimited if <= 0
	Stats        Stats              // Statistics about the solving process.

	nbVars    int
	status    Status
	wl        watcherList
	trail     []Lit // Current assignment stack
	model     Model // 0 means unbound, other value is a binding
	lastModel Model // Placeholder for last model found, useful when looking for several models
	activity  []float64
	polarity  []bool // Preferred sign for each var, set by phase saving
	// For each var, clause considered when it was unified.
	// If the var is not bound yet, or if it was bound by a decision, value is nil.
	reason       []*Clause
	varQueue     varHeap
	varInc       float64 // On each var bump, how big the increment should be
	clauseInc    float32 // On each clause bump, how big the increment should be
	varDecay     float64 // On each var decay, how much the varInc should be decayed
	restarts     restartSched
	interrupted  atomic.Bool
	deadline     time.Time // Zero value means no deadline
	nextProgress time.Time // When the next progress entry is due
	litsBuf      []Lit     // Reusable buffer for learnClause
}

// New makes a solver, given a problem as produced by ParseSlice or a parser
// from a companion package. The solver takes ownership of the problem:
// neither its clauses nor its model should be used elsewhere afterwards.
func New(problem *Problem) *Solver {
	if problem.Status == Unsat {
		return &Solver{status: Unsat}
	}
	nbVars := problem.NbVars
	s := &Solver{
		nbVars:    nbVars,
		status:    problem.Status,
		trail:     make([]Lit, len(problem.Units), nbVars),
		model:     problem.Model,
		activity:  make([]float64, nbVars),
		polarity:  make([]bool, nbVars),
		reason:    make([]*Clause, nbVars),
		varInc:    1.0,
		clauseInc: 1.0,
		varDecay:  defaultVarDecay,
		restarts:  newRestartSched(),
		litsBuf:   make([]Lit, 0, 64),
	}
	s.initWatcherList(problem.Clauses)
	s.varQueue = newVarHeap(s.activity)
	for i, lit := range problem.Units {
		if lit.IsPositive() {
			s.model[lit.Var()] = 1
		} else {
			s.model[lit.Var()] = -1
		}
		s.trail[i] = lit
	}
	return s
}

// Status returns the current status: Sat or Unsat once solving reached a
// verdict, Indet before solving or after a budgeted run gave up.
func (s *Solver) Status() Status {
	return s.status
}

// Interrupt makes the search stop as soon as possible, i.e before the next
// decision. The interrupted call returns Indet. It is safe to call from
// another goroutine. Interrupting a solver with no search in progress has
// no effect: each solving call starts with a fresh budget.
func (s *Solver) Interrupt() {
	s.interrupted.Store(true)
}

// resetBudget arms the time budget and clears a previous interrupt.
// It must be called at the beginning of each solving method.
func (s *Solver) resetBudget() {
	s.interrupted.Store(false)
	s.nextProgress = time.Now().Add(progressPeriod)
	if s.Timeout > 0 {
		s.deadline = time.Now().Add(s.Timeout)
	} else {
		s.deadline = time.Time{}
	}
}

// shouldStop tells whether the search must give up: an interrupt was
// requested or the conflict or time budget is exhausted. The deadline is
// only polled every few steps since reading the clock has a cost.
func (s *Solver) shouldStop() bool {
	if s.interrupted.Load() {
		return true
	}
	if s.MaxConflicts > 0 && int64(s.Stats.NbConflicts) >= s.MaxConflicts {
		return true
	}
	if s.deadline.IsZero() {
		return false
	}
	return (s.Stats.NbDecisions+s.Stats.NbConflicts)&127 == 0 && time.Now().After(s.deadline)
}

// litStatus returns whether the literal is made true (Sat) or false (Unsat) by the
// current bindings, or if it is unbounded (Indet).
func (s *Solver) litStatus(l Lit) Status {
	assign := s.model[l.Var()]
	if assign == 0 {
		return Indet
	}
	if assign > 0 == l.IsPositive() {
		return Sat
	}
	return Unsat
}

func (s *Solver) varDecayActivity() {
	s.varInc *= 1 / s.varDecay
}

func (s *Solver) varBumpActivity(v Var) {
	s.activity[v] += s.varInc
	if s.activity[v] > 1e100 { // Rescaling is needed to avoid overflowing
		for i := range s.activity {
			s.activity[i] *= 1e-100
		}
		s.varInc *= 1e-100
	}
	if s.varQueue.has(v) {
		s.varQueue.raise(v)
	}
}

// Decays each clause's activity.
func (s *Solver) clauseDecayActivity() {
	s.clauseInc *= 1 / clauseDecay
}

// Bumps the given clause's activity.
func (s *Solver) clauseBumpActivity(c *Clause) {
	if c.Learned() {
		c.activity += s.clauseInc
		if c.activity > 1e30 { // Rescale to avoid overflow
			for _, c2 := range s.wl.learned {
				c2.activity *= 1e-30
			}
			s.clauseInc *= 1e-30
		}
	}
}

// Chooses an unbound literal to be tested, or -1
// if all the variables are already bound.
func (s *Solver) chooseLit() Lit {
	v := Var(-1)
	for v == -1 && !s.varQueue.empty() {
		if v2 := s.varQueue.popMax(); s.model[v2] == 0 { // Ignore already bound vars
			v = v2
		}
	}
	if v == -1 {
		return Lit(-1)
	}
	s.Stats.NbDecisions++
	return v.SignedLit(!s.polarity[v])
}

func abs(val decLevel) decLevel {
	if val < 0 {
		return -val
	}
	return val
}

// cleanupBindings reverts all assignments made at a decLevel strictly above lvl.
// Each unbound variable keeps its last polarity and goes back to the order heap.
func (s *Solver) cleanupBindings(lvl decLevel) {
	i := 0
	for i < len(s.trail) && abs(s.model[s.trail[i].Var()]) <= lvl {
		i++
	}
	for j := len(s.trail) - 1; j >= i; j-- {
		lit := s.trail[j]
		v := lit.Var()
		s.model[v] = 0
		if s.reason[v] != nil {
			s.reason[v].unlock()
			s.reason[v] = nil
		}
		s.polarity[v] = lit.IsPositive()
		if !s.varQueue.has(v) {
			s.varQueue.add(v)
		}
	}
	s.trail = s.trail[:i]
}

// Given the last learnt clause and the levels at which vars were bound,
// returns the level to backtrack to and the literal to bind.
func backtrackData(c *Clause, model []decLevel) (btLevel decLevel, lit Lit) {
	btLevel = abs(model[c.Get(1).Var()])
	return btLevel, c.Get(0)
}

func (s *Solver) rebuildOrderHeap() {
	vs := make([]Var, 0, s.nbVars)
	for v := 0; v < s.nbVars; v++ {
		if s.model[v] == 0 {
			vs = append(vs, Var(v))
		}
	}
	s.varQueue.rebuild(vs)
}

// propagateAndSearch binds the given lit, propagates it and searches for a
// solution, until it is found, a restart is needed or the budget ran out.
func (s *Solver) propagateAndSearch(lit Lit, lvl decLevel) Status {
	for lit != -1 {
		if conflict := s.unifyLiteral(lit, lvl); conflict == nil { // Pick a new branch or restart
			if s.restarts.shouldRestart() {
				s.cleanupBindings(1)
				return Indet
			}
			if s.Stats.NbConflicts >= s.wl.idxReduce*s.wl.nbMax {
				s.wl.idxReduce = s.Stats.NbConflicts/s.wl.nbMax + 1
				s.reduceLearned()
				s.bumpNbMax()
			}
			if s.shouldStop() { // Interruptions happen between decisions, never inside a propagation
				return Indet
			}
			s.maybeLogProgress()
			lvl++
			lit = s.chooseLit()
		} else { // Deal with conflict
			s.Stats.NbConflicts++
			s.restarts.addConflict()
			if s.Stats.NbConflicts%5000 == 0 && s.varDecay < 0.95 {
				s.varDecay += 0.01
			}
			learnt, unit := s.learnClause(conflict, lvl)
			if learnt == nil { // A fact was learned: assert it and start over from the top
				s.Stats.NbUnitLearned++
				s.cleanupBindings(1)
				if conflict = s.unifyLiteral(unit, 1); conflict != nil { // Top-level conflict
					return s.setUnsat()
				}
				s.rebuildOrderHeap()
				if s.shouldStop() {
					return Indet
				}
				lit = s.chooseLit()
				lvl = 2
			} else {
				if learnt.Len() == 2 {
					s.Stats.NbBinaryLearned++
				}
				s.Stats.NbLearned++
				s.addLearned(learnt)
				if s.shouldStop() {
					return Indet
				}
				lvl, lit = backtrackData(learnt, s.model)
				s.cleanupBindings(lvl)
				s.reason[lit.Var()] = learnt
				learnt.lock()
			}
		}
	}
	return Sat
}

// Sets the status to Unsat.
func (s *Solver) setUnsat() Status {
	s.status = Unsat
	return Unsat
}

// Searches until a model is found, the problem is proved Unsat, a restart
// is needed or the budget ran out.
func (s *Solver) search() Status {
	lvl := decLevel(2) // Level starts at 2, for implementation reasons: 1 is for facts, 0 means "no level assigned yet"
	s.status = s.propagateAndSearch(s.chooseLit(), lvl)
	return s.status
}

// Solve solves the problem associated with the solver and returns the
// appropriate status: Sat, Unsat, or Indet when the conflict or time budget
// ran out or Interrupt was called before an answer was found.
func (s *Solver) Solve() Status {
	if s.status == Unsat {
		return s.status
	}
	s.resetBudget()
	s.status = Indet
	s.cleanupBindings(1) // Drop leftovers from a previous, possibly interrupted, call
	for s.status == Indet && !s.shouldStop() {
		s.search()
		if s.status == Indet && !s.shouldStop() {
			s.Stats.NbRestarts++
			s.restarts.nextRestart()
			s.rebuildOrderHeap()
		}
	}
	if s.status == Sat {
		s.lastModel = make(Model, len(s.model))
		copy(s.lastModel, s.model)
	}
	return s.status
}

// maybeLogProgress logs search statistics when the next entry is due. It is
// called on the search goroutine, between decisions, so the counters can be
// read without synchronization. The clock is only polled every few steps.
func (s *Solver) maybeLogProgress() {
	if !s.Verbose || s.Logger == nil {
		return
	}
	if (s.Stats.NbDecisions+s.Stats.NbConflicts)&127 != 0 || time.Now().Before(s.nextProgress) {
		return
	}
	s.nextProgress = time.Now().Add(progressPeriod)
	s.Logger.WithFields(logrus.Fields{
		"restarts":  s.Stats.NbRestarts,
		"conflicts": s.Stats.NbConflicts,
		"learned":   len(s.wl.learned),
		"deleted":   s.Stats.NbDeleted,
		"facts":     s.Stats.NbUnitLearned,
	}).Info("still searching")
}

// Enumerate looks for all the models of the problem and returns how many
// were found. If models is non-nil, each model is written to it as soon as
// it is discovered, and the channel is closed before returning.
// If stop is non-nil, closing it makes enumeration return early, once the
// ongoing search step completes.
// After a complete enumeration the solver's status is Unsat, since the
// blocking clauses now forbid every model.
func (s *Solver) Enumerate(models chan []bool, stop chan struct{}) int {
	if models != nil {
		defer close(models)
	}
	s.resetBudget()
	if s.status == Indet {
		s.cleanupBindings(1) // Drop leftovers from a previous, possibly interrupted, call
	} else if s.status == Sat && len(s.trail) < s.nbVars {
		s.status = Indet // The problem was trivially Sat: bind all vars before enumerating
	}
	nb := 0
	for s.status != Unsat {
		if stopRequested(stop) {
			return nb
		}
		for s.status == Indet && !s.shouldStop() {
			s.search()
			if s.status == Indet && !s.shouldStop() {
				s.Stats.NbRestarts++
				s.restarts.nextRestart()
				s.rebuildOrderHeap()
			}
		}
		if s.status != Sat { // The budget ran out before the next model
			return nb
		}
		nb++
		s.lastModel = make(Model, len(s.model))
		copy(s.lastModel, s.model)
		if models != nil {
			select {
			case models <- s.Model():
			case <-stop:
				return nb
			}
		}
		s.blockLastModel()
	}
	return nb
}

// CountModels returns the total number of models of the problem.
func (s *Solver) CountModels() int {
	return s.Enumerate(nil, nil)
}

func stopRequested(stop chan struct{}) bool {
	if stop == nil {
		return false
	}
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// blockLastModel makes sure the model currently on the trail will not be
// found again, by negating its decision literals. Implied literals are left
// out: any other model differs from this one on at least one decision.
func (s *Solver) blockLastModel() {
	s.status = Indet
	lits := s.decisionLits()
	switch len(lits) {
	case 0: // The model was fully forced: it was the last one
		s.status = Unsat
	case 1:
		s.propagateUnits(lits)
	default:
		c := NewClause(lits)
		s.appendClause(c)
		lit := lits[len(lits)-1]
		v := lit.Var()
		lvl := abs(s.model[v]) - 1
		s.cleanupBindings(lvl)
		s.reason[v] = c // Must be set here: propagateAndSearch won't do it
		s.status = s.propagateAndSearch(lit, lvl)
	}
}

// decisionLits returns the negation of all decision literals from the
// current model, ordered by decision level.
func (s *Solver) decisionLits() []Lit {
	if len(s.trail) == 0 {
		return nil
	}
	lastLit := s.trail[len(s.trail)-1]
	lvls := abs(s.model[lastLit.Var()])
	lits := make([]Lit, lvls-1)
	for v, r := range s.reason {
		if lvl := abs(s.model[v]); r == nil && lvl > 1 {
			// lvl-2: decision levels start at 2, above facts
			if s.model[v] < 0 {
				lits[lvl-2] = IntToLit(v + 1)
			} else {
				lits[lvl-2] = IntToLit(-v - 1)
			}
		}
	}
	return lits
}

// propagateUnits resets the solver to the fact level, then asserts and
// propagates the given facts.
func (s *Solver) propagateUnits(units []Lit) {
	for _, unit := range units {
		s.Stats.NbUnitLearned++
		s.cleanupBindings(1)
		if s.unifyLiteral(unit, 1) != nil {
			s.status = Unsat
			return
		}
		s.rebuildOrderHeap()
	}
}

// Model returns a slice that associates, to each variable, its binding.
// If no model was found yet, the method will panic.
func (s *Solver) Model() []bool {
	if s.lastModel == nil {
		panic("cannot call Model() from a solver that has not found one")
	}
	res := make([]bool, s.nbVars)
	for i, lvl := range s.lastModel {
		res[i] = lvl > 0
	}
	return res
}
