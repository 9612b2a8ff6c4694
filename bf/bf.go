package bf

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/verdict-sat/verdict/cnf"
	"github.com/verdict-sat/verdict/solver"
)

// auxPrefix starts the name of every variable introduced during the CNF
// translation. The "$" cannot appear in an identifier of the input syntax,
// so auxiliary names never collide with problem variables.
const auxPrefix = "$"

// IsAux is true iff name denotes a variable introduced by the CNF
// translation rather than one from the original formula.
func IsAux(name string) bool {
	return strings.HasPrefix(name, auxPrefix)
}

// A Formula is any kind of boolean formula, not necessarily in CNF.
type Formula interface {
	nnf() Formula
	String() string
	// Eval returns the truth value of the formula under the given bindings.
	// It panics if the model lacks a binding for one of the variables.
	Eval(model map[string]bool) bool
}

// Solve finds a model of the given formula.
// f is first translated to CNF, then handed to the solver. The returned map
// binds each of the formula's own variables; it is nil if f is unsatisfiable.
func Solve(f Formula) map[string]bool {
	inst := ToCNF(f)
	s := solver.New(inst.Pb)
	if s.Solve() != solver.Sat {
		return nil
	}
	m := s.Model()
	res := make(map[string]bool)
	for v, name := range inst.Names {
		if !IsAux(name) {
			res[name] = m[v]
		}
	}
	return res
}

// Vars returns the set of variable names appearing in f.
func Vars(f Formula) mapset.Set[string] {
	set := mapset.NewSet[string]()
	collectVars(f, set)
	return set
}

func collectVars(f Formula, set mapset.Set[string]) {
	switch f := f.(type) {
	case variable:
		set.Add(f.name)
	case lit:
		set.Add(f.v.name)
	case not:
		collectVars(f[0], set)
	case and:
		for _, sub := range f {
			collectVars(sub, set)
		}
	case or:
		for _, sub := range f {
			collectVars(sub, set)
		}
	}
}

// Dimacs writes the DIMACS CNF translation of the formula on w.
// The names of the formula's variables are associated with their integer
// counterparts in comment lines between the header and the clauses, e.g.
// "c a=1" when the variable "a" was given the index 1.
func Dimacs(f Formula, w io.Writer) error {
	inst := ToCNF(f)
	if _, err := fmt.Fprintf(w, "p cnf %d %d\n", len(inst.Names), len(inst.Clauses)); err != nil {
		return fmt.Errorf("could not write DIMACS output: %v", err)
	}
	named := make([]string, 0, len(inst.Names))
	for _, name := range inst.Names {
		if !IsAux(name) {
			named = append(named, name)
		}
	}
	sort.Strings(named)
	for _, name := range named {
		idx := 1 + indexOf(inst.Names, name)
		if _, err := fmt.Fprintf(w, "c %s=%d\n", name, idx); err != nil {
			return fmt.Errorf("could not write DIMACS output: %v", err)
		}
	}
	for _, clause := range inst.Clauses {
		toks := make([]string, 0, len(clause)+1)
		for _, l := range clause {
			toks = append(toks, fmt.Sprint(l))
		}
		toks = append(toks, "0")
		if _, err := fmt.Fprintln(w, strings.Join(toks, " ")); err != nil {
			return fmt.Errorf("could not write DIMACS output: %v", err)
		}
	}
	return nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// The "true" constant.
type trueConst struct{}

// True is the constant denoting a tautology.
var True Formula = trueConst{}

func (t trueConst) nnf() Formula   { return t }
func (t trueConst) String() string { return "⊤" }

func (t trueConst) Eval(model map[string]bool) bool { return true }

// The "false" constant.
type falseConst struct{}

// False is the constant denoting a contradiction.
var False Formula = falseConst{}

func (f falseConst) nnf() Formula   { return f }
func (f falseConst) String() string { return "⊥" }

func (f falseConst) Eval(model map[string]bool) bool { return false }

// Var generates a named boolean variable in a formula.
func Var(name string) Formula {
	return variable{name: name}
}

func auxVariable(name string) variable {
	return variable{name: auxPrefix + name}
}

type variable struct {
	name string
}

func (v variable) nnf() Formula {
	return lit{v: v}
}

func (v variable) String() string {
	return v.name
}

func (v variable) Eval(model map[string]bool) bool {
	b, ok := model[v.name]
	if !ok {
		panic(fmt.Errorf("model lacks a binding for variable %s", v.name))
	}
	return b
}

type lit struct {
	v      variable
	signed bool
}

func (l lit) nnf() Formula {
	return l
}

func (l lit) String() string {
	if l.signed {
		return "^" + l.v.name
	}
	return l.v.name
}

func (l lit) Eval(model map[string]bool) bool {
	b := l.v.Eval(model)
	if l.signed {
		return !b
	}
	return b
}

// Not represents a negation. It negates the given subformula.
func Not(f Formula) Formula {
	return not{f}
}

type not [1]Formula

func (n not) nnf() Formula {
	switch f := n[0].(type) {
	case variable:
		return lit{v: f, signed: true}
	case lit:
		f.signed = !f.signed
		return f
	case not:
		return f[0].nnf()
	case and:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = not{sub}
		}
		return or(subs).nnf()
	case or:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = not{sub}
		}
		return and(subs).nnf()
	case trueConst:
		return False
	case falseConst:
		return True
	default:
		panic("invalid formula type")
	}
}

func (n not) String() string {
	return "^" + wrap(n[0])
}

func (n not) Eval(model map[string]bool) bool {
	return !n[0].Eval(model)
}

// And generates a conjunction of subformulas.
func And(subs ...Formula) Formula {
	return and(subs)
}

type and []Formula

func (a and) nnf() Formula {
	var res and
	for _, s := range a {
		nnf := s.nnf()
		switch nnf := nnf.(type) {
		case and: // Flatten: nested "and"s get to the higher level
			res = append(res, nnf...)
		case trueConst: // True is ignored
		case falseConst:
			return False
		default:
			res = append(res, nnf)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	if len(res) == 0 {
		return True
	}
	return res
}

func (a and) String() string {
	return joinSubs(a, " & ")
}

func (a and) Eval(model map[string]bool) bool {
	res := true
	for _, s := range a {
		res = s.Eval(model) && res
	}
	return res
}

// Or generates a disjunction of subformulas.
func Or(subs ...Formula) Formula {
	return or(subs)
}

type or []Formula

func (o or) nnf() Formula {
	var res or
	for _, s := range o {
		nnf := s.nnf()
		switch nnf := nnf.(type) {
		case or: // Flatten: nested "or"s get to the higher level
			res = append(res, nnf...)
		case falseConst: // False is ignored
		case trueConst:
			return True
		default:
			res = append(res, nnf)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	if len(res) == 0 {
		return False
	}
	return res
}

func (o or) String() string {
	return joinSubs(o, " | ")
}

func (o or) Eval(model map[string]bool) bool {
	res := false
	for _, s := range o {
		res = s.Eval(model) || res
	}
	return res
}

// wrap renders f, parenthesized unless it is atomic.
func wrap(f Formula) string {
	switch f.(type) {
	case variable, lit, not, trueConst, falseConst:
		return f.String()
	default:
		return "(" + f.String() + ")"
	}
}

func joinSubs(subs []Formula, op string) string {
	strs := make([]string, len(subs))
	for i, f := range subs {
		strs[i] = wrap(f)
	}
	return strings.Join(strs, op)
}

// Implies indicates a subformula implies another one.
func Implies(f1, f2 Formula) Formula {
	return or{not{f1}, f2}
}

// Eq indicates a subformula is equivalent to another one.
func Eq(f1, f2 Formula) Formula {
	return and{or{not{f1}, f2}, or{f1, not{f2}}}
}

// Xor indicates exactly one of the two given subformulas is true.
func Xor(f1, f2 Formula) Formula {
	return and{or{not{f1}, not{f2}}, or{f1, f2}}
}

// Unique indicates exactly one of the given variables must be true.
// It might create auxiliary variables to reduce the number of generated clauses.
func Unique(vars ...string) Formula {
	vars2 := make([]Formula, len(vars))
	for i, v := range vars {
		vars2[i] = Var(v)
	}
	return uniqueRec(vars2...)
}

// uniqueSmall generates the pairwise encoding, suitable when the number of
// variables is small (typically <= 4).
func uniqueSmall(vars ...Formula) Formula {
	res := make([]Formula, 1, 1+(len(vars)*len(vars)-1)/2)
	res[0] = Or(vars...)
	for i := 0; i < len(vars)-1; i++ {
		for j := i + 1; j < len(vars); j++ {
			res = append(res, Or(Not(vars[i]), Not(vars[j])))
		}
	}
	return And(res...)
}

// uniqueRec splits the variables over a virtual grid: exactly one row and
// exactly one column hold a true variable, recursively.
func uniqueRec(vars ...Formula) Formula {
	nbVars := len(vars)
	if nbVars <= 4 {
		return uniqueSmall(vars...)
	}
	allNames := make([]string, len(vars))
	for i := range vars {
		allNames[i] = vars[i].String()
	}
	fullName := strings.Join(allNames, "-")
	sqrt := math.Sqrt(float64(nbVars))
	nbRows := int(sqrt + 0.5)
	nbCols := int(math.Ceil(sqrt))
	rows := make([]Formula, nbRows)
	rowsF := make([][]Formula, nbRows)
	for i := range rows {
		rows[i] = auxVariable(fmt.Sprintf("row-%d-%s", i, fullName))
	}
	cols := make([]Formula, nbCols)
	colsF := make([][]Formula, nbCols)
	for i := range cols {
		cols[i] = auxVariable(fmt.Sprintf("col-%d-%s", i, fullName))
	}
	for i, v := range vars {
		rowsF[i/nbCols] = append(rowsF[i/nbCols], v)
		colsF[i%nbCols] = append(colsF[i%nbCols], v)
	}
	res := make([]Formula, 0, nbRows+nbCols+2)
	for i := range rows {
		res = append(res, Eq(rows[i], Or(rowsF[i]...)))
	}
	for i := range cols {
		res = append(res, Eq(cols[i], Or(colsF[i]...)))
	}
	res = append(res, uniqueRec(rows...))
	res = append(res, uniqueRec(cols...))
	return And(res...)
}

// A translation accumulates the clauses of the CNF form of a formula,
// interning variable names as they appear.
type translation struct {
	names   []string
	idx     map[string]int // 1-based index of each name
	clauses [][]int
}

// litValue returns the signed index associated with the given literal,
// interning its variable first if needed.
func (t *translation) litValue(l lit) int {
	val, ok := t.idx[l.v.name]
	if !ok {
		t.names = append(t.names, l.v.name)
		val = len(t.names)
		t.idx[l.v.name] = val
	}
	if l.signed {
		return -val
	}
	return val
}

// fresh creates an auxiliary variable and returns its index.
func (t *translation) fresh() int {
	val := len(t.names) + 1
	name := fmt.Sprintf("%s%d", auxPrefix, val)
	t.names = append(t.names, name)
	t.idx[name] = val
	return val
}

// ToCNF translates the formula to conjunctive normal form.
// The instance's names hold the formula's variables in order of first use
// during the translation, followed by the auxiliary variables created for
// large disjunctions of conjunctions (the classic naming transform, which
// keeps the translation polynomial).
func ToCNF(f Formula) *cnf.Instance {
	t := &translation{idx: map[string]int{}}
	t.clauses = t.cnfRec(f.nnf())
	return &cnf.Instance{
		Pb:      solver.ParseSliceNb(t.clauses, len(t.names)),
		Names:   t.names,
		Clauses: t.clauses,
	}
}

// cnfRec translates an NNF formula into clauses.
func (t *translation) cnfRec(f Formula) [][]int {
	switch f := f.(type) {
	case lit:
		return [][]int{{t.litValue(f)}}
	case and:
		var res [][]int
		for _, sub := range f {
			res = append(res, t.cnfRec(sub)...)
		}
		return res
	case or:
		var res [][]int
		var lits []int
		for _, sub := range f {
			switch sub := sub.(type) {
			case lit:
				lits = append(lits, t.litValue(sub))
			case and:
				d := t.fresh()
				lits = append(lits, d)
				for _, sub2 := range sub {
					sub2CNF := t.cnfRec(sub2)
					for _, clause := range sub2CNF {
						res = append(res, append(clause, -d))
					}
				}
			default:
				panic("invalid NNF formula: or inside or")
			}
		}
		res = append(res, lits)
		return res
	case trueConst: // A true clause is no clause at all
		return nil
	case falseConst: // The empty clause: the problem is trivially unsatisfiable
		return [][]int{{}}
	default:
		panic("invalid NNF formula")
	}
}
