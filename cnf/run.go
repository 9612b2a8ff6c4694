package cnf

import (
	"io"

	"github.com/verdict-sat/verdict/solver"
)

// Run reads a problem from r in the named clause format, solves it and writes
// the verdict to w: "SAT" and the model when the problem is satisfiable,
// "UNSAT" when it is not.
func Run(r io.Reader, w io.Writer) error {
	inst, err := Parse(r)
	if err != nil {
		return err
	}
	s := solver.New(inst.Pb)
	if s.Solve() == solver.Sat {
		return WriteSolution(w, inst, s.Model())
	}
	return WriteVerdict(w, solver.Unsat)
}
