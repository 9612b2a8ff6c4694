package cnf

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/verdict-sat/verdict/solver"
)

// WriteSolution prints a satisfying assignment: a "SAT" line followed by one
// "<name> <1|0>" line per variable, in order of first appearance.
func WriteSolution(w io.Writer, inst *Instance, model []bool) error {
	lines := lo.Map(inst.Names, func(name string, v int) string {
		if model[v] {
			return name + " 1"
		}
		return name + " 0"
	})
	out := append([]string{solver.Sat.String()}, lines...)
	_, err := io.WriteString(w, strings.Join(out, "\n")+"\n")
	return err
}

// WriteVerdict prints the status line alone, for verdicts that carry no model.
func WriteVerdict(w io.Writer, status solver.Status) error {
	_, err := fmt.Fprintln(w, status)
	return err
}

// WriteDimacsSolution prints the verdict using the DIMACS output conventions:
// an "s" status line and, when a model was found, a "v" line binding each
// variable index.
func WriteDimacsSolution(w io.Writer, status solver.Status, model []bool) error {
	if status != solver.Sat {
		verdict := "s INDETERMINATE\n"
		if status == solver.Unsat {
			verdict = "s UNSATISFIABLE\n"
		}
		_, err := io.WriteString(w, verdict)
		return err
	}
	var sb strings.Builder
	sb.WriteString("s SATISFIABLE\nv ")
	for v, val := range model {
		if val {
			fmt.Fprintf(&sb, "%d ", v+1)
		} else {
			fmt.Fprintf(&sb, "%d ", -v-1)
		}
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// Verify reports whether the model satisfies every clause of the instance as
// it was read, before simplification. When it does not, the first falsified
// clause is returned in the input syntax.
func Verify(inst *Instance, model []bool) (ok bool, falsified string) {
	bad, found := lo.Find(inst.Clauses, func(clause []int) bool {
		return !lo.SomeBy(clause, func(l int) bool {
			if l < 0 {
				return !model[-l-1]
			}
			return model[l-1]
		})
	})
	if !found {
		return true, ""
	}
	return false, clauseString(bad, inst.Names)
}

func clauseString(clause []int, names []string) string {
	toks := lo.Map(clause, func(l int, _ int) string {
		if l < 0 {
			return "!" + names[-l-1]
		}
		return names[l-1]
	})
	return strings.Join(toks, " ")
}
