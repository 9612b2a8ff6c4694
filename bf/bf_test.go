package bf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolveSat(t *testing.T) {
	tests := []struct {
		name string
		f    Formula
	}{
		{"single var", Var("a")},
		{"negation", Not(Var("a"))},
		{"implication chain", And(Var("a"), Implies(Var("a"), Var("b")), Implies(Var("b"), Var("c")))},
		{"xor", Xor(Var("a"), Var("b"))},
		{"equivalence", Eq(Var("a"), Not(Var("b")))},
		{"or of ands", Or(And(Var("a"), Var("b")), And(Var("c"), Var("d")))},
		{"tautology", Or(Var("a"), Not(Var("a")))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := Solve(tt.f)
			require.NotNil(t, model, "formula %v should be satisfiable", tt.f)
			require.True(t, tt.f.Eval(model), "model %v does not satisfy %v", model, tt.f)
		})
	}
}

func TestSolveUnsat(t *testing.T) {
	tests := []struct {
		name string
		f    Formula
	}{
		{"contradiction", And(Var("a"), Not(Var("a")))},
		{"false", False},
		{"no middle ground", And(Or(Var("a"), Var("b")), Not(Var("a")), Not(Var("b")))},
		{"xor of equals", And(Xor(Var("a"), Var("b")), Eq(Var("a"), Var("b")))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Nil(t, Solve(tt.f))
		})
	}
}

func TestSolveTrue(t *testing.T) {
	model := Solve(True)
	require.NotNil(t, model)
	require.Empty(t, model)
}

func TestSolveBindsFormulaVarsOnly(t *testing.T) {
	f := Or(And(Var("a"), Var("b")), And(Var("c"), Var("d")))
	model := Solve(f)
	require.NotNil(t, model)
	for name := range model {
		require.False(t, IsAux(name), "auxiliary variable %q leaked into the model", name)
	}
	require.Len(t, model, 4)
}

func TestVars(t *testing.T) {
	f := Implies(Var("a"), And(Var("b"), Not(Var("c")), Var("a")))
	vars := Vars(f)
	require.Equal(t, 3, vars.Cardinality())
	require.True(t, vars.Contains("a"))
	require.True(t, vars.Contains("b"))
	require.True(t, vars.Contains("c"))
}

func TestToCNF(t *testing.T) {
	f := And(Or(Var("a"), Var("b")), Or(Not(Var("a")), Var("c")))
	inst := ToCNF(f)
	require.Equal(t, []string{"a", "b", "c"}, inst.Names)
	require.Equal(t, [][]int{{1, 2}, {-1, 3}}, inst.Clauses)
}

func TestToCNFNaming(t *testing.T) {
	// A disjunction of conjunctions needs auxiliary variables.
	f := Or(And(Var("a"), Var("b")), And(Var("c"), Var("d")))
	inst := ToCNF(f)
	var aux int
	for _, name := range inst.Names {
		if IsAux(name) {
			aux++
		}
	}
	require.Equal(t, 2, aux)
}

func TestUnique(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	model := Solve(Unique(names...))
	require.NotNil(t, model)
	nbTrue := 0
	for _, name := range names {
		require.Contains(t, model, name)
		if model[name] {
			nbTrue++
		}
	}
	require.Equal(t, 1, nbTrue)
}

func TestUniqueAtMostOne(t *testing.T) {
	f := And(Unique("a", "b", "c", "d", "e"), Var("b"), Var("d"))
	require.Nil(t, Solve(f))
}

func TestDimacs(t *testing.T) {
	var buf bytes.Buffer
	f := And(Or(Var("a"), Var("b")), Not(Var("a")))
	require.NoError(t, Dimacs(f, &buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "p cnf 2 2\n"), "unexpected output %q", out)
	require.Contains(t, out, "c a=1\n")
	require.Contains(t, out, "c b=2\n")
	require.Contains(t, out, "1 2 0\n")
	require.Contains(t, out, "-1 0\n")
}

func TestString(t *testing.T) {
	f := Implies(Var("a"), And(Var("b"), Not(Var("c"))))
	require.Equal(t, "^a | (b & ^c)", f.String())
}

func TestEvalPanicsOnMissingBinding(t *testing.T) {
	require.Panics(t, func() {
		Var("a").Eval(map[string]bool{"b": true})
	})
}
