package cnf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunForcedModel(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Run(strings.NewReader("a b\n!a\n"), &sb))
	require.Equal(t, "SAT\na 0\nb 1\n", sb.String())
}

func TestRunUnsat(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Run(strings.NewReader("a\n!a\n"), &sb))
	require.Equal(t, "UNSAT\n", sb.String())
}

func TestRunUnitThenBlankLine(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Run(strings.NewReader("a\n\n"), &sb))
	require.Equal(t, "SAT\na 1\n", sb.String())
}

func TestRunLearnsForcedVariable(t *testing.T) {
	// Guessing a true falsifies one of the clauses, so a must be false in
	// every model even though no clause is unit to begin with.
	var sb strings.Builder
	require.NoError(t, Run(strings.NewReader("!a b\n!a !b\n\n"), &sb))
	out := sb.String()
	require.True(t, strings.HasPrefix(out, "SAT\n"), "got %q", out)
	require.Contains(t, out, "a 0")
}

func TestRunParseError(t *testing.T) {
	var sb strings.Builder
	err := Run(strings.NewReader("a !\n"), &sb)
	require.Error(t, err)
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	require.Empty(t, sb.String())
}
