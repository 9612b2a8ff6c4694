package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/verdict-sat/verdict/solver"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func solveString(t *testing.T, input string, opts options) result {
	t.Helper()
	return solveInput(strings.NewReader(input), "", testLogger(), opts)
}

func TestSolveInputSat(t *testing.T) {
	res := solveString(t, "a b\n!a c\n!b !c\n", defaultOptions())
	require.NoError(t, res.err)
	require.Equal(t, solver.Sat, res.status)
	lines := strings.Split(strings.TrimRight(res.out.String(), "\n"), "\n")
	require.Equal(t, "SAT", lines[0])
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[1], "a "))
	require.True(t, strings.HasPrefix(lines[2], "b "))
	require.True(t, strings.HasPrefix(lines[3], "c "))
}

func TestSolveInputUnsat(t *testing.T) {
	res := solveString(t, "a\n!a\n", defaultOptions())
	require.NoError(t, res.err)
	require.Equal(t, solver.Unsat, res.status)
	require.Equal(t, "UNSAT\n", res.out.String())
}

func TestSolveInputParseError(t *testing.T) {
	res := solveString(t, "a !\n", defaultOptions())
	require.Error(t, res.err)
	require.True(t, isParseFailure(res.err))
}

func TestSolveInputDimacs(t *testing.T) {
	opts := defaultOptions()
	opts.Format = "dimacs"
	res := solveString(t, "p cnf 2 2\n1 2 0\n-1 0\n", opts)
	require.NoError(t, res.err)
	require.Equal(t, solver.Sat, res.status)
	require.True(t, strings.HasPrefix(res.out.String(), "s SATISFIABLE\nv "))
}

func TestSolveInputBf(t *testing.T) {
	opts := defaultOptions()
	opts.Format = "bf"
	res := solveString(t, "a & (a -> b)", opts)
	require.NoError(t, res.err)
	require.Equal(t, solver.Sat, res.status)
	require.Equal(t, "SAT\na 1\nb 1\n", res.out.String())
}

func TestSolveInputBfUnsat(t *testing.T) {
	opts := defaultOptions()
	opts.Format = "bf"
	res := solveString(t, "a & ^a", opts)
	require.NoError(t, res.err)
	require.Equal(t, "UNSAT\n", res.out.String())
}

func TestSolveInputCount(t *testing.T) {
	opts := defaultOptions()
	opts.Count = true
	res := solveString(t, "a b\n", opts)
	require.NoError(t, res.err)
	require.Equal(t, "3\n", res.out.String())
}

func TestSolveInputSelfCheck(t *testing.T) {
	opts := defaultOptions()
	opts.SelfCheck = true
	res := solveString(t, "a b\n!a c\n!b !c\n", opts)
	require.NoError(t, res.err)
	require.Equal(t, solver.Sat, res.status)
}

func TestFormatOf(t *testing.T) {
	require.Equal(t, "dimacs", formatOf("pb.cnf"))
	require.Equal(t, "bf", formatOf("formula.bf"))
	require.Equal(t, "cnf", formatOf("clauses.txt"))
	require.Equal(t, "cnf", formatOf(""))
}

func TestExitCode(t *testing.T) {
	require.Equal(t, exitOK, exitCode([]result{{status: solver.Sat}, {status: solver.Unsat}}))
	require.Equal(t, exitInconclusive, exitCode([]result{{status: solver.Sat}, {status: solver.Indet}}))
	parseErr := solveString(t, "!\n", defaultOptions())
	require.Equal(t, exitParseError, exitCode([]result{{status: solver.Sat}, parseErr}))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestReportWriteFailure(t *testing.T) {
	res := solveString(t, "a\n", defaultOptions())
	require.NoError(t, res.err)
	code := report(brokenWriter{}, testLogger(), []result{res}, nil)
	require.Equal(t, exitFailure, code)
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("verdict", pflag.ContinueOnError)
	flags.Duration("timeout", 0, "")
	flags.Int64("max-conflicts", 0, "")
	return flags
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout": "2s", "count": true}`), 0o644))
	opts := defaultOptions()
	require.NoError(t, loadConfig(path, testFlags(), &opts))
	require.Equal(t, 2*time.Second, opts.Timeout)
	require.True(t, opts.Count)
	require.Equal(t, "auto", opts.Format)
}

func TestLoadConfigFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeout": "2s", "max_conflicts": 10}`), 0o644))
	flags := testFlags()
	require.NoError(t, flags.Set("timeout", "1s"))
	opts := defaultOptions()
	opts.Timeout = time.Second
	require.NoError(t, loadConfig(path, flags, &opts))
	require.Equal(t, time.Second, opts.Timeout)
	require.Equal(t, int64(10), opts.MaxConflicts)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tmeout": "2s"}`), 0o644))
	opts := defaultOptions()
	require.Error(t, loadConfig(path, testFlags(), &opts))
}
