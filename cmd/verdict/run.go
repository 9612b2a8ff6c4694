package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/verdict-sat/verdict/bf"
	"github.com/verdict-sat/verdict/cnf"
	"github.com/verdict-sat/verdict/solver"
)

// options are the knobs shared by the flag surface and the config file.
type options struct {
	Format       string        `mapstructure:"format"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxConflicts int64         `mapstructure:"max_conflicts"`
	Count        bool          `mapstructure:"count"`
	Stats        bool          `mapstructure:"stats"`
	Verbose      bool          `mapstructure:"verbose"`
	SelfCheck    bool          `mapstructure:"self_check"`
}

func defaultOptions() options {
	return options{Format: "auto"}
}

// loadConfig reads default option values from a JSON file. Values given as
// flags take precedence over the file's.
func loadConfig(path string, flags *pflag.FlagSet, opts *options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "could not read config file")
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrapf(err, "invalid config file %q", path)
	}
	fileOpts := *opts
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      &fileOpts,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return errors.Wrapf(err, "invalid config file %q", path)
	}
	for name, apply := range map[string]func(){
		"format":        func() { opts.Format = fileOpts.Format },
		"timeout":       func() { opts.Timeout = fileOpts.Timeout },
		"max-conflicts": func() { opts.MaxConflicts = fileOpts.MaxConflicts },
		"count":         func() { opts.Count = fileOpts.Count },
		"stats":         func() { opts.Stats = fileOpts.Stats },
		"verbose":       func() { opts.Verbose = fileOpts.Verbose },
		"self-check":    func() { opts.SelfCheck = fileOpts.SelfCheck },
	} {
		if !flags.Changed(name) {
			apply()
		}
	}
	return nil
}

// result is the outcome of solving one input.
type result struct {
	out    bytes.Buffer
	status solver.Status
	err    error
}

// exitCode merges the outcomes of all inputs: a parse failure dominates,
// then any other failure, then an inconclusive verdict.
func exitCode(results []result) int {
	code := exitOK
	for i := range results {
		switch {
		case results[i].err != nil && isParseFailure(results[i].err):
			return exitParseError
		case results[i].err != nil:
			code = exitFailure
		case results[i].status == solver.Indet && code == exitOK:
			code = exitInconclusive
		}
	}
	return code
}

// isParseFailure tells syntax errors apart from I/O failures.
func isParseFailure(err error) bool {
	var pe cnf.ParseError
	if errors.As(err, &pe) {
		return true
	}
	var bfErr participle.Error
	return errors.As(err, &bfErr)
}

// run solves every input and writes the buffered outputs in argument order.
func run(w io.Writer, logger *logrus.Logger, opts options, args []string) int {
	if len(args) == 0 {
		res := solveInput(os.Stdin, "", logger, opts)
		return report(w, logger, []result{res}, nil)
	}
	results := make([]result, len(args))
	var g errgroup.Group
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				results[i].err = errors.Wrapf(err, "could not open %q", path)
				return nil
			}
			defer f.Close()
			results[i] = solveInput(f, path, logger, opts)
			return nil
		})
	}
	g.Wait()
	return report(w, logger, results, args)
}

// report prints the buffered outputs in input order and computes the exit code.
func report(w io.Writer, logger *logrus.Logger, results []result, args []string) int {
	for i := range results {
		if results[i].err != nil {
			logger.Error(results[i].err)
			continue
		}
		if len(args) > 1 {
			fmt.Fprintf(w, "c %s\n", args[i])
		}
		if _, err := io.Copy(w, &results[i].out); err != nil {
			results[i].err = errors.Wrap(err, "could not write verdict")
			logger.Error(results[i].err)
		}
	}
	return exitCode(results)
}

// solveInput parses one problem, solves it and renders the verdict in the
// convention of its input format.
func solveInput(r io.Reader, path string, logger *logrus.Logger, opts options) (res result) {
	format := opts.Format
	if format == "auto" {
		format = formatOf(path)
	}
	var inst *cnf.Instance
	var err error
	switch format {
	case "dimacs":
		inst, err = cnf.ParseDimacs(r)
	case "bf":
		var f bf.Formula
		if f, err = bf.Parse(r); err == nil {
			inst = bf.ToCNF(f)
		}
	case "cnf":
		inst, err = cnf.Parse(r)
	default:
		res.err = errors.Errorf("unknown format %q", format)
		res.status = solver.Indet
		return res
	}
	if err != nil {
		res.err = errors.Wrap(err, "could not parse problem")
		res.status = solver.Indet
		return res
	}
	s := solver.New(inst.Pb)
	s.Verbose = opts.Verbose
	s.Logger = logger
	s.MaxConflicts = opts.MaxConflicts
	s.Timeout = opts.Timeout
	if opts.Count {
		nb := s.CountModels()
		if opts.Stats {
			logStats(logger, s)
		}
		if s.Status() == solver.Indet { // The budget ran out: the count would be partial
			res.status = solver.Indet
			fmt.Fprintln(&res.out, solver.Indet)
			return res
		}
		res.status = solver.Unsat // A finished enumeration blocked every model
		fmt.Fprintln(&res.out, nb)
		return res
	}
	res.status = s.Solve()
	if opts.Stats {
		logStats(logger, s)
	}
	var model []bool
	if res.status == solver.Sat {
		model = s.Model()
		if opts.SelfCheck {
			if ok, falsified := cnf.Verify(inst, model); !ok {
				res.err = errors.Errorf("self-check failed: model falsifies clause %q", falsified)
				return res
			}
			logger.Debug("self-check passed")
		}
	}
	res.err = writeResult(&res.out, format, inst, res.status, model)
	return res
}

func formatOf(path string) string {
	switch filepath.Ext(path) {
	case ".cnf":
		return "dimacs"
	case ".bf":
		return "bf"
	default:
		return "cnf"
	}
}

func writeResult(w io.Writer, format string, inst *cnf.Instance, status solver.Status, model []bool) error {
	switch {
	case format == "dimacs":
		return cnf.WriteDimacsSolution(w, status, model)
	case status != solver.Sat:
		return cnf.WriteVerdict(w, status)
	case format == "bf":
		return writeBfSolution(w, inst, model)
	default:
		return cnf.WriteSolution(w, inst, model)
	}
}

// writeBfSolution prints the bindings of the formula's own variables, in
// lexicographic order. Auxiliary variables from the CNF translation are
// filtered out.
func writeBfSolution(w io.Writer, inst *cnf.Instance, model []bool) error {
	if err := cnf.WriteVerdict(w, solver.Sat); err != nil {
		return err
	}
	lines := make([]string, 0, len(inst.Names))
	for v, name := range inst.Names {
		if bf.IsAux(name) {
			continue
		}
		val := "0"
		if model[v] {
			val = "1"
		}
		lines = append(lines, name+" "+val)
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func logStats(logger *logrus.Logger, s *solver.Solver) {
	logger.WithFields(logrus.Fields{
		"conflicts":      s.Stats.NbConflicts,
		"decisions":      s.Stats.NbDecisions,
		"propagations":   s.Stats.NbPropagations,
		"restarts":       s.Stats.NbRestarts,
		"learned":        s.Stats.NbLearned,
		"unit_learned":   s.Stats.NbUnitLearned,
		"binary_learned": s.Stats.NbBinaryLearned,
		"deleted":        s.Stats.NbDeleted,
	}).Info("solver statistics")
}
