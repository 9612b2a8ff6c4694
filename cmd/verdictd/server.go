package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/verdict-sat/verdict/bf"
	"github.com/verdict-sat/verdict/cnf"
	"github.com/verdict-sat/verdict/solver"
)

// server solves formulas received over HTTP. Its metrics live on a private
// registry, so several servers can coexist in one process, like several
// solver instances can.
type server struct {
	logger       *logrus.Logger
	registry     *prometheus.Registry
	solves       *prometheus.CounterVec
	duration     prometheus.Histogram
	maxBody      int64
	timeout      time.Duration
	maxConflicts int64
}

func newServer(logger *logrus.Logger, maxBody int64, timeout time.Duration, maxConflicts int64) *server {
	s := &server{
		logger:       logger,
		registry:     prometheus.NewRegistry(),
		maxBody:      maxBody,
		timeout:      timeout,
		maxConflicts: maxConflicts,
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verdictd_solves_total",
			Help: "Number of solve requests, by resulting status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "verdictd_solve_duration_seconds",
			Help: "Time spent solving formulas.",
		}),
	}
	s.registry.MustRegister(s.solves, s.duration)
	return s
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/solve", s.handleSolve)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return s.logRequests(mux)
}

// A solveRequest describes one problem to solve. The budget fields, when
// positive, tighten the server's defaults for this request only.
type solveRequest struct {
	Formula      string `mapstructure:"formula"`
	Format       string `mapstructure:"format"`
	TimeoutMs    int64  `mapstructure:"timeout_ms"`
	MaxConflicts int64  `mapstructure:"max_conflicts"`
}

type solveResponse struct {
	Status    string          `json:"status"`
	Model     map[string]bool `json:"model,omitempty"`
	Stats     solver.Stats    `json:"stats"`
	ElapsedMs int64           `json:"elapsed_ms"`
}

func (s *server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST is supported", http.StatusMethodNotAllowed)
		return
	}
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.logger.WithError(err).Warn("bad request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	inst, err := parseFormula(req.Formula, req.Format)
	if err != nil {
		s.logger.WithError(err).Warn("unparsable formula")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sol := solver.New(inst.Pb)
	sol.Timeout = s.timeout
	if req.TimeoutMs > 0 {
		sol.Timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	sol.MaxConflicts = s.maxConflicts
	if req.MaxConflicts > 0 {
		sol.MaxConflicts = req.MaxConflicts
	}

	// A dropped connection or a reached request deadline interrupts the search.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-r.Context().Done():
			sol.Interrupt()
		case <-done:
		}
	}()

	start := time.Now()
	status := sol.Solve()
	elapsed := time.Since(start)
	s.solves.WithLabelValues(status.String()).Inc()
	s.duration.Observe(elapsed.Seconds())

	resp := solveResponse{
		Status:    status.String(),
		Stats:     sol.Stats,
		ElapsedMs: elapsed.Milliseconds(),
	}
	if status == solver.Sat {
		resp.Model = namedModel(inst, sol.Model())
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithError(err).Warn("could not write response")
	}
}

// decodeRequest reads the JSON body into a solveRequest, rejecting unknown
// fields and bodies over the configured limit.
func (s *server) decodeRequest(w http.ResponseWriter, r *http.Request) (*solveRequest, error) {
	var raw map[string]interface{}
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "could not decode request body")
	}
	req := solveRequest{Format: "cnf"}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &req,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "invalid request")
	}
	if req.Formula == "" {
		return nil, errors.New("missing formula")
	}
	return &req, nil
}

func parseFormula(formula, format string) (*cnf.Instance, error) {
	switch format {
	case "cnf":
		return cnf.Parse(strings.NewReader(formula))
	case "dimacs":
		return cnf.ParseDimacs(strings.NewReader(formula))
	case "bf":
		f, err := bf.ParseString(formula)
		if err != nil {
			return nil, err
		}
		return bf.ToCNF(f), nil
	default:
		return nil, errors.Errorf("unknown format %q", format)
	}
}

// namedModel renders a model as name/value bindings, leaving out the
// auxiliary variables a bf translation may have added.
func namedModel(inst *cnf.Instance, model []bool) map[string]bool {
	res := make(map[string]bool, len(inst.Names))
	for v, name := range inst.Names {
		if !bf.IsAux(name) {
			res[name] = model[v]
		}
	}
	return res
}

// statusWriter remembers the status code written to a ResponseWriter.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(start).String(),
		}).Info("request served")
	})
}
