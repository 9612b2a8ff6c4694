package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ts := httptest.NewServer(newServer(logger, 1<<20, 0, 0).handler())
	t.Cleanup(ts.Close)
	return ts
}

func postSolve(t *testing.T, ts *httptest.Server, body string) (*http.Response, solveResponse) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/solve", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	var decoded solveResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestSolveSat(t *testing.T) {
	ts := testServer(t)
	resp, decoded := postSolve(t, ts, `{"formula": "a b\n!a c\n!b !c\n"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "SAT", decoded.Status)
	require.Len(t, decoded.Model, 3)
	require.True(t, decoded.Model["a"] || decoded.Model["b"])
}

func TestSolveUnsat(t *testing.T) {
	ts := testServer(t)
	resp, decoded := postSolve(t, ts, `{"formula": "a\n!a\n"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "UNSAT", decoded.Status)
	require.Nil(t, decoded.Model)
}

func TestSolveBfFormat(t *testing.T) {
	ts := testServer(t)
	resp, decoded := postSolve(t, ts, `{"formula": "a & (a -> b)", "format": "bf"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "SAT", decoded.Status)
	require.Equal(t, map[string]bool{"a": true, "b": true}, decoded.Model)
}

func TestSolveDimacsFormat(t *testing.T) {
	ts := testServer(t)
	resp, decoded := postSolve(t, ts, `{"formula": "p cnf 1 1\n-1 0\n", "format": "dimacs"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "SAT", decoded.Status)
	require.Equal(t, map[string]bool{"1": false}, decoded.Model)
}

func TestSolveBadRequests(t *testing.T) {
	ts := testServer(t)
	for _, body := range []string{
		`not json`,
		`{}`,
		`{"formula": "a !\n"}`,
		`{"formula": "a", "format": "opb"}`,
		`{"formula": "a", "fromat": "cnf"}`,
	} {
		t.Run(body, func(t *testing.T) {
			resp, _ := postSolve(t, ts, body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSolveRejectsGet(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/solve")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	ts := testServer(t)
	postSolve(t, ts, `{"formula": "a\n"}`)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `verdictd_solves_total{status="SAT"} 1`)
	require.Contains(t, string(body), "verdictd_solve_duration_seconds")
}
