// Command verdictd serves the solver over HTTP.
//
// POST /solve takes a JSON body holding a formula and an optional budget and
// answers with the verdict, the model when there is one and solver
// statistics. GET /metrics exposes prometheus counters and GET /healthz
// always answers 200.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		addr         string
		logLevel     string
		maxBody      int64
		timeout      time.Duration
		maxConflicts int64
	)
	cmd := &cobra.Command{
		Use:           "verdictd",
		Short:         "An HTTP SAT solving service",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(level)
			srv := newServer(logger, maxBody, timeout, maxConflicts)
			return serve(logger, addr, srv.handler())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", ":8080", "address to listen on")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.Int64Var(&maxBody, "max-body", 16<<20, "maximum request body size, in bytes")
	flags.DurationVar(&timeout, "timeout", 0, "default time budget per request (0: none)")
	flags.Int64Var(&maxConflicts, "max-conflicts", 0, "default conflict budget per request (0: no limit)")
	if err := cmd.Execute(); err != nil {
		logrus.New().Error(err)
		os.Exit(1)
	}
}

// serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// gracefully.
func serve(logger *logrus.Logger, addr string, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	httpServer := &http.Server{Addr: addr, Handler: handler}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", addr).Info("listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
