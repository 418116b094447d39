package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/moneyhero"
	"github.com/etnz/moneyhero/api"
	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the hero over HTTP" }
func (*serveCmd) Usage() string {
	return `hero serve [-addr <host:port>]

  Starts the HTTP API: the player, the transactions and the achievements
  under /api, a websocket feed of game events on /api/events and the
  Prometheus metrics on /metrics. Stops on interrupt.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, overrides the configuration file")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s, err := openSession(moneyhero.WithMetrics(moneyhero.NewMetrics(reg)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	addr := s.cfg.Server.Addr
	if c.addr != "" {
		addr = c.addr
	}

	lg := logger()
	server := api.NewServer(s.engine, lg)
	defer server.Close()
	if s.cfg.Server.Metrics {
		server.EnableMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- httpServer.ListenAndServe() }()
	fmt.Fprintf(os.Stderr, "Serving %s on http://%s\n", s.engine.State().PlayerName, addr)

	select {
	case err := <-errc:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	case <-ctx.Done():
	}

	// Websocket clients are disconnected first, Shutdown does not wait for
	// hijacked connections.
	server.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Printf("[api] shutdown: %v", err)
	}
	return subcommands.ExitSuccess
}
