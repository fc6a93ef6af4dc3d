package server

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pgvanniekerk/ezpool/pkg/threadpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var (
	//go:embed pages/hello.html
	helloPage []byte

	//go:embed pages/404.html
	notFoundPage []byte
)

const (
	statusOK       = "200 OK"
	statusNotFound = "404 NOT FOUND"
)

// Executor runs jobs in the background. threadpool.ThreadPool implements it.
type Executor interface {
	Execute(job threadpool.Job)
}

// Config represents the settings of a Server.
type Config struct {

	// SleepDelay is how long GET /sleep holds its worker before answering.
	SleepDelay time.Duration

	// MaxPending caps the connections accepted but not yet answered. The
	// accept loop waits once the cap is reached.
	MaxPending int64

	// ReadTimeout bounds the time spent reading a request. Zero disables it.
	ReadTimeout time.Duration

	// MetricsAddr, if set together with Gatherer, is where /metrics is served.
	MetricsAddr string

	// Gatherer provides the metrics exposed on MetricsAddr.
	Gatherer prometheus.Gatherer
}

// Server accepts TCP connections on a single goroutine and hands every
// connection to an Executor, which reads one HTTP/1.1 request, answers it
// and closes the connection.
type Server struct {
	cfg     Config
	pool    Executor
	logger  log.FieldLogger
	pending *semaphore.Weighted
}

// New creates a Server dispatching connections to pool.
func New(cfg Config, pool Executor, logger log.FieldLogger) *Server {
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = 1
	}
	return &Server{
		cfg:     cfg,
		pool:    pool,
		logger:  logger,
		pending: semaphore.NewWeighted(cfg.MaxPending),
	}
}

// Serve accepts connections on ln until ctx is canceled or accepting fails.
// It closes ln before returning. Connections already handed to the pool are
// answered by the pool, not by Serve.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("closing listener: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.accept(ctx, ln)
	})

	if s.cfg.MetricsAddr != "" && s.cfg.Gatherer != nil {
		srv := &http.Server{
			Addr:              s.cfg.MetricsAddr,
			Handler:           s.MetricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			s.logger.WithField("addr", s.cfg.MetricsAddr).Info("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
	}

	s.logger.WithField("addr", ln.Addr().String()).Info("listening")

	return g.Wait()
}

// MetricsHandler returns the handler serving /metrics from cfg.Gatherer.
func (s *Server) MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	return mux
}

// accept is the accept loop. It returns nil once ctx is canceled.
func (s *Server) accept(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		if err := s.pending.Acquire(ctx, 1); err != nil {
			_ = conn.Close()
			return nil
		}

		s.pool.Execute(func() {
			defer s.pending.Release(1)
			s.handle(conn)
		})
	}
}

// handle answers a single request on conn and closes it.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	logger := s.logger.WithField("remote", conn.RemoteAddr().String())

	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}

	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		logger.WithError(err).Warn("failed to read request")
		return
	}

	status, page := s.route(req)

	if err := writeResponse(conn, status, page); err != nil {
		logger.WithError(err).Warn("failed to write response")
		return
	}

	logger.WithFields(log.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
		"status": status,
	}).Info("request served")
}

// route picks the status line and page for req.
func (s *Server) route(req *http.Request) (string, []byte) {
	if req.Method != http.MethodGet {
		return statusNotFound, notFoundPage
	}

	switch req.URL.Path {
	case "/":
		return statusOK, helloPage
	case "/sleep":
		time.Sleep(s.cfg.SleepDelay)
		return statusOK, helloPage
	default:
		return statusNotFound, notFoundPage
	}
}

// writeResponse writes a complete HTTP/1.1 response carrying page.
func writeResponse(w io.Writer, status string, page []byte) error {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "HTTP/1.1 %s\r\n", status)
	fmt.Fprintf(buf, "Content-Type: text/html; charset=utf-8\r\n")
	fmt.Fprintf(buf, "Content-Length: %d\r\n", len(page))
	fmt.Fprintf(buf, "Connection: close\r\n\r\n")
	buf.Write(page)

	_, err := w.Write(buf.Bytes())
	return err
}
