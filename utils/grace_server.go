package utils

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	DEFAULT_READ_TIMEOUT     = 60 * time.Second
	DEFAULT_WRITE_TIMEOUT    = DEFAULT_READ_TIMEOUT
	DEFAULT_SHUTDOWN_TIMEOUT = 30 * time.Second
)

// Server wraps http.Server with signal driven shutdown and cleanup hooks.
type Server struct {
	*http.Server

	shutdownTimeout time.Duration
	signalChan      chan os.Signal
	done            chan struct{}
	onShutdown      []func()
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		shutdownTimeout: DEFAULT_SHUTDOWN_TIMEOUT,
		signalChan:      make(chan os.Signal, 1),
		done:            make(chan struct{}),
	}
}

// OnShutdown registers fn to run after in-flight requests have drained.
func (srv *Server) OnShutdown(fn func()) {
	srv.onShutdown = append(srv.onShutdown, fn)
}

// ListenAndServe listens on srv.Addr and serves until SIGINT or SIGTERM.
func (srv *Server) ListenAndServe() error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	signal.Notify(srv.signalChan, syscall.SIGINT, syscall.SIGTERM)
	return srv.Serve(ln)
}

// Serve serves on ln until a shutdown signal arrives, then waits for the
// drain and the cleanup hooks to finish.
func (srv *Server) Serve(ln net.Listener) error {
	go srv.awaitSignal()
	if err := srv.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-srv.done
	return nil
}

func (srv *Server) awaitSignal() {
	sig := <-srv.signalChan
	signal.Stop(srv.signalChan)
	Logger.Info("shutting down HTTP server", zap.String("signal", sig.String()))
	srv.shutdown()
}

func (srv *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), srv.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		Logger.Error("HTTP server shutdown failed", zap.Error(err))
	} else {
		Logger.Info("HTTP server shutdown complete")
	}
	for _, fn := range srv.onShutdown {
		fn()
	}
	close(srv.done)
}

// GraceServer starts an HTTP server that drains on SIGINT/SIGTERM. cleanup
// functions run once the server has shut down.
func GraceServer(addr string, handler http.Handler, cleanup ...func()) error {
	srv := NewServer(addr, handler, DEFAULT_READ_TIMEOUT, DEFAULT_WRITE_TIMEOUT)
	for _, fn := range cleanup {
		srv.OnShutdown(fn)
	}
	return srv.ListenAndServe()
}
