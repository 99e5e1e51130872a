package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/liveness"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

type Server struct {
	httpServer *http.Server
	logger     *logger_i.Logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	Pingers          []*liveness.Pinger
	// Closers run last, after workers have drained. Stores go here.
	Closers       []func()
	CloseServices context.CancelFunc
}

func New(listenAddr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         listenAddr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

// ListenAndServe blocks until the listener stops. A graceful shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Server is listening at", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err.Error(), "addr", s.httpServer.Addr)
		return err
	}
	return nil
}

// ShutDownHandler blocks until a signal arrives, then stops intake before draining workers.
func (s *Server) ShutDownHandler(params ShutdownParams) {
	state := <-params.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.Shutdown(ctx, params)
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gracefully shut down")
	case <-ctx.Done():
		s.logger.Error("Force shut down")
		os.Exit(1)
	}
}

func (s *Server) Shutdown(ctx context.Context, params ShutdownParams) {
	s.httpServer.SetKeepAlivesEnabled(false)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Could not shutdown gracefully", "error", err)
	}

	for _, p := range params.Pingers {
		p.Stop()
	}

	//close workers
	if params.WorkerStop != nil {
		close(params.WorkerStop)
	}
	if params.Group != nil {
		params.Group.Wait()
	}
	for _, closeFn := range params.Closers {
		closeFn()
	}
	if params.CloseServices != nil {
		params.CloseServices()
	}
	if params.StopExecution != nil {
		close(params.StopExecution)
	}
}
