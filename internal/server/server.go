package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/virtualta/virtualta/internal/answer"
	"github.com/virtualta/virtualta/internal/corpus"
	"github.com/virtualta/virtualta/internal/retriever"
)

const (
	// Version reported by the root endpoint.
	Version = "1.0"

	// DefaultQueryTimeout bounds one /query request end to end. It
	// covers the embedding call plus the generation call.
	DefaultQueryTimeout = 120 * time.Second

	shutdownTimeout = 30 * time.Second
)

// Config holds server configuration.
type Config struct {
	Addr         string
	QueryTimeout time.Duration
}

// Server is the HTTP adapter over the retriever and assembler.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux

	retriever *retriever.Retriever
	assembler *answer.Assembler
	corpus    *corpus.Corpus

	generatorName string
	queryTimeout  time.Duration
}

// New wires the query pipeline into an HTTP server.
func New(cfg Config, ret *retriever.Retriever, asm *answer.Assembler, store *corpus.Corpus, generatorName string) *Server {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	s := &Server{
		router:        http.NewServeMux(),
		retriever:     ret,
		assembler:     asm,
		corpus:        store,
		generatorName: generatorName,
		queryTimeout:  cfg.QueryTimeout,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      corsMiddleware(loggingMiddleware(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.QueryTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /query", s.handleQuery)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /{$}", s.handleRoot)
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM, then drains in-flight
// requests before returning.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-stop:
	}
	log.Println("server: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("server: stopped")
	return nil
}
