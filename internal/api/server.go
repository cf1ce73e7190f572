// Package api serves odds estimations and pool snapshots over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prize-odds/internal/logger"
	"github.com/yourusername/prize-odds/internal/models"
)

// SnapshotStore is the read side of the snapshot provider
type SnapshotStore interface {
	Snapshot(poolID string) (*models.OddsDataSnapshot, bool)
	State(poolID string) models.SnapshotState
	Knows(poolID string) bool
	Pools() []string
}

// Estimator answers estimation requests
type Estimator interface {
	Estimate(poolID string, req models.EstimationRequest) (models.Estimation, error)
}

// Config holds the configuration for the API server
type Config struct {
	Port           int
	AllowedOrigins []string
	// Locale is used when a request names none
	Locale      string
	EmptyString string
}

// Server is the odds HTTP API
type Server struct {
	cfg        Config
	store      SnapshotStore
	estimator  Estimator
	logger     *logrus.Logger
	access     *logger.AccessLogger
	httpServer *http.Server
}

// NewServer creates a new API server
func NewServer(cfg Config, store SnapshotStore, estimator Estimator, baseLogger *logrus.Logger) *Server {
	if baseLogger == nil {
		baseLogger = logger.Discard()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{
		cfg:       cfg,
		store:     store,
		estimator: estimator,
		logger:    baseLogger,
		access:    logger.NewAccessLogger(baseLogger),
	}
}

// Router returns the API handler with middleware and CORS applied
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.requestIDMiddleware, s.instrumentMiddleware)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/pools", s.handleListPools).Methods(http.MethodGet)
	v1.HandleFunc("/pools/{poolID}/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	v1.HandleFunc("/pools/{poolID}/odds", s.handleOdds).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})

	return c.Handler(router)
}

// Start serves the API in the background until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithField("port", s.cfg.Port).Info("API server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("API server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
