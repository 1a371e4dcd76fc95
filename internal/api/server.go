// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/split-ledger/internal/service"
	"github.com/split-ledger/internal/types"
)

// Service interfaces for dependency injection and testing

// DashboardServiceInterface defines the interface for dashboard operations
type DashboardServiceInterface interface {
	AddFriend(ctx context.Context, name, walletInput string) (*types.Friend, error)
	Friends() []*types.Friend
	SetFriendSelected(friendID string, selected bool) error
	ClearSelection()
	FormGroup(ctx context.Context, name string) (*types.Group, error)
	Groups() []*types.Group
	CreateSplit(ctx context.Context, input *service.CreateSplitInput) (*types.SplitData, error)
	Split(ctx context.Context, splitID string) (*types.SplitData, error)
	Splits(ctx context.Context) ([]*types.SplitData, error)
	ResolveName(ctx context.Context, field, name string) (*service.ResolveOutcome, error)
	ResolveAddress(ctx context.Context, field, address string) *service.ResolveOutcome
	UploadStatus() (types.UploadState, string)
	ClearUploadError()
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	dashboard  DashboardServiceInterface
	config     *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new API server instance.
func NewServer(config *ServerConfig, dashboard DashboardServiceInterface) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		dashboard: dashboard,
		config:    config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	// Set up middleware (order matters!)
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(CompressionMiddleware)

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// API routes
	api := s.router.PathPrefix("/api").Subrouter()

	// Friend endpoints
	api.HandleFunc("/friends", s.handleAddFriend).Methods("POST")
	api.HandleFunc("/friends", s.handleListFriends).Methods("GET")
	api.HandleFunc("/friends/{id}/selection", s.handleSetSelection).Methods("POST")
	api.HandleFunc("/friends/selection", s.handleClearSelection).Methods("DELETE")

	// Group endpoints
	api.HandleFunc("/groups", s.handleFormGroup).Methods("POST")
	api.HandleFunc("/groups", s.handleListGroups).Methods("GET")

	// Split endpoints
	api.HandleFunc("/splits", s.handleCreateSplit).Methods("POST")
	api.HandleFunc("/splits", s.handleListSplits).Methods("GET")
	api.HandleFunc("/splits/{id}", s.handleGetSplit).Methods("GET")

	// Resolution endpoints
	api.HandleFunc("/resolve/name", s.handleResolveName).Methods("POST")
	api.HandleFunc("/resolve/address", s.handleResolveAddress).Methods("POST")

	// Upload status endpoints
	api.HandleFunc("/status/upload", s.handleUploadStatus).Methods("GET")
	api.HandleFunc("/status/upload", s.handleClearUploadError).Methods("DELETE")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "split-ledger",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
