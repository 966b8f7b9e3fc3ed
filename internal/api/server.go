package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/service"

	"github.com/rs/zerolog"
)

// Server exposes the HTTP API: users, items, bookings, item requests and the
// admin export trigger.
type Server struct {
	cfg      config.ServerConfig
	bookings *service.BookingService
	items    *service.ItemService
	users    *service.UserService
	requests *service.RequestService
	exporter domain.ReportWorker
	logger   *zerolog.Logger
	server   *http.Server
}

func NewServer(
	cfg config.ServerConfig,
	rateCfg config.RateLimitConfig,
	bookings *service.BookingService,
	items *service.ItemService,
	users *service.UserService,
	requests *service.RequestService,
	exporter domain.ReportWorker,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:      cfg,
		bookings: bookings,
		items:    items,
		users:    users,
		requests: requests,
		exporter: exporter,
		logger:   logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PATCH /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("POST /items", s.handleCreateItem)
	mux.HandleFunc("GET /items", s.handleListItems)
	mux.HandleFunc("GET /items/search", s.handleSearchItems)
	mux.HandleFunc("GET /items/{id}", s.handleGetItem)
	mux.HandleFunc("PATCH /items/{id}", s.handleUpdateItem)
	mux.HandleFunc("POST /items/{id}/comment", s.handleAddComment)

	mux.HandleFunc("POST /bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /bookings", s.handleListBookerBookings)
	mux.HandleFunc("GET /bookings/owner", s.handleListOwnerBookings)
	mux.HandleFunc("GET /bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("PATCH /bookings/{id}", s.handleDecideBooking)

	mux.HandleFunc("POST /requests", s.handleCreateRequest)
	mux.HandleFunc("GET /requests", s.handleOwnRequests)
	mux.HandleFunc("GET /requests/all", s.handleAllRequests)
	mux.HandleFunc("GET /requests/{id}", s.handleGetRequest)

	mux.HandleFunc("POST /admin/export/bookings", s.handleExportBookings)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	limiter := newRateLimiter(rateCfg)
	handler := loggingMiddleware(logger, limiter.Wrap(mux))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	fileName, err := s.exporter.EnqueueBookingsExport(r.Context())
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"file": fileName})
}
