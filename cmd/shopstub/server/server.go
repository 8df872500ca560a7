// Package server provides an importable stand-in for the shop under test.
//
// It serves the HTML pages the page objects drive (same selectors as the
// public site) and the JSON API under /api, backed by an in-memory store.
// Tests start it on a random port, point the suite at Addr and shut it down
// afterwards; cmd/shopstub runs it standalone.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/thompsonoloko-droid/automation-e2e/internal/logging"
)

// Flaky reproduces the public site's UI quirks.
type Flaky struct {
	ConsentOverlay    bool // Cover the first page view with a consent dialog
	DetailFailures    int  // Answer the first N product detail requests with 503
	SuppressModalOnce bool // Skip the add-to-cart modal on the first add
}

// Config holds server configuration options.
type Config struct {
	Addr         string        // Listen address (e.g., ":8080" or ":0" for random port)
	ReadTimeout  time.Duration // HTTP read timeout
	WriteTimeout time.Duration // HTTP write timeout
	Flaky        Flaky         // UI quirks to reproduce
	Logger       *zap.Logger   // Request log (default: no-op)
}

// DefaultConfig returns a configuration suitable for testing.
// Uses ":0" to bind to a random available port.
func DefaultConfig() Config {
	return Config{
		Addr:         ":0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// FlakyConfig is DefaultConfig with every quirk enabled once.
func FlakyConfig() Config {
	cfg := DefaultConfig()
	cfg.Flaky = Flaky{
		ConsentOverlay:    true,
		DetailFailures:    1,
		SuppressModalOnce: true,
	}
	return cfg
}

// Server is the shop stub.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	mu         sync.Mutex
	running    bool

	store *Store
	log   *zap.Logger
	flaky Flaky

	consentShown   atomic.Bool
	modalSkipped   atomic.Bool
	detailFailures atomic.Int64
	adHits         atomic.Int64
}

// NewServer creates a new server with the given configuration.
// The server is not started until Start() is called.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Flaky.DetailFailures < 0 {
		return nil, fmt.Errorf("flaky detail failures must not be negative, got %d", cfg.Flaky.DetailFailures)
	}

	s := &Server{
		store: NewStore(),
		log:   logging.OrNop(cfg.Logger),
		flaky: cfg.Flaky,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", s.apiRoutes)

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/signup", s.handleSignup)
	r.Get("/signup", s.handleSignupPage)
	r.Post("/signup/create", s.handleCreateAccount)
	r.Get("/logout", s.handleLogout)
	r.Get("/products", s.handleProducts)
	r.Get("/product_details/{id}", s.handleProductDetail)
	r.Get("/add_to_cart/{id}", s.handleAddToCart)
	r.Get("/view_cart", s.handleViewCart)
	r.Get("/checkout", s.handleCheckout)
	r.Get("/payment", s.handlePaymentPage)
	r.Post("/payment", s.handlePayment)
	r.Get("/contact_us", s.handleContactUs)
	r.Get("/static/*", s.handleStatic)
	r.Get("/pagead/*", s.handleAd)

	return r
}

// requestLogger logs each request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Handler returns the router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Store exposes the in-memory store for seeding and inspection.
func (s *Server) Store() *Store {
	return s.store
}

// AdHits counts requests that reached the fake ad endpoint.
func (s *Server) AdHits() int64 {
	return s.adHits.Load()
}

// Start begins listening and serving HTTP requests.
// Returns the actual address the server is listening on (useful when port is 0).
// This method is non-blocking - the server runs in a goroutine.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.addr, nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = ln
	s.addr = ln.Addr().String()
	s.running = true

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("shop stub stopped", zap.Error(err))
		}
	}()

	return s.addr, nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
// Returns empty string if server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// URL returns the site root, e.g. http://127.0.0.1:41234.
// Returns empty string if server is not running.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	host, port, err := net.SplitHostPort(addr)
	if err == nil && (host == "::" || host == "0.0.0.0" || host == "") {
		addr = net.JoinHostPort("127.0.0.1", port)
	}
	return "http://" + addr
}
