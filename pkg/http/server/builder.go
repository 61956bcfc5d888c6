package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	port           int
	logger         *zap.Logger
	allowedOrigins []string
	releaseMode    bool
	readTimeout    time.Duration
	writeTimeout   time.Duration
}

func WithPort(port int) Option {
	return func(o *Options) {
		o.port = port
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// WithAllowedOrigins sets the CORS origins. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *Options) {
		o.allowedOrigins = append(o.allowedOrigins, origins...)
	}
}

func WithReleaseMode(enabled bool) Option {
	return func(o *Options) {
		o.releaseMode = enabled
	}
}

func WithTimeouts(read, write time.Duration) Option {
	return func(o *Options) {
		o.readTimeout = read
		o.writeTimeout = write
	}
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	lis        net.Listener
	logger     *zap.Logger
}

// New creates an HTTP server with request logging, panic recovery and CORS.
// Routes are added through Router before Start.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:         8080,
		logger:       zap.NewNop(),
		readTimeout:  15 * time.Second,
		writeTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.port < 1 || options.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", options.port)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(options.allowedOrigins) == 0 {
		options.allowedOrigins = []string{"*"}
	}

	if options.releaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", options.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
	}

	return &Server{
		router: router,
		httpServer: &http.Server{
			Handler:      corsHandler(options.allowedOrigins, router),
			ReadTimeout:  options.readTimeout,
			WriteTimeout: options.writeTimeout,
		},
		lis:    lis,
		logger: logger.Named("http-server"),
	}, nil
}

func corsHandler(origins []string, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(h)
}

// Router exposes the gin engine for route registration.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Handler returns the full middleware chain, CORS included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server in a goroutine and returns immediately.
func (s *Server) Start() {
	s.logger.Info("HTTP server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(s.lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("forced shutdown due to timeout", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
